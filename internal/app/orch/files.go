package orch

import (
	"github.com/dkeye/lanhub/internal/domain"
	"github.com/dkeye/lanhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Upload stores the blob and announces its metadata to every client.
func (o *Orchestrator) Upload(from domain.Identity, req protocol.FileUpload) {
	if o.MaxFileSize > 0 && int64(len(req.Data)) > o.MaxFileSize {
		log.Warn().Str("module", "orch").Str("username", string(from)).Int("bytes", len(req.Data)).Msg("upload over limit")
		o.SendTo(from, protocol.NewSystem(protocol.LevelWarning, "File '%s' exceeds the %d byte limit", req.Filename, o.MaxFileSize))
		return
	}
	o.Files.Put(&domain.FileBlob{
		ID:         req.FileID,
		Filename:   req.Filename,
		Size:       req.Size,
		Data:       req.Data,
		Uploader:   from,
		UploadedAt: o.now(),
	})
	available := protocol.FileAvailable{
		Type:     protocol.TypeFileAvailable,
		FileID:   req.FileID,
		Filename: req.Filename,
		Size:     req.Size,
		Uploader: from,
	}
	o.Broadcast(available)
	o.publish(available)
	log.Info().Str("module", "orch").Str("username", string(from)).Str("file_id", req.FileID).Str("filename", req.Filename).Int("bytes", len(req.Data)).Msg("file uploaded")
}

// Download sends the blob to the requester only. Unknown ids get no reply.
func (o *Orchestrator) Download(to domain.Identity, fileID string) {
	blob, err := o.Files.Get(fileID)
	if err != nil {
		log.Debug().Str("module", "orch").Str("username", string(to)).Str("file_id", fileID).Err(err).Msg("download ignored")
		return
	}
	o.SendTo(to, protocol.FileData{
		Type:     protocol.TypeFileData,
		FileID:   blob.ID,
		Filename: blob.Filename,
		Size:     blob.Size,
		Data:     blob.Data,
	})
}
