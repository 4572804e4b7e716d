package domain

import "time"

// FileBlob is an uploaded file. It is never mutated after creation.
type FileBlob struct {
	ID         string
	Filename   string
	Size       int64
	Data       []byte
	Uploader   Identity
	UploadedAt time.Time
}

// FileMeta is the byte-free view of a FileBlob.
type FileMeta struct {
	ID         string    `json:"file_id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Uploader   Identity  `json:"uploader"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (b *FileBlob) Meta() FileMeta {
	return FileMeta{
		ID:         b.ID,
		Filename:   b.Filename,
		Size:       b.Size,
		Uploader:   b.Uploader,
		UploadedAt: b.UploadedAt,
	}
}
