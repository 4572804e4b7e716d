package app

import (
	"errors"
	"slices"
	"sync"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrFileNotFound = errors.New("file not found")

// FileStore keeps uploaded blobs in memory for the process lifetime.
// Ids are caller supplied; Put silently replaces an existing id.
type FileStore struct {
	mu    sync.RWMutex
	blobs map[string]*domain.FileBlob
	order []string
	bytes int64
}

func NewFileStore() *FileStore {
	return &FileStore{blobs: make(map[string]*domain.FileBlob)}
}

func (s *FileStore) Put(blob *domain.FileBlob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.blobs[blob.ID]; ok {
		s.bytes -= int64(len(old.Data))
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == blob.ID })
		log.Warn().Str("module", "app.files").Str("file_id", blob.ID).Msg("replacing existing file")
	}
	s.blobs[blob.ID] = blob
	s.order = append(s.order, blob.ID)
	s.bytes += int64(len(blob.Data))
}

func (s *FileStore) Get(id string) (*domain.FileBlob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return blob, nil
}

// List returns metadata in upload order.
func (s *FileStore) List() []domain.FileMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FileMeta, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.blobs[id].Meta())
	}
	return out
}

type FileStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

func (s *FileStore) Stats() FileStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FileStats{Count: len(s.blobs), Bytes: s.bytes}
}
