// Package storage persists uploaded document files on the local filesystem,
// mirroring the media-folder layout of the surrounding deployment:
// documents/students/<id>/, documents/teachers/<id>/ and documents/general/.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StoredFile describes a file accepted by the store.
type StoredFile struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// Store accepts and removes document files. Size checks happen before Save is
// called; the store only persists bytes it is handed.
type Store interface {
	Save(name string, data []byte, studentID, teacherID *uint) (StoredFile, error)
	Remove(path string) error
}

type localStore struct {
	root   string
	logger zerolog.Logger
}

// NewLocal constructs a Store rooted at the given directory.
func NewLocal(root string, logger zerolog.Logger) (Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &localStore{
		root:   root,
		logger: logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

func (s *localStore) Save(name string, data []byte, studentID, teacherID *uint) (StoredFile, error) {
	dir := s.ownerDir(studentID, teacherID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("failed to create document directory: %w", err)
	}

	// Stored under a random name; the original name survives in metadata.
	stored := uuid.NewString() + filepath.Ext(name)
	path := filepath.Join(dir, stored)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return StoredFile{}, fmt.Errorf("failed to write document: %w", err)
	}

	contentType := mimetype.Detect(data).String()

	s.logger.Debug().
		Str("path", path).
		Int("size", len(data)).
		Str("content_type", contentType).
		Msg("document stored")

	return StoredFile{
		Path:        path,
		Name:        filepath.Base(name),
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *localStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	return nil
}

func (s *localStore) ownerDir(studentID, teacherID *uint) string {
	switch {
	case studentID != nil:
		return filepath.Join(s.root, "students", fmt.Sprint(*studentID))
	case teacherID != nil:
		return filepath.Join(s.root, "teachers", fmt.Sprint(*teacherID))
	default:
		return filepath.Join(s.root, "general")
	}
}
