// Package files provides the file retrieval collaborator used by the
// ingestion pipeline. Source spreadsheets are read-only inputs; the
// pipeline never writes through this package.
package files

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// Store abstracts retrieval of raw spreadsheet bytes. Both operations
// may fail with an I/O error, which the ingestor treats as "file
// unavailable, skip".
type Store interface {
	Exists(ctx context.Context, path string) (bool, error)
	ReadBytes(ctx context.Context, path string) ([]byte, error)
}

// LocalStore serves files from a root directory on the local filesystem.
type LocalStore struct {
	root   string
	logger *slog.Logger
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{
		root:   dir,
		logger: logger.With(slog.String("component", "file_store")),
	}
}

// Exists reports whether the file is present under the store root.
func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fullPath := s.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	s.logger.Debug("exists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	return exists, nil
}

// ReadBytes reads the entire content of a file under the store root.
func (s *LocalStore) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := s.resolvePath(path)

	s.logger.Debug("reading file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.ReadFile(fullPath)
}

func (s *LocalStore) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}
