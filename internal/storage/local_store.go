package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/port"
)

// LocalObjectStore implements port.ObjectStore on the local filesystem.
// Object paths are opaque keys resolved under baseDir.
type LocalObjectStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalObjectStore creates a new LocalObjectStore
func NewLocalObjectStore(baseDir string, logger *zap.Logger) *LocalObjectStore {
	return &LocalObjectStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Put writes object content under the given path, creating parent directories
func (s *LocalObjectStore) Put(ctx context.Context, path string, content []byte, contentType string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create object directory",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write object",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write object: %w", err)
	}

	s.logger.Debug("Object stored",
		zap.String("path", path),
		zap.String("content_type", contentType),
		zap.Int("size", len(content)))

	return nil
}

// Get reads object content by path
func (s *LocalObjectStore) Get(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read object",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return content, nil
}

// resolve maps an opaque object path onto the filesystem and rejects paths
// that escape the base directory.
func (s *LocalObjectStore) resolve(path string) (string, error) {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(absBase, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", path)
	}
	return absPath, nil
}

// Verify interface compliance
var _ port.ObjectStore = (*LocalObjectStore)(nil)
