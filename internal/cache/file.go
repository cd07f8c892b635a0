package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"backlog-builder/internal/helpers"
	"backlog-builder/internal/models"
)

// FileStore persists one JSON file per cache key so analyses survive
// process restarts. Keys are hashed into filenames since document IDs
// can contain path-hostile characters.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := helpers.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

func (s *FileStore) Get(key string) (models.CacheEntry, bool, error) {
	var entry models.CacheEntry
	path := s.path(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return models.CacheEntry{}, false, nil
	}
	if err := helpers.LoadJSON(path, &entry); err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return entry, true, nil
}

func (s *FileStore) Set(key string, entry models.CacheEntry) error {
	if err := helpers.SaveJSON(entry, s.path(key)); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
