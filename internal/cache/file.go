package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one file per key under a root directory. Writes go to a
// temp file first and are renamed into place, so a crash never leaves a
// partial record visible.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// path maps a key to a file below root. Keys may contain '/' subpaths;
// anything that would escape the root is flattened.
func (fs *FileStore) path(key string) string {
	clean := filepath.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	return filepath.Join(fs.root, clean)
}

// Exists reports whether a record is present for the key.
func (fs *FileStore) Exists(_ context.Context, key string) bool {
	info, err := os.Stat(fs.path(key))
	return err == nil && !info.IsDir()
}

// Read returns the stored bytes, or ErrNotFound.
func (fs *FileStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache key %s: %w", key, err)
	}
	return data, nil
}

// Write stores the bytes via temp file + atomic rename.
func (fs *FileStore) Write(_ context.Context, key string, data []byte) error {
	dst := fs.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create cache subdir for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache key %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync cache key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache key %s: %w", key, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit cache key %s: %w", key, err)
	}
	return nil
}
