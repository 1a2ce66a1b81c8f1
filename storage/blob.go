package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileBlobStore keeps blobs as files under Dir; keys use forward slashes
type FileBlobStore struct {
	Dir string
}

var _ BlobStore = (*FileBlobStore)(nil)

func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{Dir: dir}
}

func (fb *FileBlobStore) path(key string) string {
	return filepath.Join(fb.Dir, filepath.FromSlash(key))
}

func (fb *FileBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(fb.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blob %q: %w", key, ErrNotFound)
	}
	return data, err
}

func (fb *FileBlobStore) PutNew(_ context.Context, key string, value []byte) error {
	p := fb.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("blob %q: %w", key, ErrAlreadyExists)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (fb *FileBlobStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(fb.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(fb.Dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// MemoryBlobStore keeps blobs in process memory
type MemoryBlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ BlobStore = (*MemoryBlobStore)(nil)

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{data: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("blob %q: %w", key, ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBlobStore) PutNew(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		return fmt.Errorf("blob %q: %w", key, ErrAlreadyExists)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBlobStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	keys := make([]string, 0)
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	return keys, nil
}
