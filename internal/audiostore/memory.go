package audiostore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"parley-go/internal/parley"
)

const memoryScheme = "mem"

// MemoryStorage keeps recordings in memory. It is safe for concurrent use.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte // name -> data
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func (m *MemoryStorage) Put(_ context.Context, name string, r io.Reader, size int64) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read recording: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return memoryScheme + "://" + name, nil
}

func (m *MemoryStorage) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	name, ok := trimScheme(uri, memoryScheme)
	if !ok {
		return nil, fmt.Errorf("not a memory uri: %s", uri)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStorage) Delete(_ context.Context, uri string) error {
	name, ok := trimScheme(uri, memoryScheme)
	if !ok {
		return fmt.Errorf("not a memory uri: %s", uri)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *MemoryStorage) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uris := make([]string, 0, len(m.files))
	for name := range m.files {
		uris = append(uris, memoryScheme+"://"+name)
	}
	sort.Strings(uris)
	return uris, nil
}

// Len returns the number of stored recordings.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

var _ parley.AudioStorage = (*MemoryStorage)(nil)
