package testutil

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"parley-go/internal/audiostore"
	"parley-go/internal/parley"
)

// FailingAudioStorage wraps an in-memory store. Configured errors replace the
// corresponding operation; every Delete is counted either way.
type FailingAudioStorage struct {
	*audiostore.MemoryStorage

	mu      sync.Mutex
	deletes map[string]int

	OpenErr   error
	DeleteErr error
}

var _ parley.AudioStorage = (*FailingAudioStorage)(nil)

func NewFailingAudioStorage() *FailingAudioStorage {
	return &FailingAudioStorage{
		MemoryStorage: audiostore.NewMemoryStorage(),
		deletes:       make(map[string]int),
	}
}

func (s *FailingAudioStorage) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return s.MemoryStorage.Open(ctx, uri)
}

func (s *FailingAudioStorage) Delete(ctx context.Context, uri string) error {
	s.mu.Lock()
	s.deletes[uri]++
	s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	return s.MemoryStorage.Delete(ctx, uri)
}

// Deletes returns how many times Delete was called for uri.
func (s *FailingAudioStorage) Deletes(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes[uri]
}

// PutRecording stores content under name and returns its URI.
func PutRecording(t *testing.T, storage parley.AudioStorage, name, content string) string {
	t.Helper()

	uri, err := storage.Put(context.Background(), name, strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("failed to store recording %s: %v", name, err)
	}
	return uri
}
