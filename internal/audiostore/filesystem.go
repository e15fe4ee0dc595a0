package audiostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"parley-go/internal/parley"
)

const fileScheme = "file"

// FileSystemStorage stores each recording as a file directly under root and
// addresses it as file://<absolute path>.
type FileSystemStorage struct {
	root string
}

// NewFileSystemStorage creates the root directory if needed.
func NewFileSystemStorage(root string) (*FileSystemStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving recordings directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}
	return &FileSystemStorage{root: abs}, nil
}

// Put writes the recording atomically (temp file + rename).
func (s *FileSystemStorage) Put(_ context.Context, name string, r io.Reader, size int64) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	destPath := filepath.Join(s.root, name)

	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write recording: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if size >= 0 && written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return fileScheme + "://" + destPath, nil
}

func (s *FileSystemStorage) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	p, err := s.pathFor(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	return f, nil
}

// Delete removes the file at uri. A missing file is not an error.
func (s *FileSystemStorage) Delete(_ context.Context, uri string) error {
	p, err := s.pathFor(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	return nil
}

func (s *FileSystemStorage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading recordings directory: %w", err)
	}

	var uris []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		uris = append(uris, fileScheme+"://"+filepath.Join(s.root, e.Name()))
	}
	sort.Strings(uris)
	return uris, nil
}

// pathFor maps uri to a path and refuses anything outside root.
func (s *FileSystemStorage) pathFor(uri string) (string, error) {
	p, ok := trimScheme(uri, fileScheme)
	if !ok {
		return "", fmt.Errorf("not a file uri: %s", uri)
	}
	p = filepath.Clean(p)
	if filepath.Dir(p) != s.root {
		return "", fmt.Errorf("recording %s is outside %s", p, s.root)
	}
	return p, nil
}

var _ parley.AudioStorage = (*FileSystemStorage)(nil)
