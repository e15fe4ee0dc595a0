package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"parley-go/internal/parley"
)

// FileRecorder stands in for a microphone by storing a prepared recording
// each time a capture stops. It is used on hosts without an input device.
type FileRecorder struct {
	path    string
	storage parley.AudioStorage
	idgen   parley.IDGenerator
}

var _ parley.Recorder = (*FileRecorder)(nil)

func NewFileRecorder(path string, storage parley.AudioStorage, idgen parley.IDGenerator) *FileRecorder {
	return &FileRecorder{path: path, storage: storage, idgen: idgen}
}

// RequestPermission is granted when the source file exists.
func (r *FileRecorder) RequestPermission(_ context.Context) (bool, error) {
	_, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking input file: %w", err)
	}
	return true, nil
}

func (r *FileRecorder) Start(_ context.Context) (parley.Capture, error) {
	if _, err := os.Stat(r.path); err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	return &fileCapture{recorder: r}, nil
}

type fileCapture struct {
	recorder *FileRecorder
}

// Stop copies the source file into storage. Duration is known only for
// formats that decode locally; others report 0.
func (c *fileCapture) Stop(ctx context.Context) (parley.Recording, error) {
	r := c.recorder
	f, err := os.Open(r.path)
	if err != nil {
		return parley.Recording{}, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return parley.Recording{}, fmt.Errorf("stat input file: %w", err)
	}

	var durationMs int64
	if pcm, err := Decode(f, parley.MimeTypeForURI(r.path)); err == nil {
		durationMs = pcm.DurationMs()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return parley.Recording{}, fmt.Errorf("rewinding input file: %w", err)
	}

	name := "rec-" + r.idgen.New() + filepath.Ext(r.path)
	uri, err := r.storage.Put(ctx, name, f, info.Size())
	if err != nil {
		return parley.Recording{}, fmt.Errorf("storing recording: %w", err)
	}
	return parley.Recording{URI: uri, DurationMs: durationMs}, nil
}
