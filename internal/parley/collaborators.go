package parley

import (
	"context"
	"io"
	"path"
	"strings"
)

// Translator translates text into the language with the given human-readable
// name. An empty result means no translation was available.
type Translator interface {
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}

// Transcriber uploads recorded speech and returns its English translation.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audio io.Reader, mimeType string) (string, error)
}

// Recording is the result of a finished capture.
type Recording struct {
	URI        string
	DurationMs int64
}

// Recorder is the microphone collaborator.
type Recorder interface {
	// RequestPermission asks for microphone access and reports whether it was granted.
	RequestPermission(ctx context.Context) (bool, error)

	// Start begins capturing and returns a handle used to stop it.
	Start(ctx context.Context) (Capture, error)
}

// Capture is a running capture session.
type Capture interface {
	// Stop ends the capture, flushes it to storage and returns the stored recording.
	Stop(ctx context.Context) (Recording, error)
}

// Player plays a stored recording.
type Player interface {
	Play(ctx context.Context, audio io.Reader, mimeType string) error
}

// Speaker reads text aloud using a language code as a voice hint.
type Speaker interface {
	Speak(ctx context.Context, text string, languageCode string) error
}

// AudioStorage stores recordings and addresses them by URI.
type AudioStorage interface {
	// Put stores size bytes read from r under name and returns its URI.
	Put(ctx context.Context, name string, r io.Reader, size int64) (string, error)

	// Open returns a reader for the recording at uri.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)

	// Delete removes the recording at uri. Deleting a missing recording is not an error.
	Delete(ctx context.Context, uri string) error

	// List returns the URIs of every stored recording.
	List(ctx context.Context) ([]string, error)
}

var mimeTypes = map[string]string{
	".m4a":  "audio/m4a",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".ogg":  "audio/ogg",
}

// MimeTypeForURI derives the upload MIME type from a recording URI's extension.
// Unknown extensions default to audio/m4a.
func MimeTypeForURI(uri string) string {
	if mt, ok := mimeTypes[strings.ToLower(path.Ext(uri))]; ok {
		return mt
	}
	return "audio/m4a"
}
