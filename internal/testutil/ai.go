package testutil

import (
	"context"
	"io"
	"sync"

	"parley-go/internal/parley"
)

// TranslateCall records one call to FakeTranslator.
type TranslateCall struct {
	Text           string
	TargetLanguage string
}

// FakeTranslator returns Reply or Err. If Block is set, Translate waits for a
// value on it (or for ctx) before answering, and signals Started on entry.
type FakeTranslator struct {
	mu    sync.Mutex
	calls []TranslateCall

	Reply   string
	Err     error
	Block   chan struct{}
	Started chan struct{}
}

var _ parley.Translator = (*FakeTranslator)(nil)

func NewFakeTranslator(reply string) *FakeTranslator {
	return &FakeTranslator{Reply: reply}
}

func (f *FakeTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, TranslateCall{Text: text, TargetLanguage: targetLanguage})
	block, started := f.Block, f.Started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.Reply, f.Err
}

func (f *FakeTranslator) Calls() []TranslateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TranslateCall(nil), f.calls...)
}

// FakeTranscriber returns Reply or Err and records what it was sent.
type FakeTranscriber struct {
	mu        sync.Mutex
	mimeTypes []string
	payloads  [][]byte

	Reply string
	Err   error
}

var _ parley.Transcriber = (*FakeTranscriber)(nil)

func NewFakeTranscriber(reply string) *FakeTranscriber {
	return &FakeTranscriber{Reply: reply}
}

func (f *FakeTranscriber) TranscribeAudio(_ context.Context, audio io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.mimeTypes = append(f.mimeTypes, mimeType)
	f.payloads = append(f.payloads, data)
	f.mu.Unlock()
	return f.Reply, f.Err
}

// MimeTypes returns the MIME type of every upload in order.
func (f *FakeTranscriber) MimeTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mimeTypes...)
}

// Payloads returns the bytes of every upload in order.
func (f *FakeTranscriber) Payloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.payloads...)
}
