package ai

import (
	"context"
	"io"
	"strings"
	"time"

	"parley-go/internal/parley"
)

// StubConfig configures the stub translator behavior.
type StubConfig struct {
	// Delay simulates service latency.
	Delay time.Duration
	// Dictionary maps lower-cased source text to a translation, per target
	// language name. Missing entries translate to "[<language>] <text>".
	Dictionary map[string]map[string]string
	// Transcript is returned for every recording.
	Transcript string
}

// DefaultStubConfig returns a small phrasebook for offline use and tests.
func DefaultStubConfig() *StubConfig {
	return &StubConfig{
		Dictionary: map[string]map[string]string{
			"Spanish": {
				"hello":        "hola",
				"good morning": "buenos días",
				"thank you":    "gracias",
			},
			"Italian": {
				"hello":        "ciao",
				"good morning": "buongiorno",
				"thank you":    "grazie",
			},
			"French": {
				"hello":        "bonjour",
				"good morning": "bonjour",
				"thank you":    "merci",
			},
		},
		Transcript: "Good morning",
	}
}

// Stub is a deterministic Translator and Transcriber that never leaves the process.
type Stub struct {
	config *StubConfig
}

var (
	_ parley.Translator  = (*Stub)(nil)
	_ parley.Transcriber = (*Stub)(nil)
)

func NewStub(config *StubConfig) *Stub {
	if config == nil {
		config = DefaultStubConfig()
	}
	return &Stub{config: config}
}

func (s *Stub) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	if dict, ok := s.config.Dictionary[targetLanguage]; ok {
		if translated, ok := dict[strings.ToLower(strings.TrimSpace(text))]; ok {
			return translated, nil
		}
	}
	return "[" + targetLanguage + "] " + text, nil
}

// TranscribeAudio drains the recording and returns the configured transcript.
func (s *Stub) TranscribeAudio(ctx context.Context, audio io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, audio); err != nil {
		return "", err
	}
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.config.Transcript, nil
}

func (s *Stub) wait(ctx context.Context) error {
	if s.config.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.config.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
