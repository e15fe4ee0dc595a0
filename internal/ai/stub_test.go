package ai

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStub_Translate(t *testing.T) {
	s := NewStub(nil)

	tests := []struct {
		name     string
		text     string
		language string
		want     string
	}{
		{name: "dictionary hit", text: "hello", language: "Spanish", want: "hola"},
		{name: "case and space insensitive", text: "  Good Morning ", language: "Italian", want: "buongiorno"},
		{name: "miss falls back to prefix", text: "where is the station", language: "French", want: "[French] where is the station"},
		{name: "unknown language", text: "hello", language: "Klingon", want: "[Klingon] hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Translate(context.Background(), tt.text, tt.language)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStub_TranscribeAudio(t *testing.T) {
	s := NewStub(nil)

	r := strings.NewReader("fake audio bytes")
	got, err := s.TranscribeAudio(context.Background(), r, "audio/m4a")
	if err != nil {
		t.Fatalf("TranscribeAudio() error = %v", err)
	}
	if got != "Good morning" {
		t.Errorf("TranscribeAudio() = %q, want %q", got, "Good morning")
	}
	if r.Len() != 0 {
		t.Errorf("recording not fully read: %d bytes left", r.Len())
	}
}

func TestStub_RespectsContext(t *testing.T) {
	s := NewStub(&StubConfig{Delay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Translate(ctx, "hello", "Spanish"); err == nil {
		t.Error("Translate() expected error for cancelled context")
	}
}

func TestTextPrompt(t *testing.T) {
	got := textPrompt("hello", "Spanish")
	want := "Translate hello to Spanish and only return the best translation."
	if got != want {
		t.Errorf("textPrompt() = %q, want %q", got, want)
	}
}
