package parley_test

import (
	"context"
	"errors"
	"testing"

	"parley-go/internal/audiostore"
	"parley-go/internal/parley"
	"parley-go/internal/testutil"
)

func TestNewChat_RequiresCollaborators(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	translator := testutil.NewFakeTranslator("hola")
	transcriber := testutil.NewFakeTranscriber("hi")
	audio := audiostore.NewMemoryStorage()

	tests := []struct {
		name string
		deps parley.Deps
	}{
		{"no database", parley.Deps{Translator: translator, Transcriber: transcriber, Audio: audio}},
		{"no translator", parley.Deps{Database: db, Transcriber: transcriber, Audio: audio}},
		{"no transcriber", parley.Deps{Database: db, Translator: translator, Audio: audio}},
		{"no audio storage", parley.Deps{Database: db, Translator: translator, Transcriber: transcriber}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parley.NewChat(tt.deps); err == nil {
				t.Error("NewChat() expected error")
			}
		})
	}

	t.Run("minimal deps", func(t *testing.T) {
		chat, err := parley.NewChat(parley.Deps{Database: db, Translator: translator, Transcriber: transcriber, Audio: audio})
		if err != nil {
			t.Fatalf("NewChat() error = %v", err)
		}
		if chat.Recording() != nil {
			t.Error("Recording() should be nil without a recorder")
		}
		if _, err := chat.Pipeline().SendText(context.Background(), "hello", parley.Spanish); err != nil {
			t.Errorf("SendText() error = %v", err)
		}
	})
}

func TestNewChat_LoadsHistory(t *testing.T) {
	h := newHarness(t)
	h.chat.Store().Append(textMessage("m-1", "hello", "hola"))

	if got := h.open(t).Store().Len(); got != 1 {
		t.Errorf("reopened store Len() = %d, want 1", got)
	}
}

func TestChat_Play(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	uri := testutil.PutRecording(t, h.audio, "rec-1.flac", "voice")
	h.chat.Store().Append(audioMessage("m-1", "Good morning", uri, 4200))
	h.chat.Store().Append(textMessage("m-2", "hello", "hola"))

	if err := h.chat.Play(ctx, "m-1"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if played := h.player.Played(); len(played) != 1 || string(played[0]) != "voice" {
		t.Errorf("played = %q", played)
	}
	if mt := h.player.MimeTypes(); mt[0] != "audio/flac" {
		t.Errorf("MIME type = %q, want audio/flac", mt[0])
	}

	if err := h.chat.Play(ctx, "m-2"); !errors.Is(err, parley.ErrNoAudio) {
		t.Errorf("Play(text message) error = %v, want ErrNoAudio", err)
	}
	if err := h.chat.Play(ctx, "missing"); !errors.Is(err, parley.ErrMessageNotFound) {
		t.Errorf("Play(missing) error = %v, want ErrMessageNotFound", err)
	}

	h.audio.Delete(ctx, uri)
	if err := h.chat.Play(ctx, "m-1"); !errors.Is(err, parley.ErrStorage) {
		t.Errorf("Play(deleted recording) error = %v, want ErrStorage", err)
	}
}

func TestChat_Speak(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.chat.Store().Append(textMessage("m-1", "hello", "ciao"))

	if err := h.chat.Speak(ctx, "m-1", parley.Italian); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	spoken := h.speaker.Spoken()
	if len(spoken) != 1 || spoken[0].Text != "ciao" || spoken[0].LanguageCode != "it" {
		t.Errorf("spoken = %+v", spoken)
	}

	if err := h.chat.Speak(ctx, "missing", parley.Italian); !errors.Is(err, parley.ErrMessageNotFound) {
		t.Errorf("Speak(missing) error = %v, want ErrMessageNotFound", err)
	}

	h.speaker.Err = errors.New("no voice")
	if err := h.chat.Speak(ctx, "m-1", parley.Italian); err == nil {
		t.Error("Speak() expected error from the synthesizer")
	}
}

func TestChat_NoDevices(t *testing.T) {
	chat, err := parley.NewChat(parley.Deps{
		Database:    testutil.NewTestDatabase(t),
		Translator:  testutil.NewFakeTranslator("hola"),
		Transcriber: testutil.NewFakeTranscriber("hi"),
		Audio:       audiostore.NewMemoryStorage(),
	})
	if err != nil {
		t.Fatalf("NewChat() error = %v", err)
	}
	chat.Store().Append(textMessage("m-1", "hello", "hola"))

	if err := chat.Play(context.Background(), "m-1"); err == nil {
		t.Error("Play() expected error without a player")
	}
	if err := chat.Speak(context.Background(), "m-1", parley.Spanish); err == nil {
		t.Error("Speak() expected error without a speaker")
	}
}
