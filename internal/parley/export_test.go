package parley_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"parley-go/internal/parley"
	"parley-go/internal/testutil"
)

func exportArchive(t *testing.T, msgs ...parley.Message) []byte {
	t.Helper()

	src := newHarness(t)
	for _, m := range msgs {
		if err := src.chat.Store().Append(m); err != nil {
			t.Fatalf("Append(%s) error = %v", m.ID, err)
		}
	}

	var buf bytes.Buffer
	n, err := src.chat.ExportHistory(testutil.NewTestEncryptor(), src.clock, &buf)
	if err != nil {
		t.Fatalf("ExportHistory() error = %v", err)
	}
	if n != len(msgs) {
		t.Errorf("ExportHistory() = %d, want %d", n, len(msgs))
	}
	if !strings.HasPrefix(buf.String(), "PARLEY-TEST-ENCRYPTED") {
		t.Error("archive written without encryption")
	}
	return buf.Bytes()
}

func testDecryptor(t *testing.T) parley.DecryptionContext {
	t.Helper()

	dec, err := testutil.NewTestEncryptor().Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	return dec
}

func TestChat_ExportImportHistory(t *testing.T) {
	ctx := context.Background()
	archive := exportArchive(t,
		textMessage("m-1", "hello", "hola"),
		audioMessage("m-2", "Good morning", "mem://rec-1.m4a", 4200))
	dec := testDecryptor(t)

	dst := newHarness(t)
	testutil.PutRecording(t, dst.audio, "rec-1.m4a", "voice")
	dst.chat.Store().Append(textMessage("m-1", "hello", "hola"))

	res, err := dst.chat.ImportHistory(ctx, dec, bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("ImportHistory() error = %v", err)
	}
	if want := (parley.ImportResult{Imported: 1, Skipped: 1}); res != want {
		t.Errorf("ImportHistory() = %+v, want %+v", res, want)
	}
	got := dst.chat.Store().Messages()
	if !equalStrings(messageIDs(got), []string{"m-1", "m-2"}) {
		t.Fatalf("ids = %v, want [m-1 m-2]", messageIDs(got))
	}
	if !got[1].HasAudio() || got[1].Audio.URI != "mem://rec-1.m4a" || got[1].Audio.DurationMs != 4200 {
		t.Errorf("imported audio message = %+v", got[1])
	}
	if err := dst.chat.Play(ctx, "m-2"); err != nil {
		t.Errorf("Play(imported) error = %v", err)
	}

	res, err = dst.chat.ImportHistory(ctx, dec, bytes.NewReader(archive))
	if err != nil || res.Imported != 0 || res.Skipped != 2 {
		t.Errorf("second ImportHistory() = %+v, %v; want nothing imported", res, err)
	}
}

func TestChat_ImportHistory_MissingRecording(t *testing.T) {
	ctx := context.Background()
	archive := exportArchive(t, audioMessage("m-1", "Good morning", "mem://rec-1.m4a", 4200))

	dst := newHarness(t)
	res, err := dst.chat.ImportHistory(ctx, testDecryptor(t), bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("ImportHistory() error = %v", err)
	}
	if want := (parley.ImportResult{Imported: 1, Detached: 1}); res != want {
		t.Errorf("ImportHistory() = %+v, want %+v", res, want)
	}

	msg, ok := dst.chat.Store().Get("m-1")
	if !ok {
		t.Fatal("imported message not in store")
	}
	if msg.HasAudio() {
		t.Errorf("Audio = %+v, want none for a recording not in storage", msg.Audio)
	}
	if msg.Translation != "Good morning" {
		t.Errorf("Translation = %q, want %q", msg.Translation, "Good morning")
	}
	if err := dst.chat.Play(ctx, "m-1"); !errors.Is(err, parley.ErrNoAudio) {
		t.Errorf("Play() error = %v, want ErrNoAudio", err)
	}
}

func TestChat_ImportHistory_Invalid(t *testing.T) {
	h := newHarness(t)
	enc := testutil.NewTestEncryptor()
	dec := testDecryptor(t)

	encrypt := func(plain string) *bytes.Buffer {
		var buf bytes.Buffer
		if err := enc.Encrypt(strings.NewReader(plain), &buf); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		return &buf
	}

	tests := []struct {
		name  string
		input *bytes.Buffer
	}{
		{"not encrypted", bytes.NewBufferString(`{"version":1,"messages":[]}`)},
		{"not json", encrypt("hola")},
		{"unknown version", encrypt(`{"version":99,"messages":[]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.chat.ImportHistory(context.Background(), dec, tt.input); err == nil {
				t.Error("ImportHistory() expected error")
			}
		})
	}
	if h.chat.Store().Len() != 0 {
		t.Errorf("store Len() = %d, want 0", h.chat.Store().Len())
	}
}
