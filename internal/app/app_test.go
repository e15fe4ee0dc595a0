package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"parley-go/internal/config"
	"parley-go/internal/parley"
)

// offlineConfig returns a config that needs no network, devices or keys.
func offlineConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "greeting.m4a")
	if err := os.WriteFile(input, []byte("voice"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig("test-session", dir)
	cfg.Database = config.DatabaseConfig{Type: "memory"}
	cfg.Audio = config.AudioConfig{Type: "memory"}
	cfg.AI = config.AIConfig{Type: "stub"}
	cfg.Device = config.DeviceConfig{Recorder: "file", InputFile: input, Player: "none"}
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*ParleyApp, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	a, err := NewParleyApp(context.Background(), cfg, "Test", &out)
	if err != nil {
		t.Fatalf("NewParleyApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, &out
}

func TestNewParleyApp_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown database", func(c *config.Config) { c.Database.Type = "postgres" }},
		{"unknown audio storage", func(c *config.Config) { c.Audio.Type = "ftp" }},
		{"unknown ai", func(c *config.Config) { c.AI.Type = "oracle" }},
		{"file recorder without input", func(c *config.Config) { c.Device.InputFile = "" }},
		{"unknown encryption", func(c *config.Config) { c.Encryption.Type = "rot13" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := offlineConfig(t)
			tt.modify(cfg)

			if _, err := NewParleyApp(context.Background(), cfg, "Test", &bytes.Buffer{}); err == nil {
				t.Error("NewParleyApp() expected error")
			}
		})
	}
}

func TestParleyApp_SendText(t *testing.T) {
	a, _ := newTestApp(t, offlineConfig(t))
	ctx := context.Background()

	msg, err := a.SendText(ctx, "hello", "")
	if err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if msg.Translation != "hola" {
		t.Errorf("Translation = %q, want hola (configured default es)", msg.Translation)
	}

	msg, err = a.SendText(ctx, "thank you", "Italian")
	if err != nil {
		t.Fatalf("SendText(Italian) error = %v", err)
	}
	if msg.Translation != "grazie" {
		t.Errorf("Translation = %q, want grazie", msg.Translation)
	}

	if _, err := a.SendText(ctx, "hello", "klingon"); !errors.Is(err, parley.ErrUnknownLanguage) {
		t.Errorf("SendText(klingon) error = %v, want ErrUnknownLanguage", err)
	}
	if h := a.History(); len(h) != 2 {
		t.Errorf("History() has %d messages, want 2", len(h))
	}
}

func TestParleyApp_Record(t *testing.T) {
	a, out := newTestApp(t, offlineConfig(t))

	stop := make(chan struct{})
	close(stop)
	msg, err := a.Record(context.Background(), time.Minute, stop)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if msg.Translation != "Good morning" || !msg.HasAudio() {
		t.Errorf("Record() = %+v", msg)
	}
	if !strings.Contains(out.String(), "Recording started") {
		t.Errorf("notices = %q, want recording started", out.String())
	}
}

func TestParleyApp_DeleteAndSweep(t *testing.T) {
	a, out := newTestApp(t, offlineConfig(t))
	ctx := context.Background()

	text, _ := a.SendText(ctx, "hello", "es")
	stop := make(chan struct{})
	close(stop)
	voice, err := a.Record(ctx, 0, stop)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if _, err := a.Delete(ctx, []string{text.ID, "missing"}); !errors.Is(err, parley.ErrMessageNotFound) {
		t.Fatalf("Delete(missing) error = %v, want ErrMessageNotFound", err)
	}
	if len(a.History()) != 2 {
		t.Fatal("Delete() with an unknown id removed messages")
	}

	n, err := a.Delete(ctx, []string{voice.ID, text.ID, voice.ID})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Delete() = %d, want 2 distinct messages", n)
	}
	if len(a.History()) != 0 {
		t.Errorf("History() = %v, want empty", a.History())
	}
	if !strings.Contains(out.String(), "File deleted") {
		t.Errorf("notices = %q, want file deleted", out.String())
	}

	orphans, err := a.Orphans(ctx)
	if err != nil || len(orphans) != 0 {
		t.Errorf("Orphans() = %v, %v; want none", orphans, err)
	}
}

func TestParleyApp_PlayWithoutPlayer(t *testing.T) {
	a, _ := newTestApp(t, offlineConfig(t))
	msg, _ := a.SendText(context.Background(), "hello", "")

	if err := a.Play(context.Background(), msg.ID); err == nil {
		t.Error("Play() expected error with player none")
	}
	if err := a.Speak(context.Background(), msg.ID, ""); err == nil {
		t.Error("Speak() expected error without a speech command")
	}
}

func TestParleyApp_ExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestApp(t, offlineConfig(t))
	src.SendText(ctx, "hello", "es")
	src.SendText(ctx, "good morning", "fr")

	var archive bytes.Buffer
	n, err := src.Export(&archive)
	if err != nil || n != 2 {
		t.Fatalf("Export() = %d, %v; want 2, nil", n, err)
	}

	dst, _ := newTestApp(t, offlineConfig(t))
	res, err := dst.Import(ctx, bytes.NewReader(archive.Bytes()), "")
	if err != nil || res.Imported != 2 {
		t.Fatalf("Import() = %+v, %v; want 2 imported", res, err)
	}
	if h := dst.History(); h[1].Translation != "bonjour" {
		t.Errorf("imported history = %+v", h)
	}

	if _, err := dst.Import(ctx, bytes.NewReader(archive.Bytes()), "wrong"); err == nil {
		t.Error("Import() expected error for wrong passphrase")
	}
}

func TestParleyApp_PersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := offlineConfig(t)
	cfg.Database = config.DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(cfg.BaseDir, "db")}
	cfg.Audio = config.AudioConfig{Type: "filesystem", Dir: filepath.Join(cfg.BaseDir, "recordings")}

	first, err := NewParleyApp(ctx, cfg, "Send", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewParleyApp() error = %v", err)
	}
	if _, err := first.SendText(ctx, "hello", "es"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, _ := newTestApp(t, cfg)
	h := second.History()
	if len(h) != 1 || h[0].Translation != "hola" {
		t.Errorf("History() after restart = %+v", h)
	}
}

func TestSetupKeys(t *testing.T) {
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "parley.pub"),
		PrivateKeyPath: filepath.Join(dir, "parley.key"),
	}

	if err := SetupKeys(cfg, "secret"); err != nil {
		t.Fatalf("SetupKeys() error = %v", err)
	}
	if err := SetupKeys(cfg, "secret"); err == nil {
		t.Error("second SetupKeys() expected error")
	}
}
