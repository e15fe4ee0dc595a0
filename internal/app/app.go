package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"parley-go/internal/ai"
	"parley-go/internal/audiostore"
	"parley-go/internal/config"
	"parley-go/internal/database"
	"parley-go/internal/device"
	"parley-go/internal/encryption"
	"parley-go/internal/parley"
)

// ErrNoRecorder is returned by Record when no microphone is configured.
var ErrNoRecorder = errors.New("no recorder configured")

// migrationChecker is implemented by databases with a versioned schema.
type migrationChecker interface {
	CheckMigrations() error
}

// ParleyApp is the application layer between the CLI and the chat core.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and releases resources on Close.
type ParleyApp struct {
	cfg       *config.Config
	db        parley.Database
	encryptor parley.Encryptor
	chat      *parley.Chat
	clock     parley.Clock
	op        *Operation
	logger    *slog.Logger
	logFile   *os.File
}

// NewParleyApp creates a fully wired ParleyApp from the given config.
// operation identifies the CLI command being run (e.g. "Send", "Record").
// Notices for the user are written to out. The caller must call Close when done.
func NewParleyApp(ctx context.Context, cfg *config.Config, operation string, out io.Writer) (*ParleyApp, error) {
	clock := parley.RealClock{}
	op := NewOperation(operation, "", clock.Now())

	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	plog := &slogAdapter{l: logger}

	a, err := build(ctx, cfg, plog, out)
	if err != nil {
		logger.Error("initialization failed", "operation", operation, "error", err)
		logFile.Close()
		return nil, err
	}
	a.clock = clock
	a.op = op
	a.logger = logger
	a.logFile = logFile

	logger.Info("operation started", "operation", operation, "session", cfg.SessionID)
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, logger parley.Logger, out io.Writer) (*ParleyApp, error) {
	db, err := database.NewDatabaseFromConfig(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if mc, ok := db.(migrationChecker); ok {
		if err := mc.CheckMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("database schema out of date: %w", err)
		}
	}

	audio, err := audiostore.NewAudioStorageFromConfig(ctx, cfg.Audio)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audio storage: %w", err)
	}

	svc, err := ai.NewServiceFromConfig(ctx, cfg.AI, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating translation service: %w", err)
	}

	idgen := parley.UUIDGenerator{}
	recorder, err := device.NewRecorderFromConfig(cfg.Device, audio, idgen, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating recorder: %w", err)
	}
	player, err := device.NewPlayerFromConfig(cfg.Device)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating player: %w", err)
	}
	speaker, err := device.NewSpeakerFromConfig(cfg.Device)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating speaker: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	chat, err := parley.NewChat(parley.Deps{
		Database:    db,
		Translator:  svc,
		Transcriber: svc,
		Recorder:    recorder,
		Player:      player,
		Speaker:     speaker,
		Audio:       audio,
		Notifier:    newConsoleNotifier(out),
		Logger:      logger,
		IDGen:       idgen,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chat: %w", err)
	}

	return &ParleyApp{
		cfg:       cfg,
		db:        db,
		encryptor: enc,
		chat:      chat,
	}, nil
}

// Language resolves raw to a target language, falling back to the
// configured default when raw is empty.
func (a *ParleyApp) Language(raw string) (parley.Language, error) {
	if raw == "" {
		raw = a.cfg.Language
	}
	if raw == "" {
		return parley.Spanish, nil
	}
	return parley.ParseLanguage(raw)
}

// SendText translates text into the language named by lang.
func (a *ParleyApp) SendText(ctx context.Context, text, lang string) (*parley.Message, error) {
	l, err := a.Language(lang)
	if err != nil {
		return nil, err
	}
	msg, err := a.chat.Pipeline().SendText(ctx, text, l)
	a.op.Fail(err)
	return msg, err
}

// Record captures audio until d elapses, stop is closed or ctx is done, then
// translates the recording to English. A zero d waits for stop or ctx only.
func (a *ParleyApp) Record(ctx context.Context, d time.Duration, stop <-chan struct{}) (*parley.Message, error) {
	rc := a.chat.Recording()
	if rc == nil {
		return nil, ErrNoRecorder
	}
	if err := rc.StartRecording(ctx); err != nil {
		a.op.Fail(err)
		return nil, err
	}

	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-timeout:
	case <-stop:
	case <-ctx.Done():
	}

	msg, err := rc.StopRecording(context.WithoutCancel(ctx))
	a.op.Fail(err)
	return msg, err
}

// History returns the conversation log, oldest first.
func (a *ParleyApp) History() []parley.Message {
	return a.chat.Store().Messages()
}

// Delete removes the messages with the given ids and their recordings and
// returns how many distinct messages were selected. Every id must exist.
func (a *ParleyApp) Delete(ctx context.Context, ids []string) (int, error) {
	sel := a.chat.Selection()
	sel.Clear()
	for _, id := range ids {
		if _, ok := a.chat.Store().Get(id); !ok {
			sel.Clear()
			return 0, fmt.Errorf("%w: %s", parley.ErrMessageNotFound, id)
		}
		if !sel.IsSelected(id) {
			sel.Toggle(id)
		}
	}
	n := sel.Len()
	err := sel.DeleteSelected(ctx)
	a.op.Fail(err)
	return n, err
}

// Play plays the recording of message id.
func (a *ParleyApp) Play(ctx context.Context, id string) error {
	return a.chat.Play(ctx, id)
}

// Speak reads the translation of message id aloud.
func (a *ParleyApp) Speak(ctx context.Context, id, lang string) error {
	l, err := a.Language(lang)
	if err != nil {
		return err
	}
	return a.chat.Speak(ctx, id, l)
}

// Orphans lists recordings no message references.
func (a *ParleyApp) Orphans(ctx context.Context) ([]string, error) {
	return a.chat.Reconciler().Orphans(ctx)
}

// Sweep deletes recordings no message references.
func (a *ParleyApp) Sweep(ctx context.Context) ([]string, error) {
	deleted, err := a.chat.Reconciler().Sweep(ctx)
	a.op.Fail(err)
	return deleted, err
}

// Export writes the encrypted history archive to w.
func (a *ParleyApp) Export(w io.Writer) (int, error) {
	if !a.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption keys not found: run 'parley keys init' first")
	}
	n, err := a.chat.ExportHistory(a.encryptor, a.clock, w)
	a.op.Fail(err)
	return n, err
}

// Import decrypts an archive with passphrase and merges it into the log.
func (a *ParleyApp) Import(ctx context.Context, r io.Reader, passphrase string) (parley.ImportResult, error) {
	dec, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		a.op.Fail(err)
		return parley.ImportResult{}, fmt.Errorf("unlocking private key: %w", err)
	}
	res, err := a.chat.ImportHistory(ctx, dec, r)
	a.op.Fail(err)
	return res, err
}

// SetupKeys generates the export key pair, protecting it with passphrase.
func SetupKeys(cfg config.EncryptionConfig, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up keys: %w", err)
	}
	return nil
}

// Close logs the outcome of the operation and closes all resources.
func (a *ParleyApp) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"elapsed", a.op.Elapsed(a.clock.Now()).Truncate(time.Millisecond).String())

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
