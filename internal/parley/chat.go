package parley

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Deps are the collaborators a Chat is built from. Notifier, Logger, Clock
// and IDGen default to no-op or real implementations when nil. Recorder,
// Player and Speaker may be nil if the host has no such device.
type Deps struct {
	Database    Database
	Translator  Translator
	Transcriber Transcriber
	Recorder    Recorder
	Player      Player
	Speaker     Speaker
	Audio       AudioStorage
	Notifier    Notifier
	Logger      Logger
	Clock       Clock
	IDGen       IDGenerator
}

// Chat wires the message store and its three controllers to one set of
// collaborators.
type Chat struct {
	store     *MessageStore
	pipeline  *Pipeline
	recording *RecordingController
	selection *SelectionController

	audio   AudioStorage
	player  Player
	speaker Speaker
	logger  Logger
}

// NewChat builds a Chat and hydrates its store from the database.
func NewChat(deps Deps) (*Chat, error) {
	if deps.Database == nil {
		return nil, errors.New("chat requires a database")
	}
	if deps.Translator == nil || deps.Transcriber == nil {
		return nil, errors.New("chat requires a translator and a transcriber")
	}
	if deps.Audio == nil {
		return nil, errors.New("chat requires audio storage")
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = NewNopLogger()
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if deps.IDGen == nil {
		deps.IDGen = UUIDGenerator{}
	}

	store := NewMessageStore(deps.Database, deps.Logger)
	pipeline := NewPipeline(store, deps.Translator, deps.Transcriber, deps.Audio, deps.Notifier, deps.Clock, deps.IDGen, deps.Logger)

	c := &Chat{
		store:     store,
		pipeline:  pipeline,
		selection: NewSelectionController(store, deps.Audio, deps.Notifier, deps.Logger),
		audio:     deps.Audio,
		player:    deps.Player,
		speaker:   deps.Speaker,
		logger:    deps.Logger,
	}
	if deps.Recorder != nil {
		c.recording = NewRecordingController(deps.Recorder, pipeline, deps.Notifier, deps.Clock, deps.Logger)
	}

	store.Load()
	return c, nil
}

func (c *Chat) Store() *MessageStore { return c.store }
func (c *Chat) Pipeline() *Pipeline { return c.pipeline }
func (c *Chat) Selection() *SelectionController { return c.selection }
func (c *Chat) Recording() *RecordingController { return c.recording }
func (c *Chat) Reconciler() *Reconciler { return NewReconciler(c.store, c.audio, c.logger) }

// Play plays the recording attached to message id and blocks until it ends.
func (c *Chat) Play(ctx context.Context, id string) error {
	if c.player == nil {
		return errors.New("no audio player configured")
	}
	msg, ok := c.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if !msg.HasAudio() {
		return fmt.Errorf("%w: %s", ErrNoAudio, id)
	}

	uri := strings.TrimSpace(msg.Audio.URI)
	rc, err := c.audio.Open(ctx, uri)
	if err != nil {
		return fmt.Errorf("%w: opening recording %s: %w", ErrStorage, uri, err)
	}
	defer rc.Close()

	c.logger.Debug("playing recording", "id", id, "uri", uri)
	if err := c.player.Play(ctx, rc, MimeTypeForURI(uri)); err != nil {
		return fmt.Errorf("playing recording %s: %w", uri, err)
	}
	return nil
}

// Speak reads the translation of message id aloud, using lang as the voice hint.
func (c *Chat) Speak(ctx context.Context, id string, lang Language) error {
	if c.speaker == nil {
		return errors.New("no speech synthesizer configured")
	}
	msg, ok := c.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if err := c.speaker.Speak(ctx, msg.Translation, lang.Code()); err != nil {
		return fmt.Errorf("speaking message %s: %w", id, err)
	}
	return nil
}
