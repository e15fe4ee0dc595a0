package parley

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Pipeline turns user input into translated messages. At most one
// translation is in flight at a time; a second request while one is
// running is rejected with ErrBusy rather than queued.
type Pipeline struct {
	store       *MessageStore
	translator  Translator
	transcriber Transcriber
	audio       AudioStorage
	notifier    Notifier
	clock       Clock
	idgen       IDGenerator
	logger      Logger

	mu    sync.Mutex
	busy  bool
	draft string
}

// NewPipeline creates a Pipeline that appends to store.
func NewPipeline(store *MessageStore, translator Translator, transcriber Transcriber, audio AudioStorage, notifier Notifier, clock Clock, idgen IDGenerator, logger Logger) *Pipeline {
	return &Pipeline{
		store:       store,
		translator:  translator,
		transcriber: transcriber,
		audio:       audio,
		notifier:    notifier,
		clock:       clock,
		idgen:       idgen,
		logger:      logger,
	}
}

// Busy reports whether a translation is in flight.
func (p *Pipeline) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Draft returns the pending input text.
func (p *Pipeline) Draft() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// SetDraft replaces the pending input text.
func (p *Pipeline) SetDraft(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = text
}

// SendText translates input into lang and appends the result. On a
// transport failure the input is restored as the draft so it can be retried.
func (p *Pipeline) SendText(ctx context.Context, input string, lang Language) (*Message, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, string(lang))
	}
	if !p.acquire() {
		return nil, ErrBusy
	}
	defer p.release()

	p.logger.Debug("translating text", "language", lang.Code(), "length", len(input))

	translated, err := p.translator.Translate(ctx, input, lang.Name())
	if err != nil {
		p.SetDraft(input)
		p.notifier.Notify(Notice{Kind: NoticeTransport, Text: fmt.Sprintf("%s: %v", textCouldNotTranslate, err)})
		p.logger.Warn("text translation failed", "language", lang.Code(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		p.SetDraft("")
		p.notifier.Notify(Notice{Kind: NoticeEmptyResult, Text: textCouldNotTranslate})
		p.logger.Warn("text translation was empty", "language", lang.Code())
		return nil, ErrEmptyResult
	}

	msg := Message{
		ID:          p.idgen.New(),
		SourceText:  input,
		Translation: translated,
		CreatedAt:   p.clock.Now().UTC(),
	}
	p.SetDraft("")
	return p.append(msg)
}

// SendAudio uploads the recording at uri for translation to English and
// appends the result. The recording is never deleted here, even on failure.
func (p *Pipeline) SendAudio(ctx context.Context, uri string, durationMs int64) (*Message, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: audio uri", ErrEmptyInput)
	}
	if durationMs < 0 {
		return nil, fmt.Errorf("negative audio duration: %d", durationMs)
	}
	if !p.acquire() {
		return nil, ErrBusy
	}
	defer p.release()

	rc, err := p.audio.Open(ctx, uri)
	if err != nil {
		p.notifier.Notify(Notice{Kind: NoticeStorage, Text: textNoTranslation})
		p.logger.Error("opening recording failed", "uri", uri, "error", err)
		return nil, fmt.Errorf("%w: opening recording %s: %w", ErrStorage, uri, err)
	}
	defer rc.Close()

	mimeType := MimeTypeForURI(uri)
	p.logger.Debug("transcribing audio", "uri", uri, "mime_type", mimeType, "duration_ms", durationMs)

	translated, err := p.transcriber.TranscribeAudio(ctx, rc, mimeType)
	if err != nil {
		p.notifier.Notify(Notice{Kind: NoticeTransport, Text: textNoTranslation})
		p.logger.Warn("audio translation failed", "uri", uri, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		p.notifier.Notify(Notice{Kind: NoticeEmptyResult, Text: textNoTranslation})
		p.logger.Warn("audio translation was empty", "uri", uri)
		return nil, ErrEmptyResult
	}

	msg := Message{
		ID:          p.idgen.New(),
		Translation: translated,
		Audio:       &Audio{URI: uri, DurationMs: durationMs},
		CreatedAt:   p.clock.Now().UTC(),
	}
	return p.append(msg)
}

// append adds msg to the store. A message that could not be persisted is
// still returned because it remains in the in-memory log.
func (p *Pipeline) append(msg Message) (*Message, error) {
	if err := p.store.Append(msg); err != nil {
		if !errors.Is(err, ErrStorage) {
			return nil, err
		}
		p.notifier.Notify(Notice{Kind: NoticeStorage, Text: textCouldNotSave})
	}
	p.logger.Info("message translated", "id", msg.ID, "audio", msg.HasAudio())
	return &msg, nil
}

func (p *Pipeline) acquire() bool {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		p.notifier.Notify(Notice{Kind: NoticeBusy, Text: textBusy})
		return false
	}
	p.busy = true
	p.mu.Unlock()
	return true
}

func (p *Pipeline) release() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}
