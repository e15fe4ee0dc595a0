package testutil

import (
	"context"
	"io"
	"sync"

	"parley-go/internal/parley"
)

// FakeRecorder hands out captures that return Recording when stopped. If
// PermissionBlock is set, RequestPermission signals PermissionStarted on entry
// and waits for a value on PermissionBlock (or for ctx) before answering.
type FakeRecorder struct {
	mu                 sync.Mutex
	permissionRequests int
	starts             int

	Granted           bool
	PermissionErr     error
	PermissionBlock   chan struct{}
	PermissionStarted chan struct{}
	StartErr          error
	StopErr           error
	Recording         parley.Recording
}

var _ parley.Recorder = (*FakeRecorder)(nil)

// NewFakeRecorder returns a recorder that grants permission and produces rec.
func NewFakeRecorder(rec parley.Recording) *FakeRecorder {
	return &FakeRecorder{Granted: true, Recording: rec}
}

func (r *FakeRecorder) RequestPermission(ctx context.Context) (bool, error) {
	r.mu.Lock()
	r.permissionRequests++
	block, started := r.PermissionBlock, r.PermissionStarted
	r.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PermissionErr != nil {
		return false, r.PermissionErr
	}
	return r.Granted, nil
}

func (r *FakeRecorder) Start(_ context.Context) (parley.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.StartErr != nil {
		return nil, r.StartErr
	}
	return &fakeCapture{rec: r.Recording, err: r.StopErr}, nil
}

func (r *FakeRecorder) PermissionRequests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.permissionRequests
}

func (r *FakeRecorder) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

type fakeCapture struct {
	rec parley.Recording
	err error
}

func (c *fakeCapture) Stop(_ context.Context) (parley.Recording, error) {
	if c.err != nil {
		return parley.Recording{}, c.err
	}
	return c.rec, nil
}

// FakePlayer records what it was asked to play.
type FakePlayer struct {
	mu        sync.Mutex
	played    [][]byte
	mimeTypes []string

	Err error
}

var _ parley.Player = (*FakePlayer)(nil)

func (p *FakePlayer) Play(_ context.Context, audio io.Reader, mimeType string) error {
	if p.Err != nil {
		return p.Err
	}
	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, data)
	p.mimeTypes = append(p.mimeTypes, mimeType)
	return nil
}

func (p *FakePlayer) Played() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.played...)
}

func (p *FakePlayer) MimeTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.mimeTypes...)
}

// Utterance is one call to FakeSpeaker.
type Utterance struct {
	Text         string
	LanguageCode string
}

// FakeSpeaker records what it was asked to say.
type FakeSpeaker struct {
	mu     sync.Mutex
	spoken []Utterance

	Err error
}

var _ parley.Speaker = (*FakeSpeaker)(nil)

func (s *FakeSpeaker) Speak(_ context.Context, text, languageCode string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, Utterance{Text: text, LanguageCode: languageCode})
	return nil
}

func (s *FakeSpeaker) Spoken() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Utterance(nil), s.spoken...)
}
