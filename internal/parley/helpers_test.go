package parley_test

import (
	"testing"

	"parley-go/internal/parley"
	"parley-go/internal/testutil"
)

type harness struct {
	db          *testutil.FailingDatabase
	audio       *testutil.FailingAudioStorage
	translator  *testutil.FakeTranslator
	transcriber *testutil.FakeTranscriber
	recorder    *testutil.FakeRecorder
	player      *testutil.FakePlayer
	speaker     *testutil.FakeSpeaker
	notifier    *testutil.RecordingNotifier
	clock       *testutil.StubClock
	chat        *parley.Chat
}

// newHarness builds a Chat over an in-memory database and audio store.
func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		db:          testutil.NewFailingDatabase(testutil.NewTestDatabase(t)),
		audio:       testutil.NewFailingAudioStorage(),
		translator:  testutil.NewFakeTranslator("hola"),
		transcriber: testutil.NewFakeTranscriber("Good morning"),
		recorder:    testutil.NewFakeRecorder(parley.Recording{}),
		player:      &testutil.FakePlayer{},
		speaker:     &testutil.FakeSpeaker{},
		notifier:    testutil.NewRecordingNotifier(),
		clock:       testutil.FixedClock(),
	}
	h.chat = h.open(t)
	return h
}

// open builds a new Chat over the harness collaborators, as after a restart.
func (h *harness) open(t *testing.T) *parley.Chat {
	t.Helper()

	chat, err := parley.NewChat(parley.Deps{
		Database:    h.db,
		Translator:  h.translator,
		Transcriber: h.transcriber,
		Recorder:    h.recorder,
		Player:      h.player,
		Speaker:     h.speaker,
		Audio:       h.audio,
		Notifier:    h.notifier,
		Clock:       h.clock,
		IDGen:       testutil.NewStubIDGenerator(),
	})
	if err != nil {
		t.Fatalf("NewChat() error = %v", err)
	}
	return chat
}

func (h *harness) lastNotice(t *testing.T) parley.Notice {
	t.Helper()

	n, ok := h.notifier.Last()
	if !ok {
		t.Fatal("expected a notice, got none")
	}
	return n
}

func textMessage(id, source, translation string) parley.Message {
	return parley.Message{
		ID:          id,
		SourceText:  source,
		Translation: translation,
		CreatedAt:   testutil.FixedClock().Now(),
	}
}

func audioMessage(id, translation, uri string, durationMs int64) parley.Message {
	return parley.Message{
		ID:          id,
		Translation: translation,
		Audio:       &parley.Audio{URI: uri, DurationMs: durationMs},
		CreatedAt:   testutil.FixedClock().Now(),
	}
}

func messageIDs(msgs []parley.Message) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
