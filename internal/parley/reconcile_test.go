package parley_test

import (
	"context"
	"errors"
	"testing"

	"parley-go/internal/parley"
	"parley-go/internal/testutil"
)

func TestReconciler(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kept := testutil.PutRecording(t, h.audio, "rec-1.m4a", "voice")
	orphan := testutil.PutRecording(t, h.audio, "rec-2.m4a", "failed upload")
	h.chat.Store().Append(audioMessage("m-1", "Good morning", kept, 4200))

	r := h.chat.Reconciler()

	orphans, err := r.Orphans(ctx)
	if err != nil {
		t.Fatalf("Orphans() error = %v", err)
	}
	if !equalStrings(orphans, []string{orphan}) {
		t.Errorf("Orphans() = %v, want [%s]", orphans, orphan)
	}

	deleted, err := r.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if !equalStrings(deleted, []string{orphan}) {
		t.Errorf("Sweep() = %v, want [%s]", deleted, orphan)
	}
	if h.audio.Len() != 1 || h.audio.Deletes(kept) != 0 {
		t.Error("Sweep() touched a referenced recording")
	}
}

func TestReconciler_SweepFailure(t *testing.T) {
	h := newHarness(t)
	testutil.PutRecording(t, h.audio, "rec-1.m4a", "voice")
	h.audio.DeleteErr = errors.New("read-only")

	deleted, err := h.chat.Reconciler().Sweep(context.Background())
	if !errors.Is(err, parley.ErrStorage) {
		t.Fatalf("Sweep() error = %v, want ErrStorage", err)
	}
	if len(deleted) != 0 {
		t.Errorf("Sweep() deleted = %v, want none", deleted)
	}
}
