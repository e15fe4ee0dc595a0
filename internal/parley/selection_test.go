package parley_test

import (
	"context"
	"errors"
	"testing"

	"parley-go/internal/parley"
	"parley-go/internal/testutil"
)

func TestSelectionController_Toggle(t *testing.T) {
	h := newHarness(t)
	sel := h.chat.Selection()

	sel.Toggle("m-2")
	sel.Toggle("m-1")
	if got := sel.Selected(); !equalStrings(got, []string{"m-1", "m-2"}) {
		t.Errorf("Selected() = %v, want [m-1 m-2]", got)
	}
	if !sel.IsSelected("m-1") {
		t.Error("IsSelected(m-1) = false")
	}

	sel.Toggle("m-1")
	sel.Toggle("m-2")
	if sel.Len() != 0 {
		t.Errorf("Len() = %d after toggling twice, want 0", sel.Len())
	}
}

func TestSelectionController_DeleteSelected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.chat.Store()
	uri := testutil.PutRecording(t, h.audio, "rec-1.m4a", "voice")

	store.Append(textMessage("m-1", "hello", "hola"))
	store.Append(audioMessage("m-2", "Good morning", " "+uri+" ", 4200))
	store.Append(textMessage("m-3", "bye", "adiós"))

	sel := h.chat.Selection()
	sel.Toggle("m-1")
	sel.Toggle("m-2")

	if err := sel.DeleteSelected(ctx); err != nil {
		t.Fatalf("DeleteSelected() error = %v", err)
	}

	if ids := messageIDs(store.Messages()); !equalStrings(ids, []string{"m-3"}) {
		t.Errorf("remaining ids = %v, want [m-3]", ids)
	}
	if h.audio.Deletes(uri) != 1 {
		t.Errorf("Deletes(%s) = %d, want 1", uri, h.audio.Deletes(uri))
	}
	if h.audio.Len() != 0 {
		t.Error("recording still stored after delete")
	}
	if sel.Len() != 0 {
		t.Errorf("selection Len() = %d, want 0", sel.Len())
	}
	if texts := h.notifier.Texts(); !equalStrings(texts, []string{"File deleted"}) {
		t.Errorf("notices = %v, want [File deleted]", texts)
	}
	if got := h.open(t).Store().Messages(); !equalStrings(messageIDs(got), []string{"m-3"}) {
		t.Errorf("after restart ids = %v, want [m-3]", messageIDs(got))
	}
}

func TestSelectionController_DeleteSelected_FileFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.audio.DeleteErr = errors.New("permission denied")
	uri := testutil.PutRecording(t, h.audio, "rec-1.m4a", "voice")
	h.chat.Store().Append(audioMessage("m-1", "Good morning", uri, 4200))

	sel := h.chat.Selection()
	sel.Toggle("m-1")
	err := sel.DeleteSelected(ctx)

	if !errors.Is(err, parley.ErrStorage) {
		t.Fatalf("DeleteSelected() error = %v, want ErrStorage", err)
	}
	if h.audio.Deletes(uri) != 1 {
		t.Errorf("Deletes(%s) = %d, want exactly 1", uri, h.audio.Deletes(uri))
	}
	if h.chat.Store().Len() != 0 {
		t.Error("message kept after its file could not be deleted")
	}
	if n := h.lastNotice(t); n.Kind != parley.NoticeStorage || n.Text != "Could not delete file" {
		t.Errorf("notice = %+v", n)
	}
	if sel.Len() != 0 {
		t.Errorf("selection Len() = %d, want 0", sel.Len())
	}
}

func TestSelectionController_DeleteSelected_Empty(t *testing.T) {
	h := newHarness(t)
	h.chat.Store().Append(textMessage("m-1", "hello", "hola"))

	if err := h.chat.Selection().DeleteSelected(context.Background()); err != nil {
		t.Fatalf("DeleteSelected() error = %v", err)
	}
	if h.chat.Store().Len() != 1 {
		t.Error("message removed with nothing selected")
	}
}

func TestSelectionController_DeleteSelected_UnknownID(t *testing.T) {
	h := newHarness(t)
	sel := h.chat.Selection()
	sel.Toggle("gone")

	if err := sel.DeleteSelected(context.Background()); err != nil {
		t.Fatalf("DeleteSelected() error = %v", err)
	}
	if sel.Len() != 0 {
		t.Errorf("selection Len() = %d, want 0", sel.Len())
	}
}
