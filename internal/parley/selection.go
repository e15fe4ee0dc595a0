package parley

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SelectionController tracks which messages are marked for deletion.
type SelectionController struct {
	store    *MessageStore
	audio    AudioStorage
	notifier Notifier
	logger   Logger

	mu       sync.Mutex
	selected map[string]struct{}
}

// NewSelectionController creates a controller with nothing selected.
func NewSelectionController(store *MessageStore, audio AudioStorage, notifier Notifier, logger Logger) *SelectionController {
	return &SelectionController{
		store:    store,
		audio:    audio,
		notifier: notifier,
		logger:   logger,
		selected: make(map[string]struct{}),
	}
}

// Toggle selects id if it is not selected and deselects it otherwise.
func (c *SelectionController) Toggle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return
	}
	c.selected[id] = struct{}{}
}

// Clear deselects everything.
func (c *SelectionController) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[string]struct{})
}

// Selected returns the selected ids in sorted order.
func (c *SelectionController) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether id is selected.
func (c *SelectionController) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// Len returns the number of selected ids.
func (c *SelectionController) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// DeleteSelected deletes the recording of every selected audio message, then
// removes the selected messages from the store and clears the selection.
// A failed file deletion is reported but does not keep its message.
func (c *SelectionController) DeleteSelected(ctx context.Context) error {
	ids := c.Selected()
	if len(ids) == 0 {
		return nil
	}

	var errs []error
	for _, id := range ids {
		msg, ok := c.store.Get(id)
		if !ok || !msg.HasAudio() {
			continue
		}
		uri := strings.TrimSpace(msg.Audio.URI)
		if err := c.audio.Delete(ctx, uri); err != nil {
			c.notifier.Notify(Notice{Kind: NoticeStorage, Text: textCouldNotDeleteFile})
			c.logger.Warn("deleting recording failed", "id", id, "uri", uri, "error", err)
			errs = append(errs, fmt.Errorf("%w: deleting recording %s: %w", ErrStorage, uri, err))
			continue
		}
		c.notifier.Notify(Notice{Kind: NoticeInfo, Text: textFileDeleted})
		c.logger.Debug("recording deleted", "id", id, "uri", uri)
	}

	if err := c.store.Remove(ids); err != nil {
		errs = append(errs, err)
	}
	c.Clear()

	return errors.Join(errs...)
}
