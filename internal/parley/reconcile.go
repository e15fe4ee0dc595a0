package parley

import (
	"context"
	"fmt"
	"strings"
)

// Reconciler finds recordings in storage that no message references. These
// are left behind when an audio translation fails.
type Reconciler struct {
	store  *MessageStore
	audio  AudioStorage
	logger Logger
}

func NewReconciler(store *MessageStore, audio AudioStorage, logger Logger) *Reconciler {
	return &Reconciler{store: store, audio: audio, logger: logger}
}

// Orphans returns the URIs of stored recordings not attached to any message.
func (r *Reconciler) Orphans(ctx context.Context) ([]string, error) {
	stored, err := r.audio.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}

	referenced := make(map[string]struct{})
	for _, m := range r.store.Messages() {
		if m.HasAudio() {
			referenced[strings.TrimSpace(m.Audio.URI)] = struct{}{}
		}
	}

	var orphans []string
	for _, uri := range stored {
		if _, ok := referenced[uri]; !ok {
			orphans = append(orphans, uri)
		}
	}
	return orphans, nil
}

// Sweep deletes every orphaned recording and returns the deleted URIs.
// It stops at the first deletion error.
func (r *Reconciler) Sweep(ctx context.Context) ([]string, error) {
	orphans, err := r.Orphans(ctx)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(orphans))
	for _, uri := range orphans {
		if err := r.audio.Delete(ctx, uri); err != nil {
			return deleted, fmt.Errorf("%w: deleting orphaned recording %s: %w", ErrStorage, uri, err)
		}
		deleted = append(deleted, uri)
		r.logger.Info("orphaned recording deleted", "uri", uri)
	}
	return deleted, nil
}
