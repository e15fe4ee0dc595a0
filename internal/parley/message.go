package parley

import (
	"fmt"
	"strings"
	"time"
)

// Message is one entry in the conversation log. Once appended to the
// MessageStore it is never edited, only deleted.
type Message struct {
	ID          string    `json:"id"`
	SourceText  string    `json:"sourceText,omitempty"`
	Translation string    `json:"translation"`
	Audio       *Audio    `json:"audio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Audio references a stored recording attached to an audio-origin message.
type Audio struct {
	URI        string `json:"uri"`
	DurationMs int64  `json:"durationMs"`
}

// HasAudio reports whether the message carries a recording.
func (m Message) HasAudio() bool {
	return m.Audio != nil
}

// Validate checks the fields every stored message must have.
func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message id is empty")
	}
	if strings.TrimSpace(m.Translation) == "" {
		return fmt.Errorf("message %s has no translation", m.ID)
	}
	if m.Audio != nil {
		if m.Audio.URI == "" {
			return fmt.Errorf("message %s has audio without a uri", m.ID)
		}
		if m.Audio.DurationMs < 0 {
			return fmt.Errorf("message %s has negative audio duration", m.ID)
		}
	}
	return nil
}

// clone returns a copy that shares no memory with m.
func (m Message) clone() Message {
	if m.Audio != nil {
		a := *m.Audio
		m.Audio = &a
	}
	return m
}

func cloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.clone()
	}
	return out
}

// FormatDuration renders a duration in milliseconds as m:ss.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
