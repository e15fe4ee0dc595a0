package parley

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const archiveVersion = 1

type archive struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Messages   []Message `json:"messages"`
}

// ExportHistory writes the message log to w as a JSON archive encrypted with
// enc's public key. Recordings are referenced by URI only.
func (c *Chat) ExportHistory(enc Encryptor, clock Clock, w io.Writer) (int, error) {
	if clock == nil {
		clock = RealClock{}
	}
	msgs := c.store.Messages()
	data, err := json.Marshal(archive{
		Version:    archiveVersion,
		ExportedAt: clock.Now().UTC(),
		Messages:   msgs,
	})
	if err != nil {
		return 0, fmt.Errorf("encoding history: %w", err)
	}
	if err := enc.Encrypt(bytes.NewReader(data), w); err != nil {
		return 0, fmt.Errorf("encrypting history: %w", err)
	}
	c.logger.Info("history exported", "count", len(msgs))
	return len(msgs), nil
}

// ImportResult counts what ImportHistory did with the archived messages.
type ImportResult struct {
	Imported int // appended to the log
	Skipped  int // id already in the log
	Detached int // imported without audio because the recording is not in storage
}

// ImportHistory decrypts an archive written by ExportHistory and appends
// every message whose id is not already in the log, in archive order.
// Recordings are not part of the archive: an audio message keeps its
// attachment only if its URI opens in this chat's audio storage, otherwise
// it is imported as text.
func (c *Chat) ImportHistory(ctx context.Context, dec DecryptionContext, r io.Reader) (ImportResult, error) {
	var res ImportResult

	var buf bytes.Buffer
	if err := dec.Decrypt(r, &buf); err != nil {
		return res, fmt.Errorf("decrypting history: %w", err)
	}

	var a archive
	if err := json.Unmarshal(buf.Bytes(), &a); err != nil {
		return res, fmt.Errorf("decoding history: %w", err)
	}
	if a.Version != archiveVersion {
		return res, fmt.Errorf("unsupported history archive version %d", a.Version)
	}

	for _, m := range a.Messages {
		if _, exists := c.store.Get(m.ID); exists {
			res.Skipped++
			continue
		}
		if m.HasAudio() && !c.recordingExists(ctx, m.Audio.URI) {
			c.logger.Warn("imported message has no local recording", "id", m.ID, "uri", m.Audio.URI)
			m.Audio = nil
			res.Detached++
		}
		if err := c.store.Append(m); err != nil {
			return res, fmt.Errorf("importing message %s: %w", m.ID, err)
		}
		res.Imported++
	}
	c.logger.Info("history imported",
		"count", res.Imported,
		"skipped", res.Skipped,
		"detached", res.Detached)
	return res, nil
}

func (c *Chat) recordingExists(ctx context.Context, uri string) bool {
	rc, err := c.audio.Open(ctx, strings.TrimSpace(uri))
	if err != nil {
		return false
	}
	rc.Close()
	return true
}
