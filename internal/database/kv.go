package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"parley-go/internal/parley"
)

// StorageKey is the key under which the serialized message log is kept.
const StorageKey = "messages-storage"

// KeyValue is a byte store addressed by key. Get returns (nil, nil) for a
// missing key.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// KVDatabase keeps the whole message log as one JSON array under StorageKey.
// Every write rewrites the array.
type KVDatabase struct {
	kv     KeyValue
	logger parley.Logger

	mu sync.Mutex
}

var _ parley.Database = (*KVDatabase)(nil)

// NewKVDatabase stores messages in kv.
func NewKVDatabase(kv KeyValue, logger parley.Logger) *KVDatabase {
	if logger == nil {
		logger = parley.NewNopLogger()
	}
	return &KVDatabase{kv: kv, logger: logger}
}

func (d *KVDatabase) ListMessages() ([]parley.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read(context.Background())
}

func (d *KVDatabase) InsertMessage(msg parley.Message) error {
	ctx := context.Background()
	d.mu.Lock()
	defer d.mu.Unlock()

	msgs, err := d.read(ctx)
	if err != nil {
		return err
	}
	return d.write(ctx, append(msgs, msg))
}

func (d *KVDatabase) DeleteMessages(ids []string) error {
	ctx := context.Background()
	d.mu.Lock()
	defer d.mu.Unlock()

	msgs, err := d.read(ctx)
	if err != nil {
		return err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]parley.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := drop[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(msgs) {
		return nil
	}
	return d.write(ctx, kept)
}

func (d *KVDatabase) Close() error {
	return d.kv.Close()
}

// read returns the stored log. A value that does not decode is treated as an
// empty log and is replaced by the next write.
func (d *KVDatabase) read(ctx context.Context) ([]parley.Message, error) {
	data, err := d.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", StorageKey, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var msgs []parley.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		d.logger.Warn("stored messages are corrupt, treating as empty", "key", StorageKey, "error", err)
		return nil, nil
	}
	return msgs, nil
}

func (d *KVDatabase) write(ctx context.Context, msgs []parley.Message) error {
	if msgs == nil {
		msgs = []parley.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}
	if err := d.kv.Put(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("writing %s: %w", StorageKey, err)
	}
	return nil
}

// MemoryKeyValue is an in-process KeyValue.
type MemoryKeyValue struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ KeyValue = (*MemoryKeyValue)(nil)

func NewMemoryKeyValue() *MemoryKeyValue {
	return &MemoryKeyValue{data: make(map[string][]byte)}
}

func (m *MemoryKeyValue) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKeyValue) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKeyValue) Close() error { return nil }
