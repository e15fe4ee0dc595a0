package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKeyValue is a KeyValue backed by a JetStream key-value bucket.
type NATSKeyValue struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

var _ KeyValue = (*NATSKeyValue)(nil)

// NewNATSKeyValue connects to url and opens bucket, creating it if needed.
func NewNATSKeyValue(ctx context.Context, url, bucket string) (*NATSKeyValue, error) {
	nc, err := nats.Connect(url, nats.Name("parley"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	kv, err := js.KeyValue(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "parley message log",
			History:     1,
		})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening key-value bucket %s: %w", bucket, err)
	}

	return &NATSKeyValue{nc: nc, kv: kv}, nil
}

func (n *NATSKeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return entry.Value(), nil
}

func (n *NATSKeyValue) Put(ctx context.Context, key string, value []byte) error {
	if _, err := n.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

func (n *NATSKeyValue) Close() error {
	return n.nc.Drain()
}
