package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"parley-go/internal/config"
	"parley-go/internal/parley"
)

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
func NewDatabaseFromConfig(ctx context.Context, cfg config.DatabaseConfig, logger parley.Logger) (parley.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return openSQLite(filepath.Join(cfg.DataDir, "parley.db"))
	case "memory":
		return openSQLite(":memory:")
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("nats_url required for nats database")
		}
		bucket := cfg.NATSBucket
		if bucket == "" {
			bucket = "parley"
		}
		kv, err := NewNATSKeyValue(ctx, cfg.NATSURL, bucket)
		if err != nil {
			return nil, err
		}
		return NewKVDatabase(kv, logger), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// openSQLite keeps a failed open from returning a non-nil interface.
func openSQLite(path string) (parley.Database, error) {
	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}
	return db, nil
}
