package testutil

import (
	"sync"
	"testing"

	"parley-go/internal/database"
	"parley-go/internal/parley"
)

// NewTestDatabase creates a new in-memory SQLite database with schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// FailingDatabase wraps a Database and returns the configured errors instead
// of delegating. A nil error delegates.
type FailingDatabase struct {
	parley.Database

	mu        sync.Mutex
	ListErr   error
	InsertErr error
	DeleteErr error
}

func NewFailingDatabase(db parley.Database) *FailingDatabase {
	return &FailingDatabase{Database: db}
}

func (f *FailingDatabase) ListMessages() ([]parley.Message, error) {
	f.mu.Lock()
	err := f.ListErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Database.ListMessages()
}

func (f *FailingDatabase) InsertMessage(msg parley.Message) error {
	f.mu.Lock()
	err := f.InsertErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Database.InsertMessage(msg)
}

func (f *FailingDatabase) DeleteMessages(ids []string) error {
	f.mu.Lock()
	err := f.DeleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Database.DeleteMessages(ids)
}

// SetInsertErr changes the insert failure while the database is in use.
func (f *FailingDatabase) SetInsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertErr = err
}
