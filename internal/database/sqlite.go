package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"parley-go/internal/database/migrations"
	"parley-go/internal/parley"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase stores one row per message. Insertion order is kept by an
// autoincrement sequence column, independent of the message id.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var _ parley.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens the database at path and brings its schema up to
// date. path can be a file path or ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already migrated connection.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// CheckMigrations reports whether the schema matches this binary.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

func (s *SQLiteDatabase) ListMessages() ([]parley.Message, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, source_text, translation, audio_uri, audio_duration_ms, created_at
		FROM messages
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []parley.Message
	for rows.Next() {
		var (
			m         parley.Message
			audioURI  sql.NullString
			audioDur  sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.SourceText, &m.Translation, &audioURI, &audioDur, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if audioURI.Valid {
			m.Audio = &parley.Audio{URI: audioURI.String, DurationMs: audioDur.Int64}
		}
		m.CreatedAt = time.Unix(0, createdAt).UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	return msgs, nil
}

func (s *SQLiteDatabase) InsertMessage(msg parley.Message) error {
	var (
		audioURI sql.NullString
		audioDur sql.NullInt64
	)
	if msg.Audio != nil {
		audioURI = sql.NullString{String: msg.Audio.URI, Valid: true}
		audioDur = sql.NullInt64{Int64: msg.Audio.DurationMs, Valid: true}
	}

	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO messages (id, source_text, translation, audio_uri, audio_duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SourceText, msg.Translation, audioURI, audioDur, msg.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("inserting message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteMessages(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.ExecContext(context.Background(),
		"DELETE FROM messages WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}
