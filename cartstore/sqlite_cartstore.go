package cartstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cart_slot (
	slot_key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteCartStore keeps slots in a local SQLite file, the durable
// counterpart of browser local storage.
type SQLiteCartStore struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewSQLiteCartStore opens (or creates) the database at dsn.
func NewSQLiteCartStore(dsn string, log logrus.FieldLogger) (*SQLiteCartStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dsn)
	}
	// One writer at a time keeps SQLite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &SQLiteCartStore{db: db, log: log}, nil
}

// Initialize creates the schema.
func (s *SQLiteCartStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return errors.Wrap(err, "enable WAL mode")
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return errors.Wrap(err, "create cart_slot table")
	}
	s.log.Info("SQLiteCartStore initialized")
	return nil
}

// Load reads the slot payload.
func (s *SQLiteCartStore) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM cart_slot WHERE slot_key = ?", key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select slot %s", key)
	}
	return payload, nil
}

// Save upserts the slot payload.
func (s *SQLiteCartStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_slot (slot_key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrapf(err, "upsert slot %s", key)
	}
	return nil
}

// Ping checks the database handle.
func (s *SQLiteCartStore) Ping(ctx context.Context) bool {
	if err := s.db.PingContext(ctx); err != nil {
		s.log.WithError(err).Debug("SQLiteCartStore: Ping failed")
		return false
	}
	return true
}

// Close closes the database.
func (s *SQLiteCartStore) Close() error {
	return s.db.Close()
}
