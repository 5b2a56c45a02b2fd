package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/planner/internal/infrastructure/database"
	"github.com/taskmaster/planner/internal/ports"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLStore keeps the collections in the kv_store table. The postgres schema
// comes from migrations; sqlite creates its own on open.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore wraps an open database
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

var _ ports.KeyValueStore = (*SQLStore)(nil)

// EnsureSchema creates the kv_store table for sqlite databases.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if s.db.Driver() != database.DriverSQLite {
		return nil
	}
	if _, err := s.db.DB.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create kv_store: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	query := s.db.DB.Rebind(`SELECT value FROM kv_store WHERE key = ?`)

	err := s.db.DB.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := s.db.DB.Rebind(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		return nil
	})
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := s.db.DB.Rebind(`DELETE FROM kv_store WHERE key = ?`)
	if _, err := s.db.DB.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Stats reports connection pool usage
func (s *SQLStore) Stats() map[string]interface{} {
	return s.db.GetConnectionInfo()
}
