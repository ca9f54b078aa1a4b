// Package sqlite provides a SQLite-backed profile store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"raspadita/internal/storage"
	"raspadita/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Store persists profile values in a SQLite file.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the SQLite file at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, profileID, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s == nil || s.sqlDB == nil {
		return "", false, fmt.Errorf("%w: storage is not configured", storage.ErrStorageUnavailable)
	}
	var value string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM profile_values WHERE profile_id = ? AND key = ?`,
		profileID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %w", storage.ErrStorageUnavailable, key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, profileID, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("%w: storage is not configured", storage.ErrStorageUnavailable)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO profile_values (profile_id, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (profile_id, key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		profileID, key, value, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: set %s: %w", storage.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, profileID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("%w: storage is not configured", storage.ErrStorageUnavailable)
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM profile_values WHERE profile_id = ? AND key = ?`,
		profileID, key,
	); err != nil {
		return fmt.Errorf("%w: delete %s: %w", storage.ErrStorageUnavailable, key, err)
	}
	return nil
}
