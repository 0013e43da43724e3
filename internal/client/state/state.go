// Package state keeps the admin CLI's session between runs in a local
// SQLite file: the staff token, the username and the last collection used.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophsite/internal/client/state/migrations"
	"github.com/dmitrijs2005/gophsite/internal/dbx"
)

const (
	KeyToken      = "token"
	KeyUsername   = "username"
	KeyCollection = "collection"
)

// Store is a key/value table in SQLite.
type Store struct {
	db *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the state file at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate state: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns "" when key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get state[%s]: %w", key, err)
	}
	return string(value), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", key, err)
	}
	return nil
}

// SaveLogin stores the token and username together.
func (s *Store) SaveLogin(ctx context.Context, username, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for k, v := range map[string]string{KeyUsername: username, KeyToken: token} {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO metadata (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, k, []byte(v)); err != nil {
				return fmt.Errorf("failed to set state[%s]: %w", k, err)
			}
		}
		return nil
	})
}

// ClearLogin forgets the token and username.
func (s *Store) ClearLogin(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?)`, KeyToken, KeyUsername)
	if err != nil {
		return fmt.Errorf("failed to clear login: %w", err)
	}
	return nil
}
