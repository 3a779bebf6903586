// Package securestore implements the client's secure key-value store:
// a small SQLite database whose values are sealed at rest with a key
// derived from a per-device secret. It holds the credential material
// (auth token, session id, user id) and small cached payloads.
package securestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/unicampus-app/unicampus/internal/client/migrations"
	"github.com/unicampus-app/unicampus/internal/common"
	"github.com/unicampus-app/unicampus/internal/cryptox"
	"github.com/unicampus-app/unicampus/internal/dbx"
)

const (
	deviceSecretSize = 32
	deviceSaltSize   = 16
)

// Store is the secure key-value store. A missing key reads as an empty
// string, not an error, mirroring how the mobile keychain behaves.
type Store struct {
	db  *sql.DB
	key []byte
}

// Open opens (creating if needed) the store database at dsn, runs the
// embedded migrations and loads the device secret from keyPath. A fresh
// secret is generated on first use.
func Open(ctx context.Context, dsn string, keyPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	key, err := loadDeviceKey(keyPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load device key: %w", err)
	}

	return &Store{db: db, key: key}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// loadDeviceKey reads the device secret file, creating it when absent.
// The file holds secret and salt back to back; the store key is derived
// from both so copying the database alone is not enough to read it.
func loadDeviceKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		raw = common.GenerateRandByteArray(deviceSecretSize + deviceSaltSize)
		if werr := os.WriteFile(path, raw, 0o600); werr != nil {
			return nil, werr
		}
	} else if err != nil {
		return nil, err
	}

	if len(raw) != deviceSecretSize+deviceSaltSize {
		return nil, fmt.Errorf("device key file %s has unexpected size %d", path, len(raw))
	}

	return cryptox.DeriveStoreKey(raw[:deviceSecretSize], raw[deviceSecretSize:]), nil
}

// Get returns the value stored under key, or "" when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return get(ctx, s.db, s.key, key)
}

func get(ctx context.Context, db dbx.DBTX, storeKey []byte, key string) (string, error) {
	var sealed []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE key = ?`, key).Scan(&sealed)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get secrets[%s]: %w", key, err)
	}

	value, err := cryptox.Open(sealed, storeKey)
	if err != nil {
		return "", fmt.Errorf("failed to unseal secrets[%s]: %w", key, err)
	}
	return string(value), nil
}

// Set stores value under key, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key string, value string) error {
	return set(ctx, s.db, s.key, key, value)
}

func set(ctx context.Context, db dbx.DBTX, storeKey []byte, key string, value string) error {
	sealed, err := cryptox.Seal([]byte(value), storeKey)
	if err != nil {
		return fmt.Errorf("failed to seal secrets[%s]: %w", key, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO secrets (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, sealed)
	if err != nil {
		return fmt.Errorf("failed to set secrets[%s]: %w", key, err)
	}
	return nil
}

// SetMany stores several values in a single transaction, so a login either
// persists the whole credential set or none of it.
func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for k, v := range values {
			if err := set(ctx, tx, s.key, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the value stored under key. Deleting an absent key is not
// an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete secrets[%s]: %w", key, err)
	}
	return nil
}

// Clear wipes every stored value. Called on logout and on irrecoverable
// auth failure.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secrets`)
	if err != nil {
		return fmt.Errorf("failed to clear secrets: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
