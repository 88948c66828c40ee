// Package mirror is the durable local cache of the last-synchronized
// documents. It is read at startup before any remote call completes and is
// the fallback when the remote store is unreachable. No expiry, no size
// bound.
package mirror

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/mirror/migrations"
)

// Keys under which the two documents are cached.
const (
	KeyConfig  = "esp_config"
	KeyRecords = "esp_reg"
)

type Mirror struct {
	db *sql.DB
}

func Open(path string) (*Mirror, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mirror dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mirror: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate mirror: %w", err)
	}
	return &Mirror{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

func (m *Mirror) Put(ctx context.Context, key string, body []byte) error {
	_, err := m.db.ExecContext(ctx, `
INSERT INTO documents (key, body, saved_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET body = excluded.body, saved_at = excluded.saved_at`,
		key, body, time.Now().UTC())
	return err
}

// Get returns the last stored copy for key, or found=false when the mirror
// holds nothing for it.
func (m *Mirror) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := m.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (m *Mirror) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *Mirror) Close() error { return m.db.Close() }
