// AngelaMos | 2026
// persist.go

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Blob is what survives a client restart.
type Blob struct {
	User        User        `json:"user"`
	Credentials Credentials `json:"credentials"`
}

// Persister keeps the session blob between runs. Load returns nil, nil
// when nothing was saved.
type Persister interface {
	Load(ctx context.Context) (*Blob, error)
	Save(ctx context.Context, b Blob) error
	Clear(ctx context.Context) error
}

type MemoryPersister struct {
	mu   sync.Mutex
	blob *Blob
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(context.Context) (*Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blob == nil {
		return nil, nil
	}
	b := *m.blob
	return &b, nil
}

func (m *MemoryPersister) Save(_ context.Context, b Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = &b
	return nil
}

func (m *MemoryPersister) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = nil
	return nil
}

const sessionKey = "session"

// SQLitePersister stores the blob as JSON in a one-table key-value file.
type SQLitePersister struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

func (p *SQLitePersister) Load(ctx context.Context) (*Blob, error) {
	var raw string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, sessionKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var b Blob
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &b, nil
}

func (p *SQLitePersister) Save(ctx context.Context, b Blob) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		sessionKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *SQLitePersister) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

var (
	_ Persister = (*MemoryPersister)(nil)
	_ Persister = (*SQLitePersister)(nil)
)
