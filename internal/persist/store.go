// Package persist keeps Matchday's device-local data in a SQLite key-value
// table: the persisted game snapshot and short-lived provider cache entries.
package persist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/matchday/internal/catalog"
	"github.com/five82/matchday/internal/game"
)

// StorageKey names the persisted game snapshot. The suffix is bumped when the
// task template changes incompatibly so stale snapshots are ignored.
const StorageKey = "liam-game-storage-v3"

const snapshotVersion = 0

// DB provides SQLite-backed key-value persistence.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// envelope matches the {state, version} document older builds wrote.
// Template records the catalog version the saved tasks came from; older
// documents leave it zero.
type envelope struct {
	State    game.Persisted `json:"state"`
	Version  int            `json:"version"`
	Template int            `json:"template,omitempty"`
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*DB, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("open store: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("open store: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// One writer; SQLite serialises anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db, now: time.Now}, nil
}

// SetClock overrides the clock used to stamp writes.
func (d *DB) SetClock(now func() time.Time) {
	if now != nil {
		d.now = now
	}
}

// Close releases the database handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Get returns the raw value stored under key and when it was written.
func (d *DB) Get(key string) ([]byte, time.Time, bool, error) {
	if d == nil || d.db == nil {
		return nil, time.Time{}, false, fmt.Errorf("get %q: db is nil", key)
	}
	var value []byte
	var updated string
	err := d.db.QueryRow(`SELECT value, updated_at FROM kv WHERE key = ?`, key).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("get %q: %w", key, err)
	}
	at, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("get %q: parse updated_at: %w", key, err)
	}
	return value, at, true, nil
}

// Put stores value under key, replacing any previous value.
func (d *DB) Put(key string, value []byte) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("put %q: db is nil", key)
	}
	now := d.now().UTC().Format(time.RFC3339Nano)
	_, err := d.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (d *DB) Delete(key string) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("delete %q: db is nil", key)
	}
	if _, err := d.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// LoadState reads the persisted game snapshot and when it was written. ok is
// false when nothing has been saved yet or the stored document cannot be
// decoded. Tasks saved from a different catalog version are dropped so the
// current template takes their place; the rest of the state is kept.
func (d *DB) LoadState() (game.Persisted, time.Time, bool, error) {
	raw, savedAt, found, err := d.Get(StorageKey)
	if err != nil || !found {
		return game.Persisted{}, time.Time{}, false, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("persist: discarding unreadable snapshot: %v", err)
		return game.Persisted{}, time.Time{}, false, nil
	}
	if env.Template != 0 && env.Template != catalog.Version() {
		log.Printf("persist: task template changed from v%d to v%d, dropping saved tasks", env.Template, catalog.Version())
		env.State.Tasks = nil
	}
	return env.State, savedAt, true, nil
}

// SaveState writes the game snapshot.
func (d *DB) SaveState(p game.Persisted) error {
	raw, err := json.Marshal(envelope{State: p, Version: snapshotVersion, Template: catalog.Version()})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return d.Put(StorageKey, raw)
}

// subscriber is the part of game.Store that Track needs.
type subscriber interface {
	Subscribe(fn game.Listener) func()
}

// Track saves the snapshot after every committed state change and returns
// the unsubscribe function.
func Track(store subscriber, d *DB) func() {
	return store.Subscribe(func(st game.State) {
		if err := d.SaveState(st.Persisted()); err != nil {
			log.Printf("persist: save snapshot failed: %v", err)
		}
	})
}
