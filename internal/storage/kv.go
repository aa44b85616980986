package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/vovakirdan/merge-fruit/internal/core"
)

// LocalPlayer is the player name used for games played on the local terminal.
const LocalPlayer = "local"

// Namespace returns the key-value namespace of one player in one game.
func Namespace(gameID, player string) string {
	if player == "" {
		player = LocalPlayer
	}
	return gameID + "/" + player
}

// KV is a core.KV backed by the kv table, scoped to one namespace.
type KV struct {
	db        *sql.DB
	namespace string
}

var _ core.KV = (*KV)(nil)

// KV returns the key-value view of a namespace.
func (s *Store) KV(namespace string) *KV {
	return &KV{db: s.db, namespace: namespace}
}

// Get returns the value stored under key.
func (kv *KV) Get(key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRow(
		"SELECT value FROM kv WHERE namespace = ? AND key = ?",
		kv.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read %s/%s: %w", kv.namespace, key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KV) Set(key, value string) error {
	_, err := kv.db.Exec(
		`INSERT INTO kv (namespace, key, value, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		kv.namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s/%s: %w", kv.namespace, key, err)
	}
	return nil
}

// Remove deletes key. Missing keys are not an error.
func (kv *KV) Remove(key string) error {
	_, err := kv.db.Exec(
		"DELETE FROM kv WHERE namespace = ? AND key = ?",
		kv.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot remove %s/%s: %w", kv.namespace, key, err)
	}
	return nil
}

// MemoryKV is a core.KV kept in memory. It stands in for the database when
// the database cannot be opened; nothing survives the process.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ core.KV = (*MemoryKV)(nil)

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes key.
func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
