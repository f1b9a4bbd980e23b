// Package store persists small JSON documents under fixed keys.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Keys used by the service
const (
	KeySettings = "waqt.settings"
	KeyLocation = "waqt.location"
	KeyDebug    = "waqt.debug"
)

// Store is a key-value store of JSON documents. Read returns nil, nil for a
// key that has never been written.
type Store interface {
	Read(key string) (json.RawMessage, error)
	Write(key string, value any) error
	Delete(key string) error
	Close() error
}

// LoadJSON decodes the document under key into v. It returns false when the
// key is missing, unreadable or malformed, leaving v untouched so that the
// caller's defaults stand.
func LoadJSON(s Store, key string, v any, logger *zap.SugaredLogger) bool {
	raw, err := s.Read(key)
	if err != nil {
		if logger != nil {
			logger.Warnw("reading stored value failed", "key", key, "error", err)
		}
		return false
	}
	if raw == nil {
		return false
	}

	if err := json.Unmarshal(raw, v); err != nil {
		if logger != nil {
			logger.Debugw("discarding malformed stored value", "key", key, "error", err)
		}
		return false
	}
	return true
}

// MemoryStore keeps documents in a map
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Read(key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemoryStore) Write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

// WriteRaw stores raw bytes without validating them
func (m *MemoryStore) WriteRaw(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append(json.RawMessage(nil), raw...)
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
