package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	jsonFileName   = "settings.json"
	sqliteFileName = "settings.db"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown settings backend")

// Store is a key-value store holding one JSON value per settings field.
type Store interface {
	// Get returns the stored values for keys. Missing keys are absent
	// from the result.
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)
	// Set writes values, leaving other keys untouched.
	Set(ctx context.Context, values map[string]json.RawMessage) error
	// Remove deletes keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// Open opens the store for backend inside dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(filepath.Join(dir, jsonFileName)), nil
	case BackendSQLite:
		return OpenSQLiteStore(filepath.Join(dir, sqliteFileName))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Load reads the settings record from store, filling absent fields from
// Defaults.
func Load(ctx context.Context, store Store) (Settings, error) {
	values, err := store.Get(ctx, Keys()...)
	if err != nil {
		return Defaults(), fmt.Errorf("load settings: %w", err)
	}
	return Merge(PartialFromValues(values), Defaults()), nil
}

// Save writes the present fields of p.
func Save(ctx context.Context, store Store, p Partial) error {
	if p.IsEmpty() {
		return nil
	}
	values, err := p.Values()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := store.Set(ctx, values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Reset removes every stored field so that Load returns Defaults.
func Reset(ctx context.Context, store Store) error {
	if err := store.Remove(ctx, Keys()...); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

// InstallDefaults writes the default value of every field that is not
// stored yet and returns the resulting record.
func InstallDefaults(ctx context.Context, store Store) (Settings, error) {
	s, err := Load(ctx, store)
	if err != nil {
		return s, err
	}
	if err := Save(ctx, store, s.Partial()); err != nil {
		return s, err
	}
	return s, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Get(_ context.Context, keys ...string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, values map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
