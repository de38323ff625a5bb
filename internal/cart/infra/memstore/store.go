// Package memstore keeps cart snapshots in process memory.
package memstore

import (
	"context"
	"sync"
)

// Store is an in-memory key-value store. Snapshots returns a view bound to a
// single key, so several carts can share one Store.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Snapshots(key string) *Snapshots {
	return &Snapshots{store: s, key: key}
}

type Snapshots struct {
	store *Store
	key   string
}

func (v *Snapshots) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()

	data, ok := v.store.data[v.key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (v *Snapshots) Save(ctx context.Context, snapshot []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	v.store.data[v.key] = append([]byte(nil), snapshot...)
	return nil
}
