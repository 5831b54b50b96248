// Package persistence stores the study snapshot as one JSON value under a
// fixed key of a key-value store.
package persistence

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

// DefaultKey is the key the snapshot lives under.
const DefaultKey = "study-app-data"

// KV is the key-value store contract. Get reports ok == false for an absent
// key.
type KV interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// Adapter saves and loads snapshots through a KV.
type Adapter struct {
	kv  KV
	key string
}

func NewAdapter(kv KV, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{kv: kv, key: key}
}

// Key returns the key snapshots are stored under.
func (a *Adapter) Key() string {
	return a.key
}

// Save encodes s and writes it under the adapter key.
func (a *Adapter) Save(ctx context.Context, s Snapshot) error {
	value, err := Encode(s)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := a.kv.Set(ctx, a.key, value); err != nil {
		return fmt.Errorf("%w: saving %q: %w", domain.ErrPersistence, a.key, err)
	}
	return nil
}

// Load reads the stored snapshot. An absent key yields an empty snapshot.
func (a *Adapter) Load(ctx context.Context) (Snapshot, error) {
	value, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: loading %q: %w", domain.ErrPersistence, a.key, err)
	}
	if !ok || value == "" {
		return Snapshot{}, nil
	}
	s, err := Decode(value)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return s, nil
}
