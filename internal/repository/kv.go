// Package repository holds the key-value backends the study snapshot can be
// stored in. Every store satisfies persistence.KV: Get reports ok == false
// for an absent key rather than an error.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/studyfocus/internal/persistence"
)

// ErrEmptyKey is returned when a store is asked for the empty key.
var ErrEmptyKey = errors.New("kv: key cannot be empty")

var (
	_ persistence.KV = (*SQLiteKVStore)(nil)
	_ persistence.KV = (*RedisKVStore)(nil)
	_ persistence.KV = (*PostgresKVStore)(nil)
	_ persistence.KV = (*MemoryKVStore)(nil)
)

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

// Pinger is implemented by stores that hold a network connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
