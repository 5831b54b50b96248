package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/alexanderramin/studyfocus/internal/db"
)

// ErrInjected is the default failure returned by the fakes in this file.
var ErrInjected = errors.New("injected failure")

type kvStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// FlakyKV wraps a store and fails writes while FailSets is set, or every
// read while FailGets is set. It counts attempted writes.
type FlakyKV struct {
	Inner kvStore
	Err   error

	FailSets atomic.Bool
	FailGets atomic.Bool

	mu   sync.Mutex
	sets int
}

func NewFlakyKV(inner kvStore) *FlakyKV {
	return &FlakyKV{Inner: inner, Err: ErrInjected}
}

func (f *FlakyKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	if f.FailSets.Load() {
		return f.Err
	}
	return f.Inner.Set(ctx, key, value)
}

func (f *FlakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.FailGets.Load() {
		return "", false, f.Err
	}
	return f.Inner.Get(ctx, key)
}

// SetCalls returns the number of attempted writes.
func (f *FlakyKV) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

// FailOnNthExecDB injects an error on the Nth ExecContext call. Calls are
// counted starting at 1; reads pass through.
type FailOnNthExecDB struct {
	db.DBTX
	FailOn int32
	Err    error

	count atomic.Int32
}

func (f *FailOnNthExecDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.count.Add(1)
	if n == f.FailOn {
		return nil, f.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
