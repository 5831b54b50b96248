package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/studyfocus/internal/db"
	"github.com/alexanderramin/studyfocus/internal/persistence"
	"github.com/alexanderramin/studyfocus/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runKVContract exercises the behaviour every backend must share.
func runKVContract(t *testing.T, store persistence.KV) {
	t.Helper()
	ctx := context.Background()
	key := "contract-" + uuid.New().String()

	t.Run("absent key", func(t *testing.T) {
		v, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, `{"subjects":[]}`))
		v, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"subjects":[]}`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "second"))
		v, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", v)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, ""))
		v, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("empty key", func(t *testing.T) {
		assert.ErrorIs(t, store.Set(ctx, "", "x"), ErrEmptyKey)
		_, _, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
}

func TestMemoryKVStore_Contract(t *testing.T) {
	runKVContract(t, NewMemoryKVStore())
}

func TestSQLiteKVStore_Contract(t *testing.T) {
	runKVContract(t, NewSQLiteKVStore(testutil.NewTestDB(t)))
}

func TestRedisKVStore_Contract(t *testing.T) {
	url := os.Getenv("STUDYFOCUS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STUDYFOCUS_TEST_REDIS_URL not set")
	}
	cfg := DefaultRedisConfig()
	cfg.URL = url
	cfg.Prefix = "studyfocus-test:"
	store, err := NewRedisKVStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runKVContract(t, store)
}

func TestPostgresKVStore_Contract(t *testing.T) {
	url := os.Getenv("STUDYFOCUS_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("STUDYFOCUS_TEST_POSTGRES_URL not set")
	}
	store, err := NewPostgresKVStore(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(context.Background()), "schema creation is idempotent")
	runKVContract(t, store)
}

func TestRedisKVStore_BadURL(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.URL = "not-a-url://"
	_, err := NewRedisKVStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSQLiteKVStore_Delete(t *testing.T) {
	store := NewSQLiteKVStore(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteKVStore_WriteFailureIsWrapped(t *testing.T) {
	database := testutil.NewTestDB(t)
	failing := &testutil.FailOnNthExecDB{DBTX: database, FailOn: 2, Err: testutil.ErrInjected}
	store := NewSQLiteKVStore(failing)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "first"))
	err := store.Set(ctx, "k", "second")
	assert.ErrorIs(t, err, testutil.ErrInjected)

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", v, "a failed write leaves the previous value")
}

func TestSQLiteKVStore_UpdatesTimestamp(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewSQLiteKVStore(database)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	var updated sql.NullString
	require.NoError(t, database.QueryRow(`SELECT updated_at FROM kv_store WHERE key = 'k'`).Scan(&updated))
	assert.True(t, updated.Valid)
	assert.NotEmpty(t, updated.String)
}

// A file-backed database shares state across pooled connections, which is
// what concurrent access needs under WAL mode.
func TestSQLiteKVStore_ConcurrentReadsDuringWrites(t *testing.T) {
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store := NewSQLiteKVStore(database)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "snapshot", "v-0"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 20; i++ {
			if err := store.Set(ctx, "snapshot", fmt.Sprintf("v-%d", i)); err != nil {
				t.Errorf("writer: %v", err)
				return
			}
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				v, ok, err := store.Get(ctx, "snapshot")
				if err != nil {
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				if !ok || v == "" {
					t.Errorf("reader %d: saw a missing or empty value", reader)
				}
			}
		}(r)
	}
	wg.Wait()

	v, _, err := store.Get(ctx, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, "v-20", v)
}

func TestMemoryKVStore_IsolatedInstances(t *testing.T) {
	a, b := NewMemoryKVStore(), NewMemoryKVStore()
	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "k", "v"))
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, a.Delete(ctx, "k"))
	_, ok, _ = a.Get(ctx, "k")
	assert.False(t, ok)
}
