package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKVStore keeps values in a single PostgreSQL table.
type PostgresKVStore struct {
	pool *pgxpool.Pool
}

// NewPostgresKVStore opens a pool from a postgres:// URL, verifies it and
// creates the table if needed.
func NewPostgresKVStore(ctx context.Context, databaseURL string) (*PostgresKVStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing database url: %w", err)
	}
	// One user, one writer.
	if poolConfig.MaxConns == 0 || poolConfig.MaxConns > 4 {
		poolConfig.MaxConns = 4
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	store := &PostgresKVStore{pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates the kv table when it is missing.
func (p *PostgresKVStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS studyfocus_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("postgres: creating studyfocus_kv: %w", err)
	}
	return nil
}

func (p *PostgresKVStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO studyfocus_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: upserting %q: %w", key, err)
	}
	return nil
}

func (p *PostgresKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM studyfocus_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: reading %q: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresKVStore) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM studyfocus_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres: deleting %q: %w", key, err)
	}
	return nil
}

func (p *PostgresKVStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresKVStore) Close() {
	p.pool.Close()
}
