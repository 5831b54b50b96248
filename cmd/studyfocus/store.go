package main

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyfocus/internal/config"
	"github.com/alexanderramin/studyfocus/internal/db"
	"github.com/alexanderramin/studyfocus/internal/persistence"
	"github.com/alexanderramin/studyfocus/internal/repository"
)

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (persistence.KV, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return repository.NewMemoryKVStore(), func() {}, nil

	case config.StoreRedis:
		rc := repository.DefaultRedisConfig()
		rc.URL = cfg.RedisURL
		store, err := repository.NewRedisKVStore(ctx, rc)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil

	case config.StorePostgres:
		store, err := repository.NewPostgresKVStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, store.Close, nil

	default:
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteKVStore(database), func() { _ = database.Close() }, nil
	}
}
