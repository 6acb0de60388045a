package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/insightcart/internal/config"
	"github.com/markdave123-py/insightcart/internal/core"
	"github.com/markdave123-py/insightcart/internal/logger"
)

// Open builds the Store selected by STORE_BACKEND.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (core.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store configuration is nil")
	}
	if log == nil {
		log = logger.Nop()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	var (
		store core.Store
		err   error
	)
	switch backend {
	case "memory":
		store = NewMemoryStore()
	case "", "sqlite":
		backend = "sqlite"
		store, err = NewSQLiteStore(ctx, cfg.SqlitePath)
	case "postgres", "postgresql":
		store, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	case "redis":
		store, err = NewRedisStore(ctx, cfg.RedisURL)
	case "mongo", "mongodb":
		store, err = NewMongoStore(ctx, cfg.MongoURL, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("store ready", "backend", backend)
	return store, nil
}
