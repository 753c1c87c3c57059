package state

import (
	"context"
	"time"

	coreconfig "github.com/m3rciful/easyshop/core/config"
)

// Open builds the storage selected by cfg.Backend.
func Open(ctx context.Context, cfg coreconfig.SessionConfig) (Storage, error) {
	if cfg.Backend == coreconfig.SessionBackendMemory {
		return NewMemoryStorage(), nil
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	return NewRedisStorage(ctx, cfg.RedisURL, cfg.KeyPrefix, ttl)
}
