package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/easyshop/core/logger"
)

// RedisStorage keeps sessions as JSON strings under "<prefix>:fsm:<chat>:<user>".
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewRedisStorage parses url, connects and pings the server.
func NewRedisStorage(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("state: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Session.Error("redis connect failed",
			slog.String("event", "session.connect"),
			slog.String("host", opts.Addr),
			slog.Int("db", opts.DB),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("state: redis ping: %w", err)
	}
	logger.Session.Info("redis connected",
		slog.String("event", "session.connect"),
		slog.String("host", opts.Addr),
		slog.Int("db", opts.DB),
		slog.Duration("duration", logger.Took(start)),
	)
	return NewRedisStorageFromClient(client, prefix, ttl), nil
}

// NewRedisStorageFromClient wraps an existing client. The storage owns the client afterwards.
func NewRedisStorageFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) key(k Key) string {
	base := "fsm:" + strconv.FormatInt(k.ChatID, 10) + ":" + strconv.FormatInt(k.UserID, 10)
	if r.prefix == "" {
		return base
	}
	return r.prefix + ":" + base
}

// Load returns the stored session or a fresh idle one when the key is missing.
func (r *RedisStorage) Load(ctx context.Context, key Key) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return NewSession(), nil
	case errors.Is(err, redis.ErrClosed):
		return nil, ErrClosed
	case err != nil:
		return nil, fmt.Errorf("state: redis get: %w", err)
	}
	return decodeSession(raw)
}

// Save writes s with the configured TTL. Empty sessions are deleted.
func (r *RedisStorage) Save(ctx context.Context, key Key, s *Session) error {
	if s == nil || s.Empty() {
		if err := r.Clear(ctx, key); err != nil {
			return err
		}
		if s != nil {
			s.dirty = false
		}
		return nil
	}
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("state: redis set: %w", err)
	}
	s.dirty = false
	return nil
}

// Clear deletes the session for key.
func (r *RedisStorage) Clear(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("state: redis del: %w", err)
	}
	return nil
}

// Close releases the client connection pool once.
func (r *RedisStorage) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.client.Close()
	})
	return r.closeErr
}
