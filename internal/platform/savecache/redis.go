package savecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// releaseScript deletes the key only while it still holds the caller's fingerprint.
var releaseScript = redis.NewScript(1, `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`)

// ConnGetter is satisfied by *redis.Pool.
type ConnGetter interface {
	GetContext(ctx context.Context) (redis.Conn, error)
}

// RedisStore shares claims across instances through Redis keys with a PX expiry.
type RedisStore struct {
	pool   ConnGetter
	prefix string
}

// NewRedisPool dials addr lazily with the given credentials.
func NewRedisPool(addr, password string, useTLS bool) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     8,
		IdleTimeout: 4 * time.Minute,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", addr, redis.DialPassword(password), redis.DialUseTLS(useTLS))
		},
	}
}

// NewRedisStore wraps pool. Keys are stored as prefix+key.
func NewRedisStore(pool ConnGetter, prefix string) *RedisStore {
	return &RedisStore{pool: pool, prefix: prefix}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("savecache: get redis conn: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		return fmt.Errorf("savecache: ping redis: %w", err)
	}
	return nil
}

// Claim implements the Store interface.
func (s *RedisStore) Claim(ctx context.Context, key, fingerprint string, now time.Time, window time.Duration) (Claim, error) {
	if !validKey(key) {
		return Claim{}, ErrEmptyKey
	}
	window = normalizeWindow(window)

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return Claim{}, fmt.Errorf("savecache: get redis conn: %w", err)
	}
	defer conn.Close()

	redisKey := s.prefix + key
	ttl := window.Milliseconds()

	_, err = redis.String(conn.Do("SET", redisKey, fingerprint, "PX", ttl, "NX"))
	switch {
	case err == nil:
		return Claim{State: ClaimNew, Key: key, Fingerprint: fingerprint, ExpiresAt: now.UTC().Add(window)}, nil
	case !errors.Is(err, redis.ErrNil):
		return Claim{}, fmt.Errorf("savecache: claim %q: %w", key, err)
	}

	held, err := redis.String(conn.Do("GET", redisKey))
	if err != nil && !errors.Is(err, redis.ErrNil) {
		return Claim{}, fmt.Errorf("savecache: read %q: %w", key, err)
	}
	if err == nil && held == fingerprint {
		remaining, pttlErr := redis.Int64(conn.Do("PTTL", redisKey))
		expires := now.UTC().Add(window)
		if pttlErr == nil && remaining > 0 {
			expires = now.UTC().Add(time.Duration(remaining) * time.Millisecond)
		}
		return Claim{State: ClaimDuplicate, Key: key, Fingerprint: fingerprint, ExpiresAt: expires}, nil
	}

	if _, err := conn.Do("SET", redisKey, fingerprint, "PX", ttl); err != nil {
		return Claim{}, fmt.Errorf("savecache: replace %q: %w", key, err)
	}
	return Claim{State: ClaimNew, Key: key, Fingerprint: fingerprint, ExpiresAt: now.UTC().Add(window)}, nil
}

// Release implements the Store interface.
func (s *RedisStore) Release(ctx context.Context, key, fingerprint string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("savecache: get redis conn: %w", err)
	}
	defer conn.Close()
	if _, err := releaseScript.Do(conn, s.prefix+key, fingerprint); err != nil {
		return fmt.Errorf("savecache: release %q: %w", key, err)
	}
	return nil
}
