package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = time.Hour

// Lock makes sure a single worker runs a cycle at a time.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
	Holder(ctx context.Context) (string, error)
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SETNX lease. The stored value is "<instance>/<token>" so the
// holder can be reported and only the owner releases it.
type RedisLock struct {
	store    lockStore
	key      string
	ttl      time.Duration
	instance string
	value    string
}

func NewRedisLock(store lockStore, key, instance string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis store required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if instance == "" {
		instance = "unknown"
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl, instance: instance}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	value := l.instance + "/" + uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, value, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.value = value
	}
	return ok, nil
}

// Release deletes the lease if this lock still owns it. An expired or
// foreign lease is left alone.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.value == "" {
		return nil
	}
	current, err := l.store.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		l.value = ""
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", l.key, err)
	case current != l.value:
		l.value = ""
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	l.value = ""
	return nil
}

// Holder returns the value of the current lease, or "" when none is held.
func (l *RedisLock) Holder(ctx context.Context) (string, error) {
	current, err := l.store.Get(ctx, l.key)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return current, err
}
