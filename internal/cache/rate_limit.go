package cache

import (
	"context"
	"strconv"
	"time"
)

// RateLimiter compte des tentatives par clé et gère les périodes de blocage
type RateLimiter struct {
	store Store
}

func NewRateLimiter(store Store) *RateLimiter {
	return &RateLimiter{store: store}
}

func (l *RateLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return l.store.Incr(ctx, key, window)
}

func (l *RateLimiter) Count(ctx context.Context, key string) (int64, error) {
	val, err := l.store.Get(ctx, key)
	if err == ErrMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// Block active un blocage ; Blocked retourne le temps restant
func (l *RateLimiter) Block(ctx context.Context, key string, d time.Duration) error {
	return l.store.Set(ctx, key, "1", d)
}

func (l *RateLimiter) Blocked(ctx context.Context, key string) (time.Duration, bool) {
	blocked, err := l.store.Exists(ctx, key)
	if err != nil || !blocked {
		return 0, false
	}
	ttl, _ := l.store.TTL(ctx, key)
	return ttl, true
}

func (l *RateLimiter) Reset(ctx context.Context, keys ...string) error {
	return l.store.Del(ctx, keys...)
}
