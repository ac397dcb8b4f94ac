package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss est retournée par Get quand la clé n'existe pas ou a expiré
var ErrMiss = errors.New("clé absente du cache")

// Store est le sous-ensemble de Redis utilisé par l'application.
// RedisStore l'implémente avec go-redis, MemoryStore sert quand REDIS_HOST est vide.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Incr incrémente le compteur et repousse son expiration à window
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channel string) (*Subscription, error)
}

// Subscription reçoit les messages d'un canal jusqu'à Close
type Subscription struct {
	C     <-chan string
	close func() error
}

func (s *Subscription) Close() error {
	return s.close()
}
