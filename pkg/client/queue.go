package client

import (
	"context"
	"slices"
	"sync"
)

// lineQueue sérialise les requêtes d'une même ligne de panier dans leur ordre d'émission.
// Chaque appelant prend un ticket ; la tête de file a son canal fermé.
type lineQueue struct {
	mu    sync.Mutex
	lines map[string][]chan struct{}
}

func newLineQueue() *lineQueue {
	return &lineQueue{lines: make(map[string][]chan struct{})}
}

// acquire attend son tour pour key ; release doit être appelé une fois le résultat appliqué
func (q *lineQueue) acquire(ctx context.Context, key string) (func(), error) {
	ticket := make(chan struct{})

	q.mu.Lock()
	q.lines[key] = append(q.lines[key], ticket)
	if len(q.lines[key]) == 1 {
		close(ticket)
	}
	q.mu.Unlock()

	var once sync.Once
	release := func() { once.Do(func() { q.leave(key, ticket) }) }

	select {
	case <-ticket:
		return release, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

// leave retire le ticket et passe la main au suivant si le ticket était en tête
func (q *lineQueue) leave(key string, ticket chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	waiting := q.lines[key]
	i := slices.Index(waiting, ticket)
	if i < 0 {
		return
	}
	waiting = slices.Delete(waiting, i, i+1)
	if len(waiting) == 0 {
		delete(q.lines, key)
		return
	}
	q.lines[key] = waiting
	if i == 0 {
		close(waiting[0])
	}
}

// pending retourne le nombre de requêtes en file pour key
func (q *lineQueue) pending(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines[key])
}
