package cache

import (
	"context"
)

const (
	CartUpdated = "updated"
	CartCleared = "cleared"
)

// CartEvents diffuse les changements de panier d'un utilisateur (multi-appareils)
type CartEvents struct {
	store Store
}

func NewCartEvents(store Store) *CartEvents {
	return &CartEvents{store: store}
}

func cartChannel(userID string) string {
	return "cart:" + userID
}

func (e *CartEvents) Publish(ctx context.Context, userID, event string) error {
	return e.store.Publish(ctx, cartChannel(userID), event)
}

func (e *CartEvents) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	return e.store.Subscribe(ctx, cartChannel(userID))
}
