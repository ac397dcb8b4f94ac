package client

import (
	"context"
	"errors"
	"fmt"
)

const cartSocketPath = "/api/cart/ws"

type socketMessage struct {
	Type string `json:"type"`
}

// Watch écoute /api/cart/ws et recharge le panier à chaque "cart_updated" (autre appareil, commande).
// Retourne à l'annulation de ctx ou à la fermeture de la connexion.
func (s *CartStore) Watch(ctx context.Context) error {
	conn, err := s.fetch.Dial(ctx, cartSocketPath)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	defer conn.Close()
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("websocket panier: %w", err)
		}

		switch msg.Type {
		case "connected":
			s.log.Debug().Msg("synchronisation panier active")
		case "cart_updated":
			if err := s.Load(ctx); err != nil {
				if errors.Is(err, ErrAuthorizationRequired) {
					return err
				}
				s.log.Warn().Err(err).Msg("rechargement du panier échoué")
			}
		}
	}
}
