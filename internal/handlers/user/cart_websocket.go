package user

import (
	"net/http"
	"slices"
	"time"

	"storefront/internal/cache"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	socketPingPeriod = 30 * time.Second
	socketPongWait   = 2 * socketPingPeriod
	socketWriteWait  = 10 * time.Second
)

// CartSocket pousse le panier à jour sur chaque changement publié pour l'utilisateur
type CartSocket struct {
	cart     repository.CartRepository
	events   *cache.CartEvents
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewCartSocket n'accepte que les origines autorisées ; un client sans header Origin (CLI) passe
func NewCartSocket(cart repository.CartRepository, events *cache.CartEvents, allowedOrigins []string, log zerolog.Logger) *CartSocket {
	return &CartSocket{
		cart:   cart,
		events: events,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// GET /api/cart/ws
func (s *CartSocket) Serve(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	ctx := c.Request.Context()

	// abonnement avant l'upgrade : aucun changement n'est perdu entre les deux
	sub, err := s.events.Subscribe(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("❌ Abonnement panier impossible")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Synchronisation indisponible"})
		return
	}
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("⚠️ Erreur upgrade WebSocket")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(socketPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(socketPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) bool {
		conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		if err := conn.WriteJSON(v); err != nil {
			s.log.Debug().Err(err).Str("user_id", userID).Msg("envoi WebSocket interrompu")
			return false
		}
		return true
	}

	if !write(gin.H{"type": "connected", "message": "Synchronisation panier activée"}) {
		return
	}

	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if event != cache.CartUpdated && event != cache.CartCleared {
				continue
			}
			items, err := s.cart.List(ctx, userID)
			if err != nil {
				s.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur lecture panier")
				continue
			}
			msg := cartPayload(items)
			msg["type"] = "cart_updated"
			if !write(msg) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
