package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSocketPushesSnapshots(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	socket := NewCartSocket(f.store.Cart(), f.events, []string{"http://front.test"}, zerolog.Nop())
	r := gin.New()
	r.GET("/ws", asUser, socket.Serve)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{"X-User": {"u1"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])

	_, err = f.store.Cart().Add(context.Background(), &models.CartItem{
		UserID: "u1", ProductID: p.ID, PriceAtAddition: 500, Quantity: 3, Size: "M", Color: "noir",
	})
	require.NoError(t, err)
	require.NoError(t, f.events.Publish(context.Background(), "u1", cache.CartUpdated))

	var msg struct {
		Type  string            `json:"type"`
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
		Count int               `json:"count"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "cart_updated", msg.Type)
	assert.Len(t, msg.Items, 1)
	assert.Equal(t, 3, msg.Count)
	assert.Equal(t, 1500.0, msg.Total)
}

func TestCartSocketRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)
	socket := NewCartSocket(f.store.Cart(), f.events, []string{"http://front.test"}, zerolog.Nop())
	r := gin.New()
	r.GET("/ws", asUser, socket.Serve)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"X-User": {"u1"}, "Origin": {"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
