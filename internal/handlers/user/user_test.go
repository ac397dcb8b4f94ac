package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeMailer enregistre les commandes confirmées
type fakeMailer struct {
	mu     sync.Mutex
	orders []models.Order
}

func (m *fakeMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	return nil
}

func (m *fakeMailer) sent() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Order(nil), m.orders...)
}

type fixture struct {
	store    *memory.Store
	cache    *cache.MemoryStore
	events   *cache.CartEvents
	tokens   *auth.TokenMaker
	sessions *auth.SessionStore
	mailer   *fakeMailer
	orders   *OrderHandler
	router   *gin.Engine
}

// asUser remplace AuthRequired : l'identité vient des en-têtes X-User / X-Role
func asUser(c *gin.Context) {
	c.Set(middleware.CtxUserID, c.GetHeader("X-User"))
	c.Set(middleware.CtxRole, c.GetHeader("X-Role"))
	c.Next()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenMaker("secret-de-test-jwt", time.Hour)
	require.NoError(t, err)

	f := &fixture{
		store:    memory.NewStore(),
		cache:    cache.NewMemoryStore(),
		tokens:   tokens,
		sessions: auth.NewSessionStore("secret-de-test-session", time.Hour, false),
		mailer:   &fakeMailer{},
		router:   gin.New(),
	}
	f.events = cache.NewCartEvents(f.cache)
	log := zerolog.Nop()
	blacklist := cache.NewTokenBlacklist(f.cache, log)

	authH := NewAuthHandler(f.store.Users(), tokens, blacklist, f.sessions, "http://front.test", log)
	cartH := NewCartHandler(f.store.Cart(), f.store.Products(), f.events, log)
	f.orders = NewOrderHandler(f.store.Cart(), f.store.Orders(), f.events, f.mailer, log)

	r := f.router
	r.POST("/api/auth/register", authH.Register)
	r.POST("/api/auth/login", authH.Login)
	r.GET("/api/auth/session", authH.Session)
	r.POST("/api/auth/logout", middleware.AuthRequired(tokens, blacklist, f.sessions), authH.Logout)

	api := r.Group("/api", asUser)
	api.GET("/cart", cartH.GetCart)
	api.POST("/cart", cartH.AddToCart)
	api.PATCH("/cart/items/:id", cartH.UpdateQuantity)
	api.DELETE("/cart/items/:id", cartH.RemoveItem)
	api.DELETE("/cart", cartH.ClearCart)
	api.POST("/orders", f.orders.Checkout)
	api.GET("/orders", f.orders.ListOrders)
	api.GET("/orders/:id", f.orders.GetOrder)
	api.GET("/orders/:id/pickup-qr", f.orders.PickupQR)
	return f
}

func (f *fixture) product(t *testing.T, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &p))
	return p
}

func (f *fixture) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User", userID)
		req.Header.Set("X-Role", string(models.RoleBuyer))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func sampleTshirt() models.Product {
	return models.Product{
		Name:     "T-shirt",
		Price:    500,
		Category: "tops",
		Sizes:    models.StringList{"S", "M"},
		Colors:   models.StringList{"noir"},
		Stock:    5,
		SellerID: "seller",
		Images:   []models.ProductImage{{URL: "https://img/t.png"}},
	}
}
