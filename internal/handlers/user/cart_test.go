package user

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCartMergesSameVariant(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	add := map[string]any{"productId": p.ID, "quantity": 1, "size": "M", "color": "noir"}
	first := f.do(http.MethodPost, "/api/cart", "u1", add)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := f.do(http.MethodPost, "/api/cart", "u1", add)
	require.Equal(t, http.StatusCreated, second.Code)

	a := decodeBody[models.CartItem](t, first)
	b := decodeBody[models.CartItem](t, second)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 2, b.Quantity)
	assert.Equal(t, 500.0, b.PriceAtAddition)

	rec := f.do(http.MethodGet, "/api/cart", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeBody[cartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, 1000.0, cart.Total)
	assert.Equal(t, "T-shirt", cart.Items[0].Product.Name)
	assert.Equal(t, "https://img/t.png", cart.Items[0].Product.FirstImageURL())
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	rec := f.do(http.MethodPost, "/api/cart", "u1", map[string]any{"productId": p.ID, "size": "S", "color": "noir"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, decodeBody[models.CartItem](t, rec).Quantity)
}

func TestAddToCartRejects(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	tests := []struct {
		name   string
		body   map[string]any
		status int
		error  string
	}{
		{"produit inconnu", map[string]any{"productId": "nope"}, http.StatusNotFound, "Produit introuvable"},
		{"taille invalide", map[string]any{"productId": p.ID, "size": "XL", "color": "noir"}, http.StatusBadRequest, "Taille invalide"},
		{"couleur invalide", map[string]any{"productId": p.ID, "size": "M", "color": "rose"}, http.StatusBadRequest, "Couleur invalide"},
		{"stock insuffisant", map[string]any{"productId": p.ID, "size": "M", "color": "noir", "quantity": 6}, http.StatusBadRequest, "Stock insuffisant"},
		{"corps invalide", map[string]any{"quantity": 1}, http.StatusBadRequest, "Données invalides"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/cart", "u1", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.error, decodeBody[map[string]any](t, rec)["error"])
		})
	}

	cart := decodeBody[cartResponse](t, f.do(http.MethodGet, "/api/cart", "u1", nil))
	assert.Empty(t, cart.Items)
}

func TestAddToCartCountsExistingQuantityAgainstStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	rec := f.do(http.MethodPost, "/api/cart", "u1", map[string]any{"productId": p.ID, "size": "M", "color": "noir", "quantity": 4})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/cart", "u1", map[string]any{"productId": p.ID, "size": "M", "color": "noir", "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceIsFrozenAtAddition(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	rec := f.do(http.MethodPost, "/api/cart", "u1", map[string]any{"productId": p.ID, "size": "M", "color": "noir"})
	require.Equal(t, http.StatusCreated, rec.Code)

	p.Price = 800
	require.NoError(t, f.store.Products().Update(context.Background(), &p))

	cart := decodeBody[cartResponse](t, f.do(http.MethodGet, "/api/cart", "u1", nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 500.0, cart.Items[0].PriceAtAddition)
	assert.Equal(t, 800.0, cart.Items[0].Product.Price)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())
	line := decodeBody[models.CartItem](t, f.do(http.MethodPost, "/api/cart", "u1",
		map[string]any{"productId": p.ID, "size": "M", "color": "noir", "quantity": 3}))

	rec := f.do(http.MethodPatch, "/api/cart/items/"+line.ID, "u1", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[models.CartItem](t, rec).Quantity)

	cart := decodeBody[cartResponse](t, f.do(http.MethodGet, "/api/cart", "u1", nil))
	assert.Equal(t, 500.0, cart.Total)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/api/cart/items/"+line.ID, "u1", map[string]any{"quantity": 0}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/api/cart/items/"+line.ID, "u1", map[string]any{"quantity": 9}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPatch, "/api/cart/items/"+line.ID, "u2", map[string]any{"quantity": 2}).Code)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())
	line := decodeBody[models.CartItem](t, f.do(http.MethodPost, "/api/cart", "u1",
		map[string]any{"productId": p.ID, "size": "M", "color": "noir"}))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/cart/items/"+line.ID, "u2", nil).Code)

	rec := f.do(http.MethodDelete, "/api/cart/items/"+line.ID, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/cart/items/"+line.ID, "u1", nil).Code)
}

func TestCartChangesArePublished(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, sampleTshirt())

	sub, err := f.events.Subscribe(context.Background(), "u1")
	require.NoError(t, err)
	defer sub.Close()

	f.do(http.MethodPost, "/api/cart", "u1", map[string]any{"productId": p.ID, "size": "M", "color": "noir"})
	f.do(http.MethodDelete, "/api/cart", "u1", nil)

	for _, want := range []string{cache.CartUpdated, cache.CartCleared} {
		select {
		case got := <-sub.C:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("événement %q non reçu", want)
		}
	}

	cart := decodeBody[cartResponse](t, f.do(http.MethodGet, "/api/cart", "u1", nil))
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Count)
}
