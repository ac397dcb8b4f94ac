package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/cache"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	cart     repository.CartRepository
	products repository.ProductRepository
	events   *cache.CartEvents
	log      zerolog.Logger
}

func NewCartHandler(cart repository.CartRepository, products repository.ProductRepository,
	events *cache.CartEvents, log zerolog.Logger) *CartHandler {
	return &CartHandler{cart: cart, products: products, events: events, log: log}
}

// notify prévient les autres appareils de l'utilisateur ; une erreur Pub/Sub ne fait pas échouer la requête
func (h *CartHandler) notify(ctx context.Context, userID, event string) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, userID, event); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("⚠️ Notification panier non publiée")
	}
}

func cartPayload(items []models.CartItem) gin.H {
	if items == nil {
		items = []models.CartItem{}
	}
	count, total := models.CartTotals(items)
	return gin.H{"items": items, "total": total, "count": count}
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	items, err := h.cart.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur lecture panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}
	c.JSON(http.StatusOK, cartPayload(items))
}

// POST /api/cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	ctx := c.Request.Context()

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"min=0"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	input.Size = strings.TrimSpace(input.Size)
	input.Color = strings.TrimSpace(input.Color)

	product, err := h.products.Get(ctx, input.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("product_id", input.ProductID).Msg("❌ Erreur lecture produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	if !product.HasSize(input.Size) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Taille invalide"})
		return
	}
	if !product.HasColor(input.Color) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Couleur invalide"})
		return
	}

	inCart := 0
	existing, err := h.cart.Find(ctx, repository.CartLineKey{
		UserID:    userID,
		ProductID: product.ID,
		Size:      input.Size,
		Color:     input.Color,
	})
	switch {
	case err == nil:
		inCart = existing.Quantity
	case !errors.Is(err, repository.ErrNotFound):
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur lecture panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}
	if inCart+input.Quantity > product.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant"})
		return
	}

	item, err := h.cart.Add(ctx, &models.CartItem{
		UserID:          userID,
		ProductID:       product.ID,
		PriceAtAddition: product.Price,
		Quantity:        input.Quantity,
		Size:            input.Size,
		Color:           input.Color,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur ajout au panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}

	h.notify(ctx, userID, cache.CartUpdated)
	c.JSON(http.StatusCreated, item)
}

// PATCH /api/cart/items/:id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	itemID := c.Param("id")
	ctx := c.Request.Context()

	var input struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	line, err := h.cart.Get(ctx, userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("❌ Erreur lecture panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	product, err := h.products.Get(ctx, line.ProductID)
	if err != nil {
		h.log.Error().Err(err).Str("product_id", line.ProductID).Msg("❌ Erreur lecture produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}
	if input.Quantity > product.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant"})
		return
	}

	item, err := h.cart.UpdateQuantity(ctx, userID, itemID, input.Quantity)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("❌ Erreur mise à jour panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	h.notify(ctx, userID, cache.CartUpdated)
	c.JSON(http.StatusOK, item)
}

// DELETE /api/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	itemID := c.Param("id")

	err := h.cart.Remove(c.Request.Context(), userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("❌ Erreur suppression article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression article"})
		return
	}

	h.notify(c.Request.Context(), userID, cache.CartUpdated)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	if err := h.cart.Clear(c.Request.Context(), userID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur vidage panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	h.notify(c.Request.Context(), userID, cache.CartCleared)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
