package user

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/cache"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const mailTimeout = 30 * time.Second

type OrderHandler struct {
	cart   repository.CartRepository
	orders repository.OrderRepository
	events *cache.CartEvents
	mailer services.Mailer
	log    zerolog.Logger

	mails sync.WaitGroup
}

func NewOrderHandler(cart repository.CartRepository, orders repository.OrderRepository, events *cache.CartEvents,
	mailer services.Mailer, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{cart: cart, orders: orders, events: events, mailer: mailer, log: log}
}

// Wait attend la fin des e-mails de confirmation en cours d'envoi
func (h *OrderHandler) Wait() {
	h.mails.Wait()
}

type checkoutInput struct {
	FirstName      string                `json:"firstName" binding:"required"`
	LastName       string                `json:"lastName" binding:"required"`
	Email          string                `json:"email" binding:"required,email"`
	Phone          string                `json:"phone" binding:"required"`
	Address        string                `json:"address"`
	Comment        string                `json:"comment"`
	DeliveryMethod models.DeliveryMethod `json:"deliveryMethod" binding:"required,oneof=courier pickup"`
	PaymentMethod  models.PaymentMethod  `json:"paymentMethod" binding:"required,oneof=card cash"`
}

// POST /api/orders
// Le paiement reste simulé : la commande est enregistrée puis le panier serveur est vidé.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	ctx := c.Request.Context()

	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire de commande invalide"})
		return
	}
	input.Address = strings.TrimSpace(input.Address)
	if input.DeliveryMethod == models.DeliveryCourier && input.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse requise pour la livraison"})
		return
	}

	lines, err := h.cart.List(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur lecture panier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity > line.Product.Stock {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Stock insuffisant",
				"productId": line.ProductID,
			})
			return
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			Price:     line.PriceAtAddition,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
		})
	}
	_, total := models.CartTotals(lines)

	order := models.Order{
		UserID:         userID,
		Status:         models.OrderCreated,
		Total:          total,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          strings.TrimSpace(input.Email),
		Phone:          strings.TrimSpace(input.Phone),
		Address:        input.Address,
		Comment:        strings.TrimSpace(input.Comment),
		DeliveryMethod: input.DeliveryMethod,
		PaymentMethod:  input.PaymentMethod,
		Items:          items,
	}
	if err := h.orders.Create(ctx, &order); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur création commande")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	if err := h.cart.Clear(ctx, userID); err != nil {
		h.log.Error().Err(err).Str("order_id", order.ID).Msg("❌ Panier non vidé après commande")
	} else if h.events != nil {
		if err := h.events.Publish(ctx, userID, cache.CartCleared); err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("⚠️ Notification panier non publiée")
		}
	}

	h.log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Float64("total", order.Total).
		Msg("🛒 Commande créée")

	h.sendConfirmation(order)
	c.JSON(http.StatusCreated, order)
}

// l'e-mail part hors de la requête : un SMTP lent ne bloque pas le client
func (h *OrderHandler) sendConfirmation(order models.Order) {
	if h.mailer == nil {
		return
	}
	h.mails.Add(1)
	go func() {
		defer h.mails.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mailer.SendOrderConfirmation(ctx, order); err != nil {
			h.log.Error().Err(err).Str("order_id", order.ID).Msg("❌ E-mail de confirmation non envoyé")
		}
	}()
}

// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("❌ Erreur récupération commandes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) loadOrder(c *gin.Context) (*models.Order, bool) {
	userID := c.GetString(middleware.CtxUserID)
	orderID := c.Param("id")

	order, err := h.orders.Get(c.Request.Context(), userID, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("order_id", orderID).Msg("❌ Erreur récupération commande")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return nil, false
	}
	return order, true
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /api/orders/:id/pickup-qr
func (h *OrderHandler) PickupQR(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if order.DeliveryMethod != models.DeliveryPickup {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande sans retrait en magasin"})
		return
	}

	png, err := services.PickupQRCode(*order)
	if err != nil {
		h.log.Error().Err(err).Str("order_id", order.ID).Msg("❌ Erreur génération QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
