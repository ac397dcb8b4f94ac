package postgres

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepo struct {
	db *gorm.DB
}

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	// la commande et ses lignes sont créées dans la même transaction par gorm
	return translate(r.db.WithContext(ctx).Create(order).Error, "création commande")
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err, "commandes")
	}
	return orders, nil
}

func (r *OrderRepo) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, translate(gorm.ErrRecordNotFound, "commande "+orderID)
	}
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if err != nil {
		return nil, translate(err, "commande "+orderID)
	}
	return &order, nil
}
