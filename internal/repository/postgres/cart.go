package postgres

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo struct {
	db *gorm.DB
}

func (r *CartRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Product.Images", orderImages)
}

func (r *CartRepo) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.preloaded(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, translate(err, "panier")
	}
	return items, nil
}

func (r *CartRepo) Find(ctx context.Context, key repository.CartLineKey) (*models.CartItem, error) {
	var item models.CartItem
	err := r.preloaded(ctx).
		Where("user_id = ? AND product_id = ? AND size = ? AND color = ?", key.UserID, key.ProductID, key.Size, key.Color).
		First(&item).Error
	if err != nil {
		return nil, translate(err, "ligne panier")
	}
	return &item, nil
}

func (r *CartRepo) Get(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, translate(gorm.ErrRecordNotFound, "ligne "+itemID)
	}
	var item models.CartItem
	err := r.preloaded(ctx).Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		return nil, translate(err, "ligne "+itemID)
	}
	return &item, nil
}

// Add insère la ligne ou ajoute la quantité à la ligne du même triplet.
// Le prix de la ligne existante n'est pas modifié.
func (r *CartRepo) Add(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	line := *item
	line.ID = uuid.NewString()
	line.Product = models.Product{}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "size"}, {Name: "color"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(&line).Error
	if err != nil {
		return nil, translate(err, "ajout panier")
	}

	return r.Find(ctx, repository.CartLineKey{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Size:      item.Size,
		Color:     item.Color,
	})
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartItem, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, translate(gorm.ErrRecordNotFound, "ligne "+itemID)
	}
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, translate(res.Error, "mise à jour panier")
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "ligne "+itemID)
	}
	return r.Get(ctx, userID, itemID)
}

func (r *CartRepo) Remove(ctx context.Context, userID, itemID string) error {
	if _, err := uuid.Parse(itemID); err != nil {
		return translate(gorm.ErrRecordNotFound, "ligne "+itemID)
	}
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return translate(res.Error, "suppression ligne")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "ligne "+itemID)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	return translate(err, "vidage panier")
}
