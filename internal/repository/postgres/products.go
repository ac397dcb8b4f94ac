package postgres

import (
	"context"
	"encoding/json"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepo struct {
	db *gorm.DB
}

func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	// résultat de recherche vide : rien à charger
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []models.Product{}, nil
	}

	q := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Images", orderImages)
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", like, like)
	}
	if len(filter.Categories) > 0 {
		q = q.Where("category IN ?", filter.Categories)
	}
	if filter.Size != "" {
		size, _ := json.Marshal([]string{filter.Size})
		q = q.Where("sizes @> ?::jsonb", string(size))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.IDs != nil {
		q = q.Where("id IN ?", filter.IDs)
	}

	var products []models.Product
	if err := q.Order(productOrder(filter.Sort)).Find(&products).Error; err != nil {
		return nil, translate(err, "liste produits")
	}
	return products, nil
}

// productOrder : created_at départage les ex aequo, comme le tri en mémoire
func productOrder(sort repository.ProductSort) string {
	switch sort {
	case repository.SortPriceAsc:
		return "price ASC, created_at DESC"
	case repository.SortPriceDesc:
		return "price DESC, created_at DESC"
	case repository.SortNameAsc:
		return "LOWER(name) ASC, created_at DESC"
	case repository.SortNameDesc:
		return "LOWER(name) DESC, created_at DESC"
	}
	return "created_at DESC"
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, translate(gorm.ErrRecordNotFound, "produit "+id)
	}
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Images", orderImages).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "produit "+id)
	}
	return &product, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	prepareImages(product)
	return translate(r.db.WithContext(ctx).Create(product).Error, "création produit")
}

// Update remplace les champs et la liste d'images dans une transaction.
// Association.Replace laisserait des images orphelines (product_id à NULL).
func (r *ProductRepo) Update(ctx context.Context, product *models.Product) error {
	prepareImages(product)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{ID: product.ID}).
			Select("name", "description", "price", "category", "sizes", "colors", "stock", "updated_at").
			Updates(product)
		if res.Error != nil {
			return translate(res.Error, "mise à jour produit")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "produit "+product.ID)
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return translate(err, "images produit")
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return translate(err, "images produit")
			}
		}
		return nil
	})
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "suppression produit")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "produit "+id)
	}
	return nil
}

func prepareImages(p *models.Product) {
	for i := range p.Images {
		if p.Images[i].ID == "" {
			p.Images[i].ID = uuid.NewString()
		}
		p.Images[i].ProductID = p.ID
		p.Images[i].Position = i
	}
}
