package memory

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.products))
	for id, p := range r.s.products {
		if filter.Match(p) {
			ids = append(ids, id)
		}
	}
	r.s.sortByRank(ids, true)

	res := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		res = append(res, cloneProduct(r.s.products[id]))
	}
	repository.SortProducts(res, filter.Sort)
	return res, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("produit %s: %w", id, repository.ErrNotFound)
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, exists := r.s.products[product.ID]; exists {
		return fmt.Errorf("produit %s: %w", product.ID, repository.ErrConflict)
	}
	now := r.s.now()
	product.CreatedAt, product.UpdatedAt = now, now
	assignImageIDs(product)

	r.s.products[product.ID] = cloneProduct(*product)
	r.s.track(product.ID)
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.products[product.ID]
	if !ok {
		return fmt.Errorf("produit %s: %w", product.ID, repository.ErrNotFound)
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = r.s.now()
	assignImageIDs(product)

	r.s.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("produit %s: %w", id, repository.ErrNotFound)
	}
	delete(r.s.products, id)
	delete(r.s.rank, id)

	// même comportement que la cascade SQL sur cart_items
	for itemID, item := range r.s.cart {
		if item.ProductID == id {
			delete(r.s.cart, itemID)
			delete(r.s.rank, itemID)
		}
	}
	return nil
}

func assignImageIDs(p *models.Product) {
	for i := range p.Images {
		if p.Images[i].ID == "" {
			p.Images[i].ID = uuid.NewString()
		}
		p.Images[i].ProductID = p.ID
		p.Images[i].Position = i
	}
}
