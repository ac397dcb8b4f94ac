package memory

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

type CartRepo struct {
	s *Store
}

func (r *CartRepo) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for id, item := range r.s.cart {
		if item.UserID == userID {
			ids = append(ids, id)
		}
	}
	r.s.sortByRank(ids, false)

	items := make([]models.CartItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, r.withProduct(r.s.cart[id]))
	}
	return items, nil
}

func (r *CartRepo) Find(ctx context.Context, key repository.CartLineKey) (*models.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if item, ok := r.find(key); ok {
		return &item, nil
	}
	return nil, fmt.Errorf("ligne %s/%s: %w", key.ProductID, key.Size, repository.ErrNotFound)
}

func (r *CartRepo) Get(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.cart[itemID]
	if !ok || item.UserID != userID {
		return nil, fmt.Errorf("ligne %s: %w", itemID, repository.ErrNotFound)
	}
	item = r.withProduct(item)
	return &item, nil
}

func (r *CartRepo) Add(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[item.ProductID]; !ok {
		return nil, fmt.Errorf("produit %s: %w", item.ProductID, repository.ErrNotFound)
	}

	now := r.s.now()
	key := repository.CartLineKey{UserID: item.UserID, ProductID: item.ProductID, Size: item.Size, Color: item.Color}
	if existing, ok := r.find(key); ok {
		// le prix reste celui du premier ajout
		existing.Quantity += item.Quantity
		existing.UpdatedAt = now
		r.s.cart[existing.ID] = existing
		res := r.withProduct(existing)
		return &res, nil
	}

	line := *item
	line.ID = uuid.NewString()
	line.Product = models.Product{}
	line.CreatedAt, line.UpdatedAt = now, now
	r.s.cart[line.ID] = line
	r.s.track(line.ID)

	res := r.withProduct(line)
	return &res, nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cart[itemID]
	if !ok || item.UserID != userID {
		return nil, fmt.Errorf("ligne %s: %w", itemID, repository.ErrNotFound)
	}
	item.Quantity = quantity
	item.UpdatedAt = r.s.now()
	r.s.cart[itemID] = item

	res := r.withProduct(item)
	return &res, nil
}

func (r *CartRepo) Remove(ctx context.Context, userID, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cart[itemID]
	if !ok || item.UserID != userID {
		return fmt.Errorf("ligne %s: %w", itemID, repository.ErrNotFound)
	}
	delete(r.s.cart, itemID)
	delete(r.s.rank, itemID)
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, item := range r.s.cart {
		if item.UserID == userID {
			delete(r.s.cart, id)
			delete(r.s.rank, id)
		}
	}
	return nil
}

// find doit être appelé sous verrou
func (r *CartRepo) find(key repository.CartLineKey) (models.CartItem, bool) {
	for _, item := range r.s.cart {
		if item.UserID == key.UserID && item.ProductID == key.ProductID &&
			item.Size == key.Size && item.Color == key.Color {
			return item, true
		}
	}
	return models.CartItem{}, false
}

func (r *CartRepo) withProduct(item models.CartItem) models.CartItem {
	if p, ok := r.s.products[item.ProductID]; ok {
		item.Product = cloneProduct(p)
	}
	return item
}
