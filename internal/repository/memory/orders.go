package memory

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

type OrderRepo struct {
	s *Store
}

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.s.now()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.s.orders[order.ID] = cloneOrder(*order)
	r.s.track(order.ID)
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for id, o := range r.s.orders {
		if o.UserID == userID {
			ids = append(ids, id)
		}
	}
	r.s.sortByRank(ids, true)

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, cloneOrder(r.s.orders[id]))
	}
	return orders, nil
}

func (r *OrderRepo) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, fmt.Errorf("commande %s: %w", orderID, repository.ErrNotFound)
	}
	o = cloneOrder(o)
	return &o, nil
}
