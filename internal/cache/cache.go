package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const ProductCacheTTL = 10 * time.Minute

// CachedProducts enveloppe un ProductRepository avec un cache de lecture par produit.
// Les écritures invalident la clé product:<id>.
type CachedProducts struct {
	repository.ProductRepository
	store Store
	log   zerolog.Logger
}

func NewCachedProducts(repo repository.ProductRepository, store Store, log zerolog.Logger) *CachedProducts {
	return &CachedProducts{ProductRepository: repo, store: store, log: log}
}

func productKey(id string) string {
	return "product:" + id
}

func (c *CachedProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	data, err := c.store.Get(ctx, productKey(id))
	if err == nil {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	} else if !errors.Is(err, ErrMiss) {
		c.log.Warn().Err(err).Str("product_id", id).Msg("⚠️ Lecture cache produit")
	}

	product, err := c.ProductRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(product); err == nil {
		if err := c.store.Set(ctx, productKey(id), string(raw), ProductCacheTTL); err != nil {
			c.log.Warn().Err(err).Str("product_id", id).Msg("⚠️ Écriture cache produit")
		}
	}
	return product, nil
}

func (c *CachedProducts) Update(ctx context.Context, product *models.Product) error {
	if err := c.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, product.ID)
	return nil
}

func (c *CachedProducts) Delete(ctx context.Context, id string) error {
	if err := c.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedProducts) invalidate(ctx context.Context, id string) {
	if err := c.store.Del(ctx, productKey(id)); err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("⚠️ Invalidation cache produit")
	}
}
