package postgres

import (
	"errors"
	"fmt"

	"storefront/internal/repository"

	"gorm.io/gorm"
)

// Repositories regroupe les repositories gorm sur une même connexion
type Repositories struct {
	Users    *UserRepo
	Products *ProductRepo
	Cart     *CartRepo
	Orders   *OrderRepo
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    &UserRepo{db: db},
		Products: &ProductRepo{db: db},
		Cart:     &CartRepo{db: db},
		Orders:   &OrderRepo{db: db},
	}
}

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.CartRepository    = (*CartRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
)

// translate convertit les erreurs gorm en erreurs du package repository.
// La connexion doit être ouverte avec TranslateError pour ErrDuplicatedKey.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, repository.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
