package repository

import (
	"context"
	"errors"

	"storefront/internal/models"
)

var (
	ErrNotFound = errors.New("enregistrement introuvable")
	ErrConflict = errors.New("enregistrement déjà existant")
)

// ProductFilter regroupe les filtres du catalogue. Les champs vides sont ignorés.
type ProductFilter struct {
	Search     string
	Categories []string
	Size       string
	MinPrice   *float64
	MaxPrice   *float64
	SellerID   string
	// IDs restreint la liste aux résultats d'une recherche Elasticsearch
	IDs []string
	// Sort vide : du plus récent au plus ancien
	Sort ProductSort
}

// ProductSort est l'ordre du catalogue tel que passé dans ?sort=
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price-asc"
	SortPriceDesc ProductSort = "price-desc"
	SortNameAsc   ProductSort = "name-asc"
	SortNameDesc  ProductSort = "name-desc"
)

// ParseProductSort accepte "" (ordre par défaut) et les valeurs connues
func ParseProductSort(raw string) (ProductSort, bool) {
	switch s := ProductSort(raw); s {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return s, true
	}
	return "", false
}

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// CartLineKey identifie une ligne du panier : un utilisateur, un produit et sa variante
type CartLineKey struct {
	UserID    string
	ProductID string
	Size      string
	Color     string
}

type CartRepository interface {
	// List retourne les lignes avec le produit et ses images
	List(ctx context.Context, userID string) ([]models.CartItem, error)
	Find(ctx context.Context, key CartLineKey) (*models.CartItem, error)
	Get(ctx context.Context, userID, itemID string) (*models.CartItem, error)
	// Add crée la ligne ou ajoute la quantité à la ligne existante du même triplet
	Add(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Get(ctx context.Context, userID, orderID string) (*models.Order, error)
}
