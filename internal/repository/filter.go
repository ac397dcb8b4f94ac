package repository

import (
	"cmp"
	"slices"
	"strings"

	"storefront/internal/models"
)

// Match applique le filtre à un produit déjà chargé (driver mémoire, repli après cache)
func (f ProductFilter) Match(p models.Product) bool {
	if f.SellerID != "" && p.SellerID != f.SellerID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
		return false
	}
	if f.Size != "" && !contains(p.Sizes, f.Size) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.IDs != nil && !contains(f.IDs, p.ID) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// SortProducts trie en place ; le tri est stable, les ex aequo gardent l'ordre reçu.
// SortNewest et "" ne touchent pas à l'ordre : il vient déjà de la source (date, pertinence).
func SortProducts(products []models.Product, sort ProductSort) {
	var less func(a, b models.Product) int
	switch sort {
	case SortPriceAsc:
		less = func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		less = func(a, b models.Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortNameAsc:
		less = func(a, b models.Product) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortNameDesc:
		less = func(a, b models.Product) int { return strings.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name)) }
	default:
		return
	}
	slices.SortStableFunc(products, less)
}
