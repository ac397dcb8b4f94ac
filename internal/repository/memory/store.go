package memory

import (
	"sort"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
)

// Store garde toutes les tables en mémoire (STORE_DRIVER=memory et tests).
// Les repositories du package partagent le même Store pour que le panier voie les produits.
type Store struct {
	mu sync.RWMutex

	users    map[string]models.User
	products map[string]models.Product
	cart     map[string]models.CartItem
	orders   map[string]models.Order

	// ordre d'insertion, les horodatages peuvent être égaux
	seq  int64
	rank map[string]int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]models.User),
		products: make(map[string]models.Product),
		cart:     make(map[string]models.CartItem),
		orders:   make(map[string]models.Order),
		rank:     make(map[string]int64),
		now:      time.Now,
	}
}

// track doit être appelé sous verrou d'écriture
func (s *Store) track(id string) {
	s.seq++
	s.rank[id] = s.seq
}

func (s *Store) sortByRank(ids []string, desc bool) {
	sort.Slice(ids, func(i, j int) bool {
		if desc {
			return s.rank[ids[i]] > s.rank[ids[j]]
		}
		return s.rank[ids[i]] < s.rank[ids[j]]
	})
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Cart() *CartRepo        { return &CartRepo{s: s} }
func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s: s} }

func cloneProduct(p models.Product) models.Product {
	p.Sizes = append(models.StringList(nil), p.Sizes...)
	p.Colors = append(models.StringList(nil), p.Colors...)
	p.Images = append([]models.ProductImage(nil), p.Images...)
	return p
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.CartRepository    = (*CartRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
)
