package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxLoadAttempts borne les rechargements quand des mutations arrivent pendant un chargement
const maxLoadAttempts = 3

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	}
	return "uninitialized"
}

// CartItem est le miroir local d'une ligne du panier serveur. Price est figé à l'ajout.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// NewItem décrit un produit à ajouter au panier
type NewItem struct {
	ProductID string
	Name      string
	Price     float64
	Image     string
	Size      string
	Color     string
}

type serverLine struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Product   struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"product"`
	PriceAtAddition float64 `json:"priceAtAddition"`
	Quantity        int     `json:"quantity"`
	Size            string  `json:"size"`
	Color           string  `json:"color"`
}

func (l serverLine) toItem() CartItem {
	item := CartItem{
		ID:        l.ID,
		ProductID: l.ProductID,
		Name:      l.Product.Name,
		Price:     l.PriceAtAddition,
		Quantity:  l.Quantity,
		Size:      l.Size,
		Color:     l.Color,
	}
	if len(l.Product.Images) > 0 {
		item.Image = l.Product.Images[0].URL
	}
	return item
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func variantKey(productID, size, color string) string {
	return productID + "|" + size + "|" + color
}

// CartStore garde le panier local synchronisé avec /api/cart.
// Les mutations d'une même ligne passent par une file : la dernière requête émise est la dernière appliquée.
// Un résultat obtenu sous une session qui n'est plus la session courante est ignoré.
type CartStore struct {
	fetch    *Fetcher
	sessions SessionProvider
	queue    *lineQueue
	log      zerolog.Logger

	mu    sync.RWMutex
	items []CartItem
	state State
	owner *Session
	// loadSeq identifie le dernier chargement lancé, rev compte les mutations appliquées
	loadSeq uint64
	rev     uint64

	onChange func([]CartItem)
}

func NewCartStore(fetch *Fetcher, sessions SessionProvider, log zerolog.Logger) *CartStore {
	return &CartStore{
		fetch:    fetch,
		sessions: sessions,
		queue:    newLineQueue(),
		log:      log,
	}
}

func (s *CartStore) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Items retourne une copie des lignes dans l'ordre du panier
func (s *CartStore) Items() []CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *CartStore) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s *CartStore) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	for _, item := range s.items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.InexactFloat64()
}

// OnChange enregistre fn, appelée avec une copie des lignes après chaque changement appliqué
func (s *CartStore) OnChange(fn func([]CartItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *CartStore) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn(s.Items())
	}
}

// Clear vide le panier local seulement ; le serveur vide le sien à la création de commande.
// Un chargement en cours au moment de l'appel est ignoré.
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.items = nil
	s.loadSeq++
	s.rev++
	if s.state == StateLoading {
		s.state = StateLoaded
	}
	s.mu.Unlock()
	s.notify()
}

// Load remplace le panier local par celui du serveur, ou le vide sans session.
// Un chargement dépassé par un chargement plus récent est ignoré.
func (s *CartStore) Load(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		retry, applied, err := s.load(ctx, attempt >= maxLoadAttempts)
		if applied {
			s.notify()
		}
		if !retry {
			return err
		}
		s.log.Debug().Int("attempt", attempt).Msg("panier modifié pendant le chargement, nouvel essai")
	}
}

func (s *CartStore) load(ctx context.Context, force bool) (retry, applied bool, err error) {
	sess := s.sessions.Current()

	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	if sess != s.owner {
		s.items = nil
		s.owner = sess
	}
	// une session expirée passe par la requête pour remonter ErrAuthorizationRequired
	if !sess.hasToken() {
		s.items = nil
		s.state = StateLoaded
		s.mu.Unlock()
		return false, true, nil
	}
	s.state = StateLoading
	rev := s.rev
	s.mu.Unlock()

	var resp struct {
		Items []serverLine `json:"items"`
	}
	err = s.fetch.DoJSON(ctx, http.MethodGet, "/api/cart", nil, &resp)

	s.mu.Lock()
	defer s.mu.Unlock()

	// un chargement plus récent (ou Clear) a pris la main
	if seq != s.loadSeq {
		return false, false, nil
	}
	// la session a changé pendant la requête : on recharge pour la nouvelle
	if s.sessions.Current() != sess {
		return true, false, nil
	}
	if err != nil {
		s.state = StateLoaded
		return false, false, err
	}
	if s.rev != rev && !force {
		return true, false, nil
	}

	items := make([]CartItem, 0, len(resp.Items))
	for _, line := range resp.Items {
		items = append(items, line.toItem())
	}
	s.items = items
	s.state = StateLoaded
	return false, true, nil
}

// Run charge le panier puis le recharge à chaque changement de session, jusqu'à l'annulation de ctx
func (s *CartStore) Run(ctx context.Context) error {
	changes, stop := s.sessions.Subscribe()
	defer stop()

	s.reload(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			s.reload(ctx)
		}
	}
}

func (s *CartStore) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("chargement du panier échoué")
	}
}

// apply exécute fn sous verrou si la session n'a pas changé depuis l'envoi de la requête
func (s *CartStore) apply(sess *Session, fn func()) {
	s.mu.Lock()
	if s.sessions.Current() != sess {
		s.mu.Unlock()
		s.log.Debug().Msg("résultat d'une session précédente ignoré")
		return
	}
	fn()
	s.rev++
	s.mu.Unlock()
	s.notify()
}

func (s *CartStore) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *CartStore) indexOfVariant(productID, size, color string) int {
	for i, item := range s.items {
		if item.ProductID == productID && item.Size == size && item.Color == color {
			return i
		}
	}
	return -1
}

// lineKey rattache une ligne connue à sa variante, pour partager la file de Add
func (s *CartStore) lineKey(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		item := s.items[i]
		return variantKey(item.ProductID, item.Size, item.Color)
	}
	return "id:" + id
}

// Add ajoute une unité du produit. Rien n'est modifié localement avant la réponse du serveur.
func (s *CartStore) Add(ctx context.Context, item NewItem) error {
	sess := s.sessions.Current()

	release, err := s.queue.acquire(ctx, variantKey(item.ProductID, item.Size, item.Color))
	if err != nil {
		return mutationError(ErrAddFailed, err)
	}
	defer release()

	var line serverLine
	err = s.fetch.DoJSON(ctx, http.MethodPost, "/api/cart", addRequest{
		ProductID: item.ProductID,
		Quantity:  1,
		Size:      item.Size,
		Color:     item.Color,
	}, &line)
	if err != nil {
		return mutationError(ErrAddFailed, err)
	}

	s.apply(sess, func() {
		if i := s.indexOfVariant(item.ProductID, item.Size, item.Color); i >= 0 {
			s.items[i].Quantity++
			return
		}
		added := CartItem{
			ID:        line.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  1,
			Size:      item.Size,
			Color:     item.Color,
		}
		// le prix figé par le serveur fait foi
		if line.PriceAtAddition > 0 {
			added.Price = line.PriceAtAddition
		}
		if added.Name == "" {
			added.Name = line.Product.Name
		}
		if added.Image == "" && len(line.Product.Images) > 0 {
			added.Image = line.Product.Images[0].URL
		}
		s.items = append(s.items, added)
	})
	return nil
}

// Remove supprime la ligne côté serveur puis localement
func (s *CartStore) Remove(ctx context.Context, id string) error {
	sess := s.sessions.Current()

	release, err := s.queue.acquire(ctx, s.lineKey(id))
	if err != nil {
		return mutationError(ErrRemoveFailed, err)
	}
	defer release()

	if err := s.fetch.DoJSON(ctx, http.MethodDelete, "/api/cart/items/"+url.PathEscape(id), nil, nil); err != nil {
		return mutationError(ErrRemoveFailed, err)
	}

	s.apply(sess, func() {
		if i := s.indexOf(id); i >= 0 {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
		}
	})
	return nil
}

// UpdateQuantity fixe la quantité d'une ligne ; en dessous de 1 la ligne est supprimée
func (s *CartStore) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, id)
	}
	sess := s.sessions.Current()

	release, err := s.queue.acquire(ctx, s.lineKey(id))
	if err != nil {
		return mutationError(ErrUpdateFailed, err)
	}
	defer release()

	body := map[string]int{"quantity": quantity}
	if err := s.fetch.DoJSON(ctx, http.MethodPatch, "/api/cart/items/"+url.PathEscape(id), body, nil); err != nil {
		return mutationError(ErrUpdateFailed, err)
	}

	s.apply(sess, func() {
		if i := s.indexOf(id); i >= 0 {
			s.items[i].Quantity = quantity
		}
	})
	return nil
}

// IsAuthError indique si err demande une nouvelle connexion
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthorizationRequired)
}
