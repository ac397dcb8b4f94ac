package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client réunit le Fetcher, la session et le panier d'une même application
type Client struct {
	Fetcher  *Fetcher
	Cart     *CartStore
	sessions SessionWriter
	log      zerolog.Logger
}

func New(baseURL string, sessions SessionWriter, log zerolog.Logger, opts ...FetcherOption) *Client {
	opts = append([]FetcherOption{WithLogger(log)}, opts...)
	fetch := NewFetcher(baseURL, sessions, opts...)
	return &Client{
		Fetcher:  fetch,
		Cart:     NewCartStore(fetch, sessions, log),
		sessions: sessions,
		log:      log,
	}
}

func (c *Client) Session() *Session {
	return c.sessions.Current()
}

type sessionPayload struct {
	AccessToken string `json:"accessToken"`
	Expires     string `json:"expires"`
	User        User   `json:"user"`
}

func (p sessionPayload) toSession() (*Session, error) {
	expires, err := time.Parse(time.RFC3339, p.Expires)
	if err != nil {
		return nil, fmt.Errorf("expiration de session illisible: %w", err)
	}
	return &Session{User: p.User, AccessToken: p.AccessToken, Expires: expires}, nil
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*Session, error) {
	var payload sessionPayload
	if err := c.Fetcher.Public(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	s, err := payload.toSession()
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Set(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Login ouvre une session ; les abonnés (panier) rechargent sur le changement de session
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

type RegisterInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	return c.startSession(ctx, "/api/auth/register", in)
}

// Logout révoque le token côté serveur ; la session locale est vidée dans tous les cas
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.sessions.Current().Valid() {
		err = c.Fetcher.DoJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}
	if setErr := c.sessions.Set(nil); setErr != nil {
		return setErr
	}
	if err != nil && !IsAuthError(err) {
		return err
	}
	return nil
}

type CheckoutForm struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address,omitempty"`
	Comment        string `json:"comment,omitempty"`
	DeliveryMethod string `json:"deliveryMethod"`
	PaymentMethod  string `json:"paymentMethod"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type Order struct {
	ID             string      `json:"id"`
	Status         string      `json:"status"`
	Total          float64     `json:"total"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Address        string      `json:"address,omitempty"`
	Comment        string      `json:"comment,omitempty"`
	DeliveryMethod string      `json:"deliveryMethod"`
	PaymentMethod  string      `json:"paymentMethod"`
	Items          []OrderItem `json:"items"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Checkout crée la commande à partir du panier serveur, que le serveur vide ; le panier local suit
func (c *Client) Checkout(ctx context.Context, form CheckoutForm) (*Order, error) {
	var order Order
	if err := c.Fetcher.DoJSON(ctx, http.MethodPost, "/api/orders", form, &order); err != nil {
		return nil, err
	}
	c.Cart.Clear()
	return &order, nil
}

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var resp struct {
		Orders []Order `json:"orders"`
	}
	if err := c.Fetcher.DoJSON(ctx, http.MethodGet, "/api/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.Fetcher.DoJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PickupQR retourne l'image PNG du QR code de retrait
func (c *Client) PickupQR(ctx context.Context, orderID string) ([]byte, error) {
	resp, err := c.Fetcher.Do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID)+"/pickup-qr", RequestOptions{})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, decode(resp, nil)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
