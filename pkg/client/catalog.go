package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type ProductImage struct {
	URL string `json:"url"`
}

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	Sizes       []string       `json:"sizes"`
	Colors      []string       `json:"colors"`
	Stock       int            `json:"stock"`
	SellerID    string         `json:"sellerId"`
	Images      []ProductImage `json:"images"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Image retourne l'URL de la première image ou ""
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// AsNewItem prépare l'ajout au panier d'une variante du produit
func (p Product) AsNewItem(size, color string) NewItem {
	return NewItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image(),
		Size:      size,
		Color:     color,
	}
}

// ProductQuery reprend les filtres du catalogue ; les champs vides sont ignorés
type ProductQuery struct {
	Search     string
	Categories []string
	Size       string
	MinPrice   *float64
	MaxPrice   *float64
	// Sort : newest, price-asc, price-desc, name-asc ou name-desc
	Sort string
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Categories) > 0 {
		v.Set("category", strings.Join(q.Categories, ","))
	}
	if q.Size != "" {
		v.Set("size", q.Size)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ProductInput est le corps de création et de mise à jour d'un produit (vendeur, admin)
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock"`
	Sizes       []string `json:"sizes,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Images      []string `json:"images,omitempty"`
}

func (c *Client) Products(ctx context.Context, q ProductQuery) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.Fetcher.Public(ctx, http.MethodGet, "/api/products"+q.encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.Fetcher.Public(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if err := c.Fetcher.DoJSON(ctx, http.MethodPost, "/api/products", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	var p Product
	if err := c.Fetcher.DoJSON(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.Fetcher.DoJSON(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}

// SellerProducts retourne les produits du vendeur connecté
func (c *Client) SellerProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.Fetcher.DoJSON(ctx, http.MethodGet, "/api/seller/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
