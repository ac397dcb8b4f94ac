package product

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ProductSearch est l'index plein texte du catalogue (Elasticsearch)
type ProductSearch interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]string, error)
}

type ProductHandler struct {
	products repository.ProductRepository
	search   ProductSearch
	log      zerolog.Logger
}

// NewProductHandler : search peut être nil, la recherche passe alors par le store
func NewProductHandler(products repository.ProductRepository, search ProductSearch, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{products: products, search: search, log: log}
}

type productInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Category    string   `json:"category" binding:"required"`
	Stock       *int     `json:"stock" binding:"required,min=0"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Images      []string `json:"images" binding:"dive,url"`
}

func (in productInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.Category = strings.TrimSpace(in.Category)
	p.Stock = *in.Stock
	p.Sizes = cleanList(in.Sizes)
	p.Colors = cleanList(in.Colors)
	p.Images = make([]models.ProductImage, 0, len(in.Images))
	for i, url := range in.Images {
		p.Images = append(p.Images, models.ProductImage{URL: url, Position: i})
	}
}

func cleanList(values []string) models.StringList {
	out := make(models.StringList, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parsePrice(c *gin.Context, key string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}

// catégories en "a,b" ou en paramètre répété
func parseCategories(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("category") {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				out = append(out, cat)
			}
		}
	}
	return out
}

// GET /api/products?search=&category=&size=&minPrice=&maxPrice=&sort=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	sort, ok := repository.ParseProductSort(strings.TrimSpace(c.Query("sort")))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tri invalide"})
		return
	}

	minPrice, ok := parsePrice(c, "minPrice")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix minimum invalide"})
		return
	}
	maxPrice, ok := parsePrice(c, "maxPrice")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix maximum invalide"})
		return
	}

	filter := repository.ProductFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Categories: parseCategories(c),
		Size:       strings.TrimSpace(c.Query("size")),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       sort,
	}

	var ranking []string
	if filter.Search != "" && h.search != nil {
		ids, err := h.search.Search(ctx, filter.Search)
		if err != nil {
			h.log.Warn().Err(err).Msg("⚠️ Elasticsearch indisponible, recherche en base")
		} else {
			ranking = ids
			filter.IDs = ids
			filter.Search = ""
		}
	}

	products, err := h.products.List(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("❌ Erreur récupération produits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}
	// sans tri explicite, une recherche Elasticsearch garde l'ordre de pertinence
	if ranking != nil {
		products = byRelevance(products, ranking)
		repository.SortProducts(products, sort)
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// byRelevance remet les produits dans l'ordre des résultats Elasticsearch
func byRelevance(products []models.Product, ranking []string) []models.Product {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(products))
	for _, id := range ranking {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("❌ Erreur récupération produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) reindex(ctx context.Context, p models.Product) {
	if h.search == nil {
		return
	}
	if err := h.search.Index(ctx, p); err != nil {
		h.log.Warn().Err(err).Str("product_id", p.ID).Msg("⚠️ Indexation produit échouée")
	}
}

// POST /api/products (SELLER, ADMIN)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants ou invalides"})
		return
	}

	p := models.Product{SellerID: c.GetString(middleware.CtxUserID)}
	input.apply(&p)

	if err := h.products.Create(c.Request.Context(), &p); err != nil {
		h.log.Error().Err(err).Msg("❌ Erreur création produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	h.reindex(c.Request.Context(), p)
	h.log.Info().Str("product_id", p.ID).Str("seller_id", p.SellerID).Msg("📦 Produit créé")
	c.JSON(http.StatusCreated, p)
}

// loadOwned charge le produit et vérifie que l'appelant en est le vendeur ou un admin
func (h *ProductHandler) loadOwned(c *gin.Context) (*models.Product, bool) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("❌ Erreur récupération produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return nil, false
	}

	role := models.Role(c.GetString(middleware.CtxRole))
	if role != models.RoleAdmin && p.SellerID != c.GetString(middleware.CtxUserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return nil, false
	}
	return p, true
}

// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants ou invalides"})
		return
	}

	p, ok := h.loadOwned(c)
	if !ok {
		return
	}
	input.apply(p)

	if err := h.products.Update(c.Request.Context(), p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		h.log.Error().Err(err).Str("product_id", p.ID).Msg("❌ Erreur mise à jour produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	h.reindex(c.Request.Context(), *p)
	c.JSON(http.StatusOK, p)
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	p, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		h.log.Error().Err(err).Str("product_id", p.ID).Msg("❌ Erreur suppression produit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	if h.search != nil {
		if err := h.search.Delete(c.Request.Context(), p.ID); err != nil {
			h.log.Warn().Err(err).Str("product_id", p.ID).Msg("⚠️ Désindexation produit échouée")
		}
	}
	h.log.Info().Str("product_id", p.ID).Msg("🗑️ Produit supprimé")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/admin/products
func (h *ProductHandler) AdminProducts(c *gin.Context) {
	h.listAsArray(c, repository.ProductFilter{})
}

// GET /api/seller/products
func (h *ProductHandler) SellerProducts(c *gin.Context) {
	h.listAsArray(c, repository.ProductFilter{SellerID: c.GetString(middleware.CtxUserID)})
}

func (h *ProductHandler) listAsArray(c *gin.Context, filter repository.ProductFilter) {
	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("❌ Erreur récupération produits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}
