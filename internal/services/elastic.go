package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog"
)

const productMapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "sizes":       {"type": "keyword"},
      "colors":      {"type": "keyword"},
      "price":       {"type": "double"},
      "sellerId":    {"type": "keyword"}
    }
  }
}`

// ProductIndex maintient l'index de recherche des produits
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
	log    zerolog.Logger
}

func NewProductIndex(client *elasticsearch.Client, index string, log zerolog.Logger) *ProductIndex {
	return &ProductIndex{client: client, index: index, log: log}
}

// productDocument est ce qui part dans Elasticsearch, sans les images ni le stock
type productDocument struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Price       float64  `json:"price"`
	SellerID    string   `json:"sellerId"`
}

// EnsureIndex crée l'index avec son mapping s'il n'existe pas
func (i *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("vérification index %s: %w", i.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(productMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("création index %s: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("création index %s: %s", i.index, res.String())
	}
	i.log.Info().Str("index", i.index).Msg("✅ Index Elasticsearch créé")
	return nil
}

func (i *ProductIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(productDocument{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Price:       p.Price,
		SellerID:    p.SellerID,
	})
	if err != nil {
		return err
	}

	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("indexation %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation %s: %s", p.ID, res.String())
	}
	i.log.Debug().Str("product_id", p.ID).Msg("Produit indexé")
	return nil
}

func (i *ProductIndex) Delete(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: i.index, DocumentID: id, Refresh: "true"}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("suppression index %s: %w", id, err)
	}
	defer res.Body.Close()

	// 404 : déjà absent de l'index
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("suppression index %s: %s", id, res.String())
	}
	return nil
}

// Search retourne les identifiants des produits qui correspondent au texte, par pertinence
func (i *ProductIndex) Search(ctx context.Context, query string) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]any{
		"size":    200,
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encodage requête: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{i.index}, Body: &buf}.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("recherche Elastic: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage réponse Elastic: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
