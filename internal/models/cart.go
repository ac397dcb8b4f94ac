package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem est une ligne du panier serveur. Une seule ligne par (produit, taille, couleur).
type CartItem struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          string    `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_cart_line"`
	ProductID       string    `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_line"`
	Product         Product   `json:"product" gorm:"foreignKey:ProductID"`
	PriceAtAddition float64   `json:"priceAtAddition" gorm:"not null"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	Size            string    `json:"size,omitempty" gorm:"not null;default:'';uniqueIndex:idx_cart_line"`
	Color           string    `json:"color,omitempty" gorm:"not null;default:'';uniqueIndex:idx_cart_line"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CartTotals calcule le nombre d'articles et le montant d'une liste de lignes.
// La somme passe par decimal pour éviter les écarts d'arrondi des float.
func CartTotals(items []CartItem) (count int, total float64) {
	sum := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		sum = sum.Add(decimal.NewFromFloat(item.PriceAtAddition).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return count, sum.Round(2).InexactFloat64()
}
