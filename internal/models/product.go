package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Product struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Price       float64        `json:"price" gorm:"not null"`
	Category    string         `json:"category" gorm:"index;not null"`
	Sizes       StringList     `json:"sizes" gorm:"type:jsonb"`
	Colors      StringList     `json:"colors" gorm:"type:jsonb"`
	Stock       int            `json:"stock" gorm:"not null"`
	SellerID    string         `json:"sellerId" gorm:"type:uuid;index;not null"`
	Images      []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type ProductImage struct {
	ID        string `json:"-" gorm:"type:uuid;primaryKey"`
	ProductID string `json:"-" gorm:"type:uuid;index;not null"`
	URL       string `json:"url" gorm:"not null"`
	Position  int    `json:"-"`
}

// FirstImageURL retourne l'URL de la première image ou ""
func (p Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// HasSize indique si la taille est proposée. Un produit sans tailles accepte seulement "".
func (p Product) HasSize(size string) bool {
	return p.Sizes.allows(size)
}

func (p Product) HasColor(color string) bool {
	return p.Colors.allows(color)
}

// StringList est stockée en JSON (colonne jsonb)
type StringList []string

func (l StringList) allows(v string) bool {
	if len(l) == 0 {
		return v == ""
	}
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StringList: type non supporté %T", src)
	}
	return json.Unmarshal(data, (*[]string)(l))
}
