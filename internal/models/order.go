package models

import "time"

type DeliveryMethod string

const (
	DeliveryCourier DeliveryMethod = "courier"
	DeliveryPickup  DeliveryMethod = "pickup"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

type OrderStatus string

const (
	// OrderCreated : le paiement reste simulé, la commande est seulement enregistrée
	OrderCreated OrderStatus = "created"
)

type Order struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         string         `json:"userId" gorm:"type:uuid;index;not null"`
	Status         OrderStatus    `json:"status" gorm:"type:varchar(32);not null"`
	Total          float64        `json:"total" gorm:"not null"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address,omitempty"`
	Comment        string         `json:"comment,omitempty"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod" gorm:"type:varchar(16)"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod" gorm:"type:varchar(16)"`
	Items          []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"type:uuid;index;not null"`
	ProductID string  `json:"productId" gorm:"type:uuid;not null"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// ItemCount retourne le nombre total d'articles de la commande
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
