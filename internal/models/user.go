package models

import "time"

// Role est le rôle porté par le token d'accès
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
	RoleBuyer  Role = "BUYER"
)

// Valid indique si le rôle fait partie de l'énumération connue
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

type User struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Name       string    `json:"name,omitempty"`
	Password   string    `json:"-"`
	Role       Role      `json:"role" gorm:"type:varchar(16);not null"`
	Provider   string    `json:"provider,omitempty"`
	ProviderID string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
