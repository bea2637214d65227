package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRole string

const (
	AccountRoleCustomer        AccountRole = "customer"
	AccountRoleRestaurantOwner AccountRole = "restaurant_owner"
	AccountRoleAdmin           AccountRole = "admin"
)

type Account struct {
	ConnectID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"connect_id"`
	Role      AccountRole    `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (a *Account) HasRole(roles ...AccountRole) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

type AccountRoleUpdateRequest struct {
	Role AccountRole `json:"role" validate:"required,oneof=customer restaurant_owner admin"`
}

type AccountStatusUpdateRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
