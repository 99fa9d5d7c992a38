// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Marketplace roles. A user carries exactly one.
const (
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
	RoleCustomer = "customer"
	RoleDriver   = "driver"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;index" json:"role"`
	// Suppliers and drivers operate under a company name.
	CompanyName *string   `gorm:"size:150" json:"companyName,omitempty"`
	OrgNumber   *string   `gorm:"size:20" json:"orgNumber,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// ValidRole reports whether s is one of the marketplace roles.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleSupplier, RoleCustomer, RoleDriver:
		return true
	}
	return false
}
