package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents users table. Tenants and managers share the table and are
// distinguished by role; the identity provider owns authentication, we only
// keep the profile row the engine references.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Role      string         `gorm:"size:20;default:'TENANT'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Property represents properties table. Pricing fields are read at breakdown
// and activation time, never cached on the application.
type Property struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:100;not null" json:"name"`
	Address         string         `gorm:"size:255;not null" json:"address"`
	City            string         `gorm:"size:100" json:"city"`
	PricePerMonth   float64        `gorm:"type:decimal(12,2);not null" json:"price_per_month"`
	SecurityDeposit float64        `gorm:"type:decimal(12,2);not null" json:"security_deposit"`
	ApplicationFee  float64        `gorm:"type:decimal(12,2);not null" json:"application_fee"`
	Beds            int            `json:"beds"`
	Baths           int            `json:"baths"`
	ManagerID       uint           `gorm:"not null;index" json:"manager_id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Manager *User  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Tenants []User `gorm:"many2many:property_tenants" json:"tenants,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}
