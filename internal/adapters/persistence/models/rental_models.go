package models

import (
	"time"

	"gorm.io/gorm"
)

// Application represents applications table. Never hard-deleted (audit trail).
type Application struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Status          string    `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Email           string    `gorm:"size:100;not null" json:"email"`
	PhoneNumber     string    `gorm:"size:20" json:"phone_number"`
	Message         string    `gorm:"type:text" json:"message"`
	ApplicationDate time.Time `gorm:"not null" json:"application_date"`
	PropertyID      uint      `gorm:"not null;index" json:"property_id"`
	TenantID        uint      `gorm:"not null;index" json:"tenant_id"`
	LeaseID         *uint     `gorm:"uniqueIndex" json:"lease_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Tenant   *User     `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Lease    *Lease    `gorm:"foreignKey:LeaseID" json:"lease,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID              uint      `json:"id"`
	Status          string    `json:"status"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phone_number"`
	Message         string    `json:"message,omitempty"`
	ApplicationDate time.Time `json:"application_date"`
	PropertyID      uint      `json:"property_id"`
	PropertyName    string    `json:"property_name,omitempty"`
	TenantID        uint      `json:"tenant_id"`
	LeaseID         *uint     `json:"lease_id"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:              a.ID,
		Status:          a.Status,
		Name:            a.Name,
		Email:           a.Email,
		PhoneNumber:     a.PhoneNumber,
		Message:         a.Message,
		ApplicationDate: a.ApplicationDate,
		PropertyID:      a.PropertyID,
		TenantID:        a.TenantID,
		LeaseID:         a.LeaseID,
	}
	if a.Property != nil {
		resp.PropertyName = a.Property.Name
	}
	return resp
}

// Lease represents leases table. Created exactly once per completed initial
// payment and not mutated afterwards by this engine.
type Lease struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	EndDate    time.Time `gorm:"not null;index" json:"end_date"`
	Rent       float64   `gorm:"type:decimal(12,2);not null" json:"rent"`
	Deposit    float64   `gorm:"type:decimal(12,2);not null" json:"deposit"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Tenant   *User     `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (Lease) TableName() string {
	return "leases"
}

// Payment represents payments table: one monetary obligation or settled
// charge. ChargeRef is the external processor id, kept for reconciliation and
// never serialized to clients.
type Payment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AmountDue       float64    `gorm:"type:decimal(12,2);not null" json:"amount_due"`
	AmountPaid      float64    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	DueDate         time.Time  `gorm:"not null;index" json:"due_date"`
	PaymentDate     *time.Time `json:"payment_date"`
	Status          string     `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	Type            string     `gorm:"size:20;not null" json:"type"`
	GracePeriodDays int        `gorm:"not null;default:0" json:"grace_period_days"`
	LeaseID         *uint      `gorm:"index" json:"lease_id"`
	ApplicationID   *uint      `gorm:"index" json:"application_id"`
	ChargeRef       *string    `gorm:"size:100" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Lease       *Lease       `gorm:"foreignKey:LeaseID" json:"lease,omitempty"`
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID              uint       `json:"id"`
	AmountDue       float64    `json:"amount_due"`
	AmountPaid      float64    `json:"amount_paid"`
	DueDate         time.Time  `json:"due_date"`
	PaymentDate     *time.Time `json:"payment_date"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	GracePeriodDays int        `json:"grace_period_days"`
	LeaseID         *uint      `json:"lease_id"`
	ApplicationID   *uint      `json:"application_id"`
	PropertyID      uint       `json:"property_id,omitempty"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	resp := &PaymentResponse{
		ID:              p.ID,
		AmountDue:       p.AmountDue,
		AmountPaid:      p.AmountPaid,
		DueDate:         p.DueDate,
		PaymentDate:     p.PaymentDate,
		Status:          p.Status,
		Type:            p.Type,
		GracePeriodDays: p.GracePeriodDays,
		LeaseID:         p.LeaseID,
		ApplicationID:   p.ApplicationID,
	}
	if p.Lease != nil {
		resp.PropertyID = p.Lease.PropertyID
	}
	return resp
}

// Notification represents notifications table. The persisted row is the
// source of truth; the realtime push is best-effort only.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Type          string    `gorm:"size:50;not null;index" json:"type"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	RecipientID   uint      `gorm:"not null;index" json:"recipient_id"`
	RecipientRole string    `gorm:"size:20;not null" json:"recipient_role"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	Payload       string    `gorm:"type:text" json:"payload"`
	DedupKey      string    `gorm:"size:100;index" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationResponse DTO
type NotificationResponse struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		Payload:   n.Payload,
		CreatedAt: n.CreatedAt,
	}
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Property{},
		&Application{},
		&Lease{},
		&Payment{},
		&Notification{},
	)
}
