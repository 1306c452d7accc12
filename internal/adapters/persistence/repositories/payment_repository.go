package repositories

import (
	"context"
	"errors"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository handles payment data access
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create creates a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment by ID with its lease
func (r *GormPaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Preload("Lease").First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update updates a payment. Associations stay untouched; only the payment
// row itself is written.
func (r *GormPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

// GetInitialByApplication gets the InitialPayment row for an application,
// or nil when none exists yet
func (r *GormPaymentRepository) GetInitialByApplication(ctx context.Context, applicationID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND type = ?", applicationID, string(domain.PaymentInitial)).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExistsForLeaseBetween reports whether the lease has a payment due in [from, to)
func (r *GormPaymentRepository) ExistsForLeaseBetween(ctx context.Context, leaseID uint, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("lease_id = ? AND due_date >= ? AND due_date < ?", leaseID, from, to).
		Count(&count).Error
	return count > 0, err
}

// ListPendingDueBetween returns Pending payments due in [from, to), paged by id
func (r *GormPaymentRepository) ListPendingDueBetween(ctx context.Context, from, to time.Time, afterID uint, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Preload("Lease").
		Where("status = ? AND due_date >= ? AND due_date < ? AND id > ?",
			string(domain.PaymentPending), from, to, afterID).
		Order("id").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// ListPendingDueBefore returns Pending payments whose due date passed, paged by id
func (r *GormPaymentRepository) ListPendingDueBefore(ctx context.Context, before time.Time, afterID uint, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Preload("Lease").
		Where("status = ? AND due_date < ? AND id > ?",
			string(domain.PaymentPending), before, afterID).
		Order("id").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// ListByTenant lists payments on the tenant's leases with pagination
func (r *GormPaymentRepository) ListByTenant(ctx context.Context, tenantID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	base := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Joins("JOIN leases ON leases.id = payments.lease_id").
		Where("leases.tenant_id = ?", tenantID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Lease").
		Order("payments.due_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// ListByManager lists payments on leases of the manager's properties
func (r *GormPaymentRepository) ListByManager(ctx context.Context, managerID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	base := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Joins("JOIN leases ON leases.id = payments.lease_id").
		Joins("JOIN properties ON properties.id = leases.property_id").
		Where("properties.manager_id = ?", managerID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Lease").
		Order("payments.due_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}
