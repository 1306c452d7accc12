package repositories

import (
	"context"
	"time"

	"renthub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormLeaseRepository handles lease data access
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// GetByID gets a lease by ID with relations
func (r *GormLeaseRepository) GetByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		First(&lease, id).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// ListEndingBetween returns leases ending in [from, to), paged by id
func (r *GormLeaseRepository) ListEndingBetween(ctx context.Context, from, to time.Time, afterID uint, limit int) ([]*models.Lease, error) {
	var leases []*models.Lease
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("end_date >= ? AND end_date < ? AND id > ?", from, to, afterID).
		Order("id").
		Limit(limit).
		Find(&leases).Error
	return leases, err
}

// ListActiveAt returns leases covering the given instant, paged by id
func (r *GormLeaseRepository) ListActiveAt(ctx context.Context, at time.Time, afterID uint, limit int) ([]*models.Lease, error) {
	var leases []*models.Lease
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ? AND id > ?", at, at, afterID).
		Order("id").
		Limit(limit).
		Find(&leases).Error
	return leases, err
}
