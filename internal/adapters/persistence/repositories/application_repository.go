package repositories

import (
	"context"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormApplicationRepository handles application data access
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// Create creates a new application
func (r *GormApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID with relations
func (r *GormApplicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Preload("Lease").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Update updates an application. Associations stay untouched; only the
// application row itself is written.
func (r *GormApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(app).Error
}

// ListByTenant lists a tenant's own applications, newest first
func (r *GormApplicationRepository) ListByTenant(ctx context.Context, tenantID uint) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Lease").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// ListByManager lists applications against the manager's properties
func (r *GormApplicationRepository) ListByManager(ctx context.Context, managerID uint) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Joins("JOIN properties ON properties.id = applications.property_id").
		Where("properties.manager_id = ?", managerID).
		Order("applications.created_at DESC").
		Find(&apps).Error
	return apps, err
}

// HasActiveForPair reports whether a non-Denied application exists for the pair
func (r *GormApplicationRepository) HasActiveForPair(ctx context.Context, tenantID, propertyID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("tenant_id = ? AND property_id = ? AND status <> ?", tenantID, propertyID, string(domain.ApplicationDenied)).
		Count(&count).Error
	return count > 0, err
}

// GormPropertyRepository handles property data access
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// GetByID gets a property by ID with its manager
func (r *GormPropertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Preload("Manager").First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}
