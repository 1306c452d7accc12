package repositories

import (
	"context"
	"time"

	"renthub/internal/adapters/persistence/models"
)

// ApplicationRepository defines application data access
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	ListByTenant(ctx context.Context, tenantID uint) ([]*models.Application, error)
	ListByManager(ctx context.Context, managerID uint) ([]*models.Application, error)
	// HasActiveForPair reports whether a non-Denied application already
	// exists for the (tenant, property) pair.
	HasActiveForPair(ctx context.Context, tenantID, propertyID uint) (bool, error)
}

// PropertyRepository defines property data access (read-only here; property
// CRUD lives outside this engine)
type PropertyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Property, error)
}

// LeaseRepository defines lease data access
type LeaseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Lease, error)
	// ListEndingBetween returns leases with endDate in [from, to), paged by
	// last seen id so job scans stay bounded.
	ListEndingBetween(ctx context.Context, from, to time.Time, afterID uint, limit int) ([]*models.Lease, error)
	// ListActiveAt returns leases covering the given instant
	// (startDate <= at AND endDate >= at), paged by last seen id.
	ListActiveAt(ctx context.Context, at time.Time, afterID uint, limit int) ([]*models.Lease, error)
}

// PaymentRepository defines payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	GetInitialByApplication(ctx context.Context, applicationID uint) (*models.Payment, error)
	// ExistsForLeaseBetween reports whether the lease already has a payment
	// due in [from, to), the monthly generation idempotency check.
	ExistsForLeaseBetween(ctx context.Context, leaseID uint, from, to time.Time) (bool, error)
	// ListPendingDueBetween returns Pending payments due in [from, to),
	// paged by last seen id.
	ListPendingDueBetween(ctx context.Context, from, to time.Time, afterID uint, limit int) ([]*models.Payment, error)
	// ListPendingDueBefore returns Pending payments whose due date already
	// passed, paged by last seen id. Grace periods are applied by the caller
	// since they vary per row.
	ListPendingDueBefore(ctx context.Context, before time.Time, afterID uint, limit int) ([]*models.Payment, error)
	ListByTenant(ctx context.Context, tenantID uint, offset, limit int) ([]*models.Payment, int64, error)
	ListByManager(ctx context.Context, managerID uint, offset, limit int) ([]*models.Payment, int64, error)
}

// NotificationRepository defines notification data access
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ExistsRecent reports whether a notification with the same dedup key
	// was created for the recipient after the given time. The key is an
	// exact per-entity identifier (e.g. "lease:42").
	ExistsRecent(ctx context.Context, recipientID uint, role, ntype, dedupKey string, after time.Time) (bool, error)
	ListByRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) error
}
