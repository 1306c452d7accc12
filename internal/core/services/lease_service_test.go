package services

import (
	"context"
	"testing"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLeaseService(db *gorm.DB, now time.Time) *LeaseService {
	notifyService := NewNotificationService(repositories.NewNotificationRepository(db), nil)
	svc := NewLeaseService(db, notifyService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCompleteInitialPaymentActivatesLease(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := newLeaseService(db, now)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationAwaitingPayment))

	result, err := svc.CompleteInitialPayment(context.Background(), app.ID, tenant.ID, "pi_abc123", nil)
	require.NoError(t, err)
	require.NotNil(t, result.Lease)
	require.NotNil(t, result.InitialPayment)
	assert.False(t, result.AlreadyCompleted)

	// Lease carries the property's pricing at activation time
	assert.Equal(t, 1500.0, result.Lease.Rent)
	assert.Equal(t, 1500.0, result.Lease.Deposit)
	assert.Equal(t, now, result.Lease.StartDate)
	assert.Equal(t, now.AddDate(1, 0, 0), result.Lease.EndDate)

	// Initial payment settles deposit + first month + fee in one row
	assert.Equal(t, 3050.0, result.InitialPayment.AmountDue)
	assert.Equal(t, 3050.0, result.InitialPayment.AmountPaid)
	assert.Equal(t, string(domain.PaymentPaid), result.InitialPayment.Status)
	require.NotNil(t, result.InitialPayment.PaymentDate)
	require.NotNil(t, result.InitialPayment.ChargeRef)
	assert.Equal(t, "pi_abc123", *result.InitialPayment.ChargeRef)

	// Application flips to Approved and points at the lease
	var stored models.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, string(domain.ApplicationApproved), stored.Status)
	require.NotNil(t, stored.LeaseID)
	assert.Equal(t, result.Lease.ID, *stored.LeaseID)

	// Tenant is linked to the property
	var linkCount int64
	require.NoError(t, db.Table("property_tenants").
		Where("property_id = ? AND user_id = ?", property.ID, tenant.ID).
		Count(&linkCount).Error)
	assert.Equal(t, int64(1), linkCount)

	// 11 scheduled rent rows, due the 1st of each following month
	var scheduled []models.Payment
	require.NoError(t, db.
		Where("lease_id = ? AND type = ?", result.Lease.ID, string(domain.PaymentMonthlyRent)).
		Order("due_date").
		Find(&scheduled).Error)
	require.Len(t, scheduled, 11)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), scheduled[0].DueDate.UTC())
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), scheduled[10].DueDate.UTC())
	for _, p := range scheduled {
		assert.Equal(t, 1500.0, p.AmountDue)
		assert.Equal(t, string(domain.PaymentPending), p.Status)
		assert.Equal(t, domain.GracePeriodDays, p.GracePeriodDays)
	}
}

func TestCompleteInitialPaymentScheduleRollsOverYear(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newLeaseService(db, now)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 2100, 2100, 75)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationAwaitingPayment))

	result, err := svc.CompleteInitialPayment(context.Background(), app.ID, tenant.ID, "pi_roll", nil)
	require.NoError(t, err)

	var scheduled []models.Payment
	require.NoError(t, db.
		Where("lease_id = ? AND type = ?", result.Lease.ID, string(domain.PaymentMonthlyRent)).
		Order("due_date").
		Find(&scheduled).Error)
	require.Len(t, scheduled, 11)

	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), scheduled[0].DueDate.UTC())
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), scheduled[10].DueDate.UTC())
}

func TestCompleteInitialPaymentIdempotent(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := newLeaseService(db, now)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationAwaitingPayment))

	first, err := svc.CompleteInitialPayment(context.Background(), app.ID, tenant.ID, "pi_first", nil)
	require.NoError(t, err)

	// The webhook lands after the client already completed. Same lease back,
	// nothing new written.
	second, err := svc.CompleteInitialPayment(context.Background(), app.ID, 0, "pi_first", nil)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, first.Lease.ID, second.Lease.ID)
	assert.Equal(t, first.InitialPayment.ID, second.InitialPayment.ID)

	var leaseCount int64
	require.NoError(t, db.Model(&models.Lease{}).Count(&leaseCount).Error)
	assert.Equal(t, int64(1), leaseCount)

	var initialCount int64
	require.NoError(t, db.Model(&models.Payment{}).
		Where("type = ?", string(domain.PaymentInitial)).
		Count(&initialCount).Error)
	assert.Equal(t, int64(1), initialCount)

	var scheduledCount int64
	require.NoError(t, db.Model(&models.Payment{}).
		Where("type = ?", string(domain.PaymentMonthlyRent)).
		Count(&scheduledCount).Error)
	assert.Equal(t, int64(11), scheduledCount)
}

func TestCompleteInitialPaymentRequiresAwaitingPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newLeaseService(db, time.Now())

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationPending))

	_, err := svc.CompleteInitialPayment(context.Background(), app.ID, tenant.ID, "", nil)
	require.ErrorIs(t, err, ErrWrongApplicationState)

	var leaseCount int64
	require.NoError(t, db.Model(&models.Lease{}).Count(&leaseCount).Error)
	assert.Equal(t, int64(0), leaseCount)
}

func TestCompleteInitialPaymentRejectsOtherTenant(t *testing.T) {
	db := newTestDB(t)
	svc := newLeaseService(db, time.Now())

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	intruder := createTestUser(t, db, "intruder", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationAwaitingPayment))

	_, err := svc.CompleteInitialPayment(context.Background(), app.ID, intruder.ID, "", nil)
	require.ErrorIs(t, err, ErrNotApplicationTenant)
}

func TestCompleteInitialPaymentHonorsRequestedStart(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := newLeaseService(db, now)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationAwaitingPayment))

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.CompleteInitialPayment(context.Background(), app.ID, tenant.ID, "pi_start", &start)
	require.NoError(t, err)

	assert.Equal(t, start, result.Lease.StartDate)
	assert.Equal(t, start.AddDate(1, 0, 0), result.Lease.EndDate)

	var firstScheduled models.Payment
	require.NoError(t, db.
		Where("lease_id = ? AND type = ?", result.Lease.ID, string(domain.PaymentMonthlyRent)).
		Order("due_date").
		First(&firstScheduled).Error)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), firstScheduled.DueDate.UTC())
}
