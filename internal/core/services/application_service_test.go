package services

import (
	"context"
	"testing"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newApplicationService(db *gorm.DB) *ApplicationService {
	notifyService := NewNotificationService(repositories.NewNotificationRepository(db), nil)
	return NewApplicationService(
		repositories.NewApplicationRepository(db),
		repositories.NewPropertyRepository(db),
		notifyService,
	)
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)

	app, err := svc.Submit(context.Background(), &SubmitApplicationInput{
		PropertyID: property.ID,
		Name:       "Jamie Tester",
		Email:      "jamie@example.com",
	}, tenant.ID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.ApplicationPending), app.Status)
	assert.Equal(t, tenant.ID, app.TenantID)

	// Manager gets a submission notification
	var notifications []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", manager.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, string(domain.NotifyApplicationSubmitted), notifications[0].Type)
}

func TestSubmitRequiresContactInfo(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)

	_, err := svc.Submit(context.Background(), &SubmitApplicationInput{
		PropertyID: property.ID,
		Name:       "Jamie Tester",
	}, tenant.ID)
	require.ErrorIs(t, err, ErrMissingApplicantInfo)
	assert.Equal(t, "validation_failure", domain.Kind(err))
}

func TestSubmitRejectsDuplicateActiveApplication(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)

	input := &SubmitApplicationInput{
		PropertyID: property.ID,
		Name:       "Jamie Tester",
		Email:      "jamie@example.com",
	}
	_, err := svc.Submit(context.Background(), input, tenant.ID)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), input, tenant.ID)
	require.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestSubmitAllowsReapplyAfterDenial(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)

	createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationDenied))

	_, err := svc.Submit(context.Background(), &SubmitApplicationInput{
		PropertyID: property.ID,
		Name:       "Jamie Tester",
		Email:      "jamie@example.com",
	}, tenant.ID)
	require.NoError(t, err)
}

func TestSetStatusApproveStoresAwaitingPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationPending))

	// The approve decision does not store Approved: the lease only activates
	// after the initial payment, so the application waits on payment.
	updated, err := svc.SetStatus(context.Background(), app.ID, domain.DecisionApprove, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ApplicationAwaitingPayment), updated.Status)

	// Tenant gets a status notification
	var notifications []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", tenant.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, string(domain.NotifyApplicationStatus), notifications[0].Type)
}

func TestSetStatusDenyIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationPending))

	updated, err := svc.SetStatus(context.Background(), app.ID, domain.DecisionDeny, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ApplicationDenied), updated.Status)

	// No decision applies to a non-Pending application
	_, err = svc.SetStatus(context.Background(), app.ID, domain.DecisionApprove, manager.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	var stored models.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, string(domain.ApplicationDenied), stored.Status)
}

func TestSetStatusRejectsNonPending(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationAwaitingPayment))

	_, err := svc.SetStatus(context.Background(), app.ID, domain.DecisionApprove, manager.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "conflict", domain.Kind(err))
}

func TestSetStatusRequiresPropertyManager(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	other := createTestUser(t, db, "other", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	app := createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationPending))

	_, err := svc.SetStatus(context.Background(), app.ID, domain.DecisionApprove, other.ID)
	require.ErrorIs(t, err, ErrNotPropertyManager)

	var stored models.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, string(domain.ApplicationPending), stored.Status)
}

func TestListForUserScopesByRole(t *testing.T) {
	db := newTestDB(t)
	svc := newApplicationService(db)

	manager := createTestUser(t, db, "manager", "MANAGER")
	otherManager := createTestUser(t, db, "other", "MANAGER")
	tenant := createTestUser(t, db, "tenant", "TENANT")
	property := createTestProperty(t, db, manager.ID, 1500, 1500, 50)
	otherProperty := createTestProperty(t, db, otherManager.ID, 900, 900, 25)

	createTestApplication(t, db, tenant.ID, property.ID, string(domain.ApplicationPending))
	createTestApplication(t, db, tenant.ID, otherProperty.ID, string(domain.ApplicationPending))

	managerApps, err := svc.ListForUser(context.Background(), manager.ID, domain.RoleManager)
	require.NoError(t, err)
	assert.Len(t, managerApps, 1)

	tenantApps, err := svc.ListForUser(context.Background(), tenant.ID, domain.RoleTenant)
	require.NoError(t, err)
	assert.Len(t, tenantApps, 2)
}
