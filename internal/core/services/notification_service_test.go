package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPersistsAndPublishes(t *testing.T) {
	db := newTestDB(t)
	publisher := &fakePublisher{}
	svc := NewNotificationService(repositories.NewNotificationRepository(db), publisher)

	tenant := createTestUser(t, db, "tenant", "TENANT")

	n, err := svc.Notify(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyPaymentDue,
		"Rent due", "Your rent is due.",
		map[string]interface{}{"lease_id": 42})
	require.NoError(t, err)

	assert.Contains(t, n.Payload, `"lease_id":42`)

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.Equal(t, tenant.ID, stored.RecipientID)
	assert.Equal(t, string(domain.RoleTenant), stored.RecipientRole)
	assert.False(t, stored.IsRead)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "user:"+uintString(tenant.ID), publisher.events[0].Channel)
	assert.Equal(t, string(domain.NotifyPaymentDue), publisher.events[0].Event)
}

func TestNotifySurvivesPublishFailure(t *testing.T) {
	db := newTestDB(t)
	publisher := &fakePublisher{err: errors.New("channel down")}
	svc := NewNotificationService(repositories.NewNotificationRepository(db), publisher)

	tenant := createTestUser(t, db, "tenant", "TENANT")

	// The row is the source of truth; a failed push must not fail the call
	n, err := svc.Notify(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyPaymentDue,
		"Rent due", "Your rent is due.", nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", n.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNotifyOnceDedupsWithinWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repositories.NewNotificationRepository(db), nil)

	tenant := createTestUser(t, db, "tenant", "TENANT")
	payload := map[string]interface{}{"lease_id": 7}

	created, err := svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", payload, "lease:7")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", payload, "lease:7")
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("recipient_id = ?", tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNotifyOnceFiresAgainAfterWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repositories.NewNotificationRepository(db), nil)

	tenant := createTestUser(t, db, "tenant", "TENANT")
	payload := map[string]interface{}{"lease_id": 7}

	created, err := svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", payload, "lease:7")
	require.NoError(t, err)
	require.True(t, created)

	// Age the first row past the dedup window
	aged := time.Now().Add(-DedupWindow - time.Hour)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ?", tenant.ID).
		Update("created_at", aged).Error)

	created, err = svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", payload, "lease:7")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestNotifyOnceDistinguishesEntities(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repositories.NewNotificationRepository(db), nil)

	tenant := createTestUser(t, db, "tenant", "TENANT")

	created, err := svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", map[string]interface{}{"lease_id": 7}, "lease:7")
	require.NoError(t, err)
	assert.True(t, created)

	// Same type and recipient but a different lease still notifies
	created, err = svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", map[string]interface{}{"lease_id": 8}, "lease:8")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestNotifyOnceIdsSharingPrefixDoNotCollide(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repositories.NewNotificationRepository(db), nil)

	tenant := createTestUser(t, db, "tenant", "TENANT")

	// lease 70 first, then lease 7; the key for 7 is a prefix of the key
	// for 70 and must not be suppressed by it
	created, err := svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", map[string]interface{}{"lease_id": 70}, "lease:70")
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.NotifyOnce(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyLeaseExpiring,
		"Lease expiring", "Soon.", map[string]interface{}{"lease_id": 7}, "lease:7")
	require.NoError(t, err)
	assert.True(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("recipient_id = ?", tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repositories.NewNotificationRepository(db), nil)

	tenant := createTestUser(t, db, "tenant", "TENANT")
	other := createTestUser(t, db, "other", "TENANT")

	n, err := svc.Notify(context.Background(), tenant.ID, domain.RoleTenant, domain.NotifyPaymentDue,
		"Rent due", "Your rent is due.", nil)
	require.NoError(t, err)

	// Another user cannot mark it
	require.Error(t, svc.MarkRead(context.Background(), n.ID, other.ID))

	require.NoError(t, svc.MarkRead(context.Background(), n.ID, tenant.ID))

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.True(t, stored.IsRead)
}
