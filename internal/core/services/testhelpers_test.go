package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"renthub/internal/adapters/persistence/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite store migrated to the full schema.
// Each test gets its own named database so parallel tests don't collide.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// fakeProcessor is a PaymentProcessor test double
type fakeProcessor struct {
	createFn func(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error)
	calls    int

	lastAmount   float64
	lastMetadata map[string]string
}

func (f *fakeProcessor) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	f.calls++
	f.lastAmount = amount
	f.lastMetadata = metadata
	if f.createFn != nil {
		return f.createFn(ctx, amount, currency, metadata)
	}
	return &PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

// fakePublisher is a Publisher test double
type fakePublisher struct {
	err    error
	events []publishedEvent
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload interface{}
}

func (f *fakePublisher) Publish(channel, event string, payload interface{}) error {
	f.events = append(f.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return f.err
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProperty(t *testing.T, db *gorm.DB, managerID uint, rent, deposit, fee float64) *models.Property {
	t.Helper()
	property := &models.Property{
		Name:            fmt.Sprintf("Property %d", time.Now().UnixNano()),
		Address:         "1 Test Street",
		City:            "Testville",
		PricePerMonth:   rent,
		SecurityDeposit: deposit,
		ApplicationFee:  fee,
		Beds:            2,
		Baths:           1,
		ManagerID:       managerID,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func createTestApplication(t *testing.T, db *gorm.DB, tenantID, propertyID uint, status string) *models.Application {
	t.Helper()
	app := &models.Application{
		Status:          status,
		Name:            "Test Applicant",
		Email:           "applicant@example.com",
		ApplicationDate: time.Now(),
		PropertyID:      propertyID,
		TenantID:        tenantID,
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

func createTestLease(t *testing.T, db *gorm.DB, tenantID, propertyID uint, rent float64, start, end time.Time) *models.Lease {
	t.Helper()
	lease := &models.Lease{
		StartDate:  start,
		EndDate:    end,
		Rent:       rent,
		Deposit:    rent,
		PropertyID: propertyID,
		TenantID:   tenantID,
	}
	require.NoError(t, db.Create(lease).Error)
	return lease
}
