package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaseService owns lease activation: the atomic conversion of a paid
// application into a lease, its settled initial payment and the first-year
// rent schedule. It works on *gorm.DB directly because every write must share
// one transaction.
type LeaseService struct {
	db            *gorm.DB
	notifyService *NotificationService
	now           func() time.Time
}

// NewLeaseService creates a new lease service
func NewLeaseService(db *gorm.DB, notifyService *NotificationService) *LeaseService {
	return &LeaseService{
		db:            db,
		notifyService: notifyService,
		now:           time.Now,
	}
}

// ActivationResult is what completing an initial payment yields. On a repeat
// invocation AlreadyCompleted is set and the original lease and payment are
// returned unchanged.
type ActivationResult struct {
	Lease            *models.Lease   `json:"lease"`
	InitialPayment   *models.Payment `json:"initial_payment"`
	AlreadyCompleted bool            `json:"already_completed"`
}

// CompleteInitialPayment converts an AwaitingPayment application into an
// active lease. All writes (lease, initial payment, application update,
// tenant link, 11-month schedule) commit as one unit; no reader ever sees a
// partial set.
//
// The operation is idempotent: a client retry and a processor webhook may
// both land here for the same application, and the status re-check runs
// against the same transaction as the writes, so whichever commits first
// wins and the loser gets the existing result back.
//
// callerID is the acting tenant for client-driven calls and zero for
// processor-driven (webhook) calls, which are pre-authenticated by signature.
func (s *LeaseService) CompleteInitialPayment(ctx context.Context, applicationID, callerID uint, chargeRef string, requestedStart *time.Time) (*ActivationResult, error) {
	result := &ActivationResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.Application

		query := tx
		// Row lock serializes racing completions on MySQL. SQLite (tests)
		// has no FOR UPDATE; its single-writer transactions already
		// serialize.
		if tx.Dialector.Name() == "mysql" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&app, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		if callerID != 0 && app.TenantID != callerID {
			return ErrNotApplicationTenant
		}

		// Second completion for the same application: hand back the
		// existing lease and payment instead of creating duplicates.
		if app.Status == string(domain.ApplicationApproved) && app.LeaseID != nil {
			var lease models.Lease
			if err := tx.First(&lease, *app.LeaseID).Error; err != nil {
				return err
			}
			var initial models.Payment
			if err := tx.Where("application_id = ? AND type = ?", app.ID, string(domain.PaymentInitial)).
				First(&initial).Error; err != nil {
				return err
			}
			result.Lease = &lease
			result.InitialPayment = &initial
			result.AlreadyCompleted = true
			return nil
		}

		if app.Status != string(domain.ApplicationAwaitingPayment) {
			return ErrWrongApplicationState
		}

		var property models.Property
		if err := tx.First(&property, app.PropertyID).Error; err != nil {
			return ErrPropertyNotFound
		}

		now := s.now()
		start := now
		if requestedStart != nil {
			start = *requestedStart
		}
		end := start.AddDate(1, 0, 0)

		lease := &models.Lease{
			StartDate:  start,
			EndDate:    end,
			Rent:       property.PricePerMonth,
			Deposit:    property.SecurityDeposit,
			PropertyID: property.ID,
			TenantID:   app.TenantID,
		}
		if err := tx.Create(lease).Error; err != nil {
			return err
		}

		total := property.SecurityDeposit + property.PricePerMonth + property.ApplicationFee
		initial := &models.Payment{
			AmountDue:     total,
			AmountPaid:    total,
			DueDate:       now,
			PaymentDate:   &now,
			Status:        string(domain.PaymentPaid),
			Type:          string(domain.PaymentInitial),
			LeaseID:       &lease.ID,
			ApplicationID: &app.ID,
		}
		if chargeRef != "" {
			initial.ChargeRef = &chargeRef
		}
		if err := tx.Create(initial).Error; err != nil {
			return err
		}

		app.Status = string(domain.ApplicationApproved)
		app.LeaseID = &lease.ID
		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		// Current-residences link for queries outside this engine.
		if err := tx.Exec("INSERT INTO property_tenants (property_id, user_id) VALUES (?, ?)",
			property.ID, app.TenantID).Error; err != nil {
			return err
		}

		schedule := monthlyRentSchedule(lease, start)
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}

		result.Lease = lease
		result.InitialPayment = initial
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, best-effort: state is durable whether or not anyone hears
	// about it.
	if !result.AlreadyCompleted {
		s.notifyActivation(ctx, result.Lease)
	}

	return result, nil
}

// GetByID gets a lease by ID
func (s *LeaseService) GetByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := s.db.WithContext(ctx).Preload("Property").Preload("Tenant").First(&lease, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaseNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// monthlyRentSchedule builds the 11 MonthlyRent rows following the lease
// start: one per calendar month, due on the 1st, 5-day grace.
func monthlyRentSchedule(lease *models.Lease, start time.Time) []models.Payment {
	payments := make([]models.Payment, 0, domain.ScheduledMonths)
	for i := 1; i <= domain.ScheduledMonths; i++ {
		due := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, start.Location())
		payments = append(payments, models.Payment{
			AmountDue:       lease.Rent,
			DueDate:         due,
			Status:          string(domain.PaymentPending),
			Type:            string(domain.PaymentMonthlyRent),
			GracePeriodDays: domain.GracePeriodDays,
			LeaseID:         &lease.ID,
		})
	}
	return payments
}

func (s *LeaseService) notifyActivation(ctx context.Context, lease *models.Lease) {
	if s.notifyService == nil || lease == nil {
		return
	}

	payload := map[string]interface{}{
		"lease_id":    lease.ID,
		"property_id": lease.PropertyID,
		"start_date":  lease.StartDate,
		"end_date":    lease.EndDate,
	}

	if _, err := s.notifyService.Notify(ctx, lease.TenantID, domain.RoleTenant, domain.NotifyLeaseActivated,
		"Lease activated",
		fmt.Sprintf("Your lease is active from %s to %s.",
			lease.StartDate.Format("2006-01-02"), lease.EndDate.Format("2006-01-02")),
		payload); err != nil {
		log.Printf("lease activation notification to tenant %d failed: %v", lease.TenantID, err)
	}

	var property models.Property
	if err := s.db.WithContext(ctx).First(&property, lease.PropertyID).Error; err == nil {
		if _, err := s.notifyService.Notify(ctx, property.ManagerID, domain.RoleManager, domain.NotifyLeaseActivated,
			"Lease activated",
			fmt.Sprintf("A lease for %s is now active.", property.Name),
			payload); err != nil {
			log.Printf("lease activation notification to manager %d failed: %v", property.ManagerID, err)
		}
	}
}
