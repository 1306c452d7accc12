package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"

	"gorm.io/gorm"
)

// Payment service errors
var (
	ErrPaymentNotFound       = fmt.Errorf("%w: payment not found", domain.ErrNotFound)
	ErrLeaseNotFound         = fmt.Errorf("%w: lease not found", domain.ErrNotFound)
	ErrNotApplicationTenant  = fmt.Errorf("%w: caller is not the applicant", domain.ErrForbidden)
	ErrNotLeaseTenant        = fmt.Errorf("%w: caller is not the lease tenant", domain.ErrForbidden)
	ErrWrongApplicationState = fmt.Errorf("%w: application is not awaiting payment", domain.ErrConflict)
	ErrAmountNotPositive     = fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	ErrProcessorFailure      = fmt.Errorf("%w: payment processor request failed", domain.ErrExternalService)
)

// PaymentService computes cost breakdowns and brokers charge intents with the
// external processor. It never moves money and creating an intent performs no
// local write; an intent is provisional until completion confirms it.
type PaymentService struct {
	appRepo       repositories.ApplicationRepository
	propertyRepo  repositories.PropertyRepository
	leaseRepo     repositories.LeaseRepository
	paymentRepo   repositories.PaymentRepository
	processor     PaymentProcessor
	notifyService *NotificationService
	now           func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	appRepo repositories.ApplicationRepository,
	propertyRepo repositories.PropertyRepository,
	leaseRepo repositories.LeaseRepository,
	paymentRepo repositories.PaymentRepository,
	processor PaymentProcessor,
	notifyService *NotificationService,
) *PaymentService {
	return &PaymentService{
		appRepo:       appRepo,
		propertyRepo:  propertyRepo,
		leaseRepo:     leaseRepo,
		paymentRepo:   paymentRepo,
		processor:     processor,
		notifyService: notifyService,
		now:           time.Now,
	}
}

// BreakdownResult is the initial payment breakdown plus whether an
// InitialPayment was already recorded (so a reloaded page can render the
// paid state instead of re-charging).
type BreakdownResult struct {
	Breakdown   domain.CostBreakdown `json:"breakdown"`
	AlreadyPaid bool                 `json:"already_paid"`
}

// GetInitialPaymentBreakdown computes the cost to activate the application's
// lease. Pricing is read from the property at call time: it may have changed
// since the application was submitted.
func (s *PaymentService) GetInitialPaymentBreakdown(ctx context.Context, applicationID uint) (*BreakdownResult, error) {
	app, breakdown, err := s.breakdownFor(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	initial, err := s.paymentRepo.GetInitialByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	return &BreakdownResult{
		Breakdown:   *breakdown,
		AlreadyPaid: initial != nil,
	}, nil
}

// IntentResult is the client-usable handle for a provisional charge
type IntentResult struct {
	ClientSecret string                `json:"client_secret"`
	Breakdown    *domain.CostBreakdown `json:"breakdown,omitempty"`
	Amount       float64               `json:"amount"`
}

// CreateInitialPaymentIntent asks the processor for a charge intent covering
// the initial payment. The amount is always recomputed server-side; a
// client-supplied amount is never trusted. No local record is written.
func (s *PaymentService) CreateInitialPaymentIntent(ctx context.Context, applicationID, callerID uint) (*IntentResult, error) {
	app, breakdown, err := s.breakdownFor(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.TenantID != callerID {
		return nil, ErrNotApplicationTenant
	}

	metadata := map[string]string{
		"application_id":   strconv.FormatUint(uint64(app.ID), 10),
		"tenant_id":        strconv.FormatUint(uint64(app.TenantID), 10),
		"property_id":      strconv.FormatUint(uint64(app.PropertyID), 10),
		"security_deposit": fmt.Sprintf("%.2f", breakdown.SecurityDeposit),
		"first_month_rent": fmt.Sprintf("%.2f", breakdown.FirstMonthRent),
		"application_fee":  fmt.Sprintf("%.2f", breakdown.ApplicationFee),
		"payment_type":     string(domain.PaymentInitial),
	}

	intent, err := s.processor.CreateIntent(ctx, breakdown.Total, "usd", metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorFailure, err)
	}

	return &IntentResult{
		ClientSecret: intent.ClientSecret,
		Breakdown:    breakdown,
		Amount:       breakdown.Total,
	}, nil
}

// CreateRentPaymentIntent asks the processor for a rent charge intent on the
// caller's lease. No local record is written.
func (s *PaymentService) CreateRentPaymentIntent(ctx context.Context, leaseID uint, amount float64, ptype domain.PaymentType, callerID uint) (*IntentResult, error) {
	if amount <= 0 {
		return nil, ErrAmountNotPositive
	}

	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaseNotFound
		}
		return nil, err
	}
	if lease.TenantID != callerID {
		return nil, ErrNotLeaseTenant
	}

	metadata := map[string]string{
		"lease_id":     strconv.FormatUint(uint64(lease.ID), 10),
		"tenant_id":    strconv.FormatUint(uint64(lease.TenantID), 10),
		"payment_type": string(ptype),
	}

	intent, err := s.processor.CreateIntent(ctx, amount, "usd", metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorFailure, err)
	}

	return &IntentResult{
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
	}, nil
}

// RecordRentPayment applies a settled charge to an existing payment row.
// amountPaid only ever grows; Paid is sticky once reached, so a redelivered
// webhook is a no-op.
func (s *PaymentService) RecordRentPayment(ctx context.Context, paymentID uint, amount float64, chargeRef string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrAmountNotPositive
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	// Paid is sticky: a redelivered or late webhook changes nothing
	if payment.Status == string(domain.PaymentPaid) {
		return payment, nil
	}

	payment.AmountPaid += amount
	if chargeRef != "" {
		payment.ChargeRef = &chargeRef
	}
	if payment.AmountPaid >= payment.AmountDue {
		payment.Status = string(domain.PaymentPaid)
		paidAt := s.now()
		payment.PaymentDate = &paidAt
	} else {
		payment.Status = string(domain.PaymentPartiallyPaid)
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	if s.notifyService != nil && payment.Lease != nil {
		_, err := s.notifyService.Notify(ctx, payment.Lease.TenantID, domain.RoleTenant, domain.NotifyPaymentReceived,
			"Payment received",
			fmt.Sprintf("We received your payment of $%.2f.", amount),
			map[string]interface{}{
				"payment_id": payment.ID,
				"lease_id":   *payment.LeaseID,
				"amount":     amount,
			})
		if err != nil {
			log.Printf("payment notification for payment %d failed: %v", payment.ID, err)
		}
	}

	return payment, nil
}

// ListByTenant returns a page of payments on the tenant's leases
func (s *PaymentService) ListByTenant(ctx context.Context, tenantID uint, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.ListByTenant(ctx, tenantID, offset, limit)
}

// ListByManager returns a page of payments across the manager's properties
func (s *PaymentService) ListByManager(ctx context.Context, managerID uint, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.ListByManager(ctx, managerID, offset, limit)
}

// breakdownFor loads the application and computes the breakdown from the
// property's current pricing. Only valid while the application awaits payment.
func (s *PaymentService) breakdownFor(ctx context.Context, applicationID uint) (*models.Application, *domain.CostBreakdown, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, err
	}
	if app.Status != string(domain.ApplicationAwaitingPayment) {
		return nil, nil, ErrWrongApplicationState
	}

	property := app.Property
	if property == nil {
		property, err = s.propertyRepo.GetByID(ctx, app.PropertyID)
		if err != nil {
			return nil, nil, ErrPropertyNotFound
		}
	}

	breakdown := &domain.CostBreakdown{
		SecurityDeposit: property.SecurityDeposit,
		FirstMonthRent:  property.PricePerMonth,
		ApplicationFee:  property.ApplicationFee,
	}
	breakdown.Total = breakdown.SecurityDeposit + breakdown.FirstMonthRent + breakdown.ApplicationFee

	return app, breakdown, nil
}
