package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"

	"gorm.io/gorm"
)

// Application service errors
var (
	ErrApplicationNotFound  = fmt.Errorf("%w: application not found", domain.ErrNotFound)
	ErrPropertyNotFound     = fmt.Errorf("%w: property not found", domain.ErrNotFound)
	ErrNotPropertyManager   = fmt.Errorf("%w: caller does not manage this property", domain.ErrForbidden)
	ErrInvalidTransition    = fmt.Errorf("%w: invalid application status transition", domain.ErrConflict)
	ErrDuplicateApplication = fmt.Errorf("%w: an active application already exists for this property", domain.ErrConflict)
	ErrMissingApplicantInfo = fmt.Errorf("%w: applicant name and email are required", domain.ErrValidation)
)

// ApplicationService drives the application status lifecycle. Status is only
// ever mutated here; everything else reads it.
type ApplicationService struct {
	appRepo       repositories.ApplicationRepository
	propertyRepo  repositories.PropertyRepository
	notifyService *NotificationService
	now           func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	propertyRepo repositories.PropertyRepository,
	notifyService *NotificationService,
) *ApplicationService {
	return &ApplicationService{
		appRepo:       appRepo,
		propertyRepo:  propertyRepo,
		notifyService: notifyService,
		now:           time.Now,
	}
}

// SubmitApplicationInput represents submit application input
type SubmitApplicationInput struct {
	PropertyID  uint   `json:"property_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Submit creates a Pending application for the tenant. A tenant may hold at
// most one non-Denied application per property.
func (s *ApplicationService) Submit(ctx context.Context, input *SubmitApplicationInput, tenantID uint) (*models.Application, error) {
	if input.Name == "" || input.Email == "" {
		return nil, ErrMissingApplicantInfo
	}

	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	exists, err := s.appRepo.HasActiveForPair(ctx, tenantID, property.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateApplication
	}

	app := &models.Application{
		Status:          string(domain.ApplicationPending),
		Name:            input.Name,
		Email:           input.Email,
		PhoneNumber:     input.PhoneNumber,
		Message:         input.Message,
		ApplicationDate: s.now(),
		PropertyID:      property.ID,
		TenantID:        tenantID,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.notifyBestEffort(ctx, property.ManagerID, domain.RoleManager, domain.NotifyApplicationSubmitted,
		"New application received",
		fmt.Sprintf("%s applied for %s", input.Name, property.Name),
		map[string]interface{}{
			"application_id": app.ID,
			"property_id":    property.ID,
		})

	return app, nil
}

// SetStatus applies a manager decision to a Pending application. An Approve
// decision stores AwaitingPayment: the application only becomes Approved once
// the initial payment completes. The status change is persisted before the
// notification is attempted, and a notification failure never rolls it back.
func (s *ApplicationService) SetStatus(ctx context.Context, applicationID uint, decision domain.RequestedDecision, managerID uint) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	property := app.Property
	if property == nil {
		property, err = s.propertyRepo.GetByID(ctx, app.PropertyID)
		if err != nil {
			return nil, ErrPropertyNotFound
		}
	}
	if property.ManagerID != managerID {
		return nil, ErrNotPropertyManager
	}

	target, ok := domain.StatusForDecision(decision)
	if !ok {
		return nil, ErrInvalidTransition
	}
	if app.Status != string(domain.ApplicationPending) {
		return nil, ErrInvalidTransition
	}

	app.Status = string(target)
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	title := "Application denied"
	message := fmt.Sprintf("Your application for %s was denied.", property.Name)
	if decision == domain.DecisionApprove {
		title = "Application approved"
		message = fmt.Sprintf("Your application for %s was approved. Complete the initial payment to activate your lease.", property.Name)
	}
	s.notifyBestEffort(ctx, app.TenantID, domain.RoleTenant, domain.NotifyApplicationStatus, title, message,
		map[string]interface{}{
			"application_id": app.ID,
			"property_id":    property.ID,
			"status":         app.Status,
		})

	return app, nil
}

// GetByID gets an application by ID
func (s *ApplicationService) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListForUser lists applications visible to the caller: tenants see their
// own, managers see applications against their properties.
func (s *ApplicationService) ListForUser(ctx context.Context, userID uint, role domain.Role) ([]*models.Application, error) {
	if role == domain.RoleManager {
		return s.appRepo.ListByManager(ctx, userID)
	}
	return s.appRepo.ListByTenant(ctx, userID)
}

// notifyBestEffort dispatches a notification and logs instead of failing.
// Delivery is never allowed to undo a committed state change.
func (s *ApplicationService) notifyBestEffort(ctx context.Context, recipientID uint, role domain.Role, ntype domain.NotificationType, title, message string, payload map[string]interface{}) {
	if s.notifyService == nil {
		return
	}
	if _, err := s.notifyService.Notify(ctx, recipientID, role, ntype, title, message, payload); err != nil {
		log.Printf("notification %s to user %d failed: %v", ntype, recipientID, err)
	}
}
