package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"
)

// DedupWindow is how far back NotifyOnce looks before re-notifying for the
// same entity.
const DedupWindow = 24 * time.Hour

// NotificationService persists notifications and forwards them to the
// real-time channel. Every other service notifies through here; nothing else
// talks to the publisher directly.
type NotificationService struct {
	repo      repositories.NotificationRepository
	publisher Publisher
	now       func() time.Time
}

// NewNotificationService creates a new notification service. publisher may
// be nil, in which case events are persisted only.
func NewNotificationService(repo repositories.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Notify writes one notification row and pushes it to the recipient's
// channel. The row is the source of truth: a failed push is logged and
// swallowed, a failed write is returned.
func (s *NotificationService) Notify(ctx context.Context, recipientID uint, role domain.Role, ntype domain.NotificationType, title, message string, payload map[string]interface{}) (*models.Notification, error) {
	return s.notify(ctx, recipientID, role, ntype, title, message, payload, "")
}

// NotifyOnce behaves like Notify but skips creation when a notification with
// the same dedup key was created inside the dedup window. dedupKey identifies
// the entity being notified about, e.g. "lease:42", and is matched exactly.
// It reports whether a notification was created.
func (s *NotificationService) NotifyOnce(ctx context.Context, recipientID uint, role domain.Role, ntype domain.NotificationType, title, message string, payload map[string]interface{}, dedupKey string) (bool, error) {
	since := s.now().Add(-DedupWindow)
	exists, err := s.repo.ExistsRecent(ctx, recipientID, string(role), string(ntype), dedupKey, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.notify(ctx, recipientID, role, ntype, title, message, payload, dedupKey); err != nil {
		return false, err
	}
	return true, nil
}

func (s *NotificationService) notify(ctx context.Context, recipientID uint, role domain.Role, ntype domain.NotificationType, title, message string, payload map[string]interface{}, dedupKey string) (*models.Notification, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode notification payload: %v", domain.ErrInternal, err)
	}

	n := &models.Notification{
		Type:          string(ntype),
		Title:         title,
		Message:       message,
		RecipientID:   recipientID,
		RecipientRole: string(role),
		Payload:       string(encoded),
		DedupKey:      dedupKey,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		channel := fmt.Sprintf("user:%d", recipientID)
		if err := s.publisher.Publish(channel, string(ntype), n); err != nil {
			log.Printf("realtime publish to %s failed (persisted anyway): %v", channel, err)
		}
	}

	return n, nil
}

// ListForUser returns a page of the user's notifications
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, userID, offset, limit)
}

// MarkRead flips the read flag on the user's own notification
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}
