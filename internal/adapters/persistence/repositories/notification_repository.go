package repositories

import (
	"context"
	"time"

	"renthub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormNotificationRepository handles notification data access
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create creates a new notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ExistsRecent reports whether an equivalent notification was created after
// the given time. The dedup key is compared exactly against its own column,
// so prefix-sharing entity ids (7 vs 70) never suppress each other.
func (r *GormNotificationRepository) ExistsRecent(ctx context.Context, recipientID uint, role, ntype, dedupKey string, after time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ? AND type = ? AND dedup_key = ? AND created_at > ?",
			recipientID, role, ntype, dedupKey, after).
		Count(&count).Error
	return count > 0, err
}

// ListByRecipient lists a user's notifications, newest first
func (r *GormNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	base := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// MarkRead flips the read flag on the recipient's own notification
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, recipientID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
