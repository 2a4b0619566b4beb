package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

// NotificationRepository manages persistence for notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// List returns notifications newest first. A non-empty audience also matches notifications sent to All.
func (r *NotificationRepository) List(ctx context.Context, audience string) ([]models.Notification, error) {
	query := "SELECT id, type, message, date, audience, created_at FROM notifications"
	var args []interface{}
	if audience != "" && audience != models.AudienceAll {
		query += " WHERE audience IN ($1, $2)"
		args = append(args, audience, models.AudienceAll)
	}
	query += " ORDER BY created_at DESC"

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// Create inserts a notification, assigning its ID and creation time.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, type, message, date, audience, created_at)
		VALUES (:id, :type, :message, :date, :audience, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Delete removes a notification and reports whether it existed.
func (r *NotificationRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of stored notifications.
func (r *NotificationRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return total, nil
}
