package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wanderlite/travel-booking-backend/internal/models"
)

// NotificationRepository handles per-user notification rows.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(n *models.Notification) error {
	n.ID = uuid.New().String()
	_, err := r.db.Exec(`
		INSERT INTO notifications (id, user_id, kind, title, body, reference, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NOW())`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body, n.Reference)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var notifications []models.Notification
	err := r.db.Select(&notifications, `
		SELECT id, user_id, kind, title, body, reference, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (r *NotificationRepository) UnreadCount(userID uuid.UUID) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID)
	return count, err
}

// MarkRead marks one notification read, scoped to its owner.
func (r *NotificationRepository) MarkRead(id string, userID uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &models.NotFoundError{Resource: "notification", ID: id}
	}
	return nil
}

// MarkAllRead marks every unread notification of a user read.
func (r *NotificationRepository) MarkAllRead(userID uuid.UUID) (int, error) {
	result, err := r.db.Exec(`
		UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
