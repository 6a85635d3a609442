package postgres

import (
	"context"
	"fmt"

	"topmarketingjobs/internal/models"

	"go.uber.org/zap"
)

const notificationsLimit = 50

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, false, NOW())
		RETURNING id, created_at
	`

	err := s.sess.
		SelectBySql(query, n.UserID, n.Type, n.Title, n.Message, n.Link).
		LoadOneContext(ctx, n)

	if err != nil {
		s.logger.Error("failed to create notification",
			zap.String("user_id", n.UserID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListNotifications returns the latest notifications of a user, unread first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}

	_, err := s.sess.
		Select("id", "user_id", "type", "title", "message", "link", "is_read", "created_at").
		From("notifications").
		Where("user_id = ?", userID).
		OrderAsc("is_read").
		OrderDesc("created_at").
		Limit(notificationsLimit).
		LoadContext(ctx, &notifications)

	if err != nil {
		s.logger.Error("failed to list notifications",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead only touches notifications owned by userID.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	result, err := s.sess.
		Update("notifications").
		Set("is_read", true).
		Where("id = ? AND user_id = ?", notificationID, userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark notification read",
			zap.String("user_id", userID),
			zap.String("notification_id", notificationID),
			zap.Error(err),
		)
		return fmt.Errorf("mark notification read: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}

	return nil
}
