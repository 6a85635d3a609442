package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"topmarketingjobs/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

const usersTable = "bot_users"

var userColumns = []string{"id", "username", "first_name", "created_at", "last_check", "alert_enabled", "alert_query"}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.sess.
		InsertInto(usersTable).
		Columns("id", "username", "first_name", "created_at", "alert_enabled", "alert_query").
		Values(user.ID, user.Username, user.FirstName, time.Now(), user.AlertEnabled, user.AlertQuery).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to create user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.Stringp("username", user.Username),
	)

	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	err := s.sess.
		Select(userColumns...).
		From(usersTable).
		Where("id = ?", userID).
		LoadOneContext(ctx, &user)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (s *Store) GetOrCreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return existing, nil
	}

	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetAlert stores the encoded search a user wants to be alerted about.
// An empty query turns the alert off.
func (s *Store) SetAlert(ctx context.Context, userID int64, query string) error {
	enabled := query != ""

	_, err := s.sess.
		Update(usersTable).
		Set("alert_query", query).
		Set("alert_enabled", enabled).
		Set("last_check", nil).
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set alert",
			zap.Int64("user_id", userID),
			zap.Bool("enabled", enabled),
			zap.Error(err),
		)
		return fmt.Errorf("set alert: %w", err)
	}

	s.logger.Info("alert updated",
		zap.Int64("user_id", userID),
		zap.Bool("enabled", enabled),
		zap.String("query", query),
	)

	return nil
}

func (s *Store) UpdateLastCheck(ctx context.Context, userID int64) error {
	_, err := s.sess.
		Update(usersTable).
		Set("last_check", time.Now()).
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update last check",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("update last check: %w", err)
	}

	return nil
}

func (s *Store) GetAlertUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User

	_, err := s.sess.
		Select(userColumns...).
		From(usersTable).
		Where("alert_enabled = ? AND alert_query <> ''", true).
		LoadContext(ctx, &users)

	if err != nil {
		s.logger.Error("failed to get alert users", zap.Error(err))
		return nil, fmt.Errorf("get alert users: %w", err)
	}

	s.logger.Debug("users to check",
		zap.Int("count", len(users)),
	)

	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.sess.
		DeleteFrom(usersTable).
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", zap.Int64("user_id", userID))
	return nil
}

// GetUserStats counts what the bot has sent to a user so far.
func (s *Store) GetUserStats(ctx context.Context, userID int64) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var seenCount int
	err := s.sess.
		Select("COUNT(*)").
		From("user_seen_jobs").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &seenCount)

	if err != nil {
		return nil, fmt.Errorf("get seen count: %w", err)
	}

	stats["seen_jobs_count"] = seenCount

	return stats, nil
}
