package postgres

import (
	"context"
	"errors"
	"fmt"

	"topmarketingjobs/internal/models"

	"github.com/gocraft/dbr/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (s *Store) GetJob(ctx context.Context, jobID string) (*models.JobRow, error) {
	var job models.JobRow

	err := s.sess.
		Select(jobColumns...).
		From("jobs").
		LeftJoin("companies", "companies.id = jobs.company_id").
		Where("jobs.id = ?", jobID).
		LoadOneContext(ctx, &job)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	if err != nil {
		s.logger.Error("failed to get job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get job: %w", err)
	}

	return &job, nil
}

func (s *Store) MarkJobsAsSeen(ctx context.Context, userID int64, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO user_seen_jobs (user_id, job_id, seen_at)
		SELECT $1, unnest($2::text[]), NOW()
		ON CONFLICT (user_id, job_id) DO NOTHING
	`

	_, err := s.sess.
		InsertBySql(query, userID, pq.Array(jobIDs)).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark jobs as seen",
			zap.Int64("user_id", userID),
			zap.Int("count", len(jobIDs)),
			zap.Error(err),
		)
		return fmt.Errorf("mark jobs as seen: %w", err)
	}

	return nil
}

// GetUnseenJobs returns the subset of jobIDs the user has not been sent yet,
// in no particular order.
func (s *Store) GetUnseenJobs(ctx context.Context, userID int64, jobIDs []string) ([]string, error) {
	if len(jobIDs) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT unnest($1::text[]) AS id
		EXCEPT
		SELECT job_id FROM user_seen_jobs WHERE user_id = $2
	`

	var unseenIDs []string

	_, err := s.sess.
		SelectBySql(query, pq.Array(jobIDs), userID).
		LoadContext(ctx, &unseenIDs)

	if err != nil {
		s.logger.Error("failed to get unseen jobs",
			zap.Int64("user_id", userID),
			zap.Int("total_jobs", len(jobIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get unseen jobs: %w", err)
	}

	s.logger.Debug("unseen jobs",
		zap.Int64("user_id", userID),
		zap.Int("total", len(jobIDs)),
		zap.Int("unseen", len(unseenIDs)),
	)

	return unseenIDs, nil
}

func (s *Store) CleanOldSeenJobs(ctx context.Context, daysOld int) (int64, error) {
	result, err := s.sess.
		DeleteFrom("user_seen_jobs").
		Where("seen_at < NOW() - make_interval(days => ?)", daysOld).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to clean old seen jobs",
			zap.Int("days_old", daysOld),
			zap.Error(err),
		)
		return 0, fmt.Errorf("clean old seen jobs: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("old seen jobs cleaned",
		zap.Int("days_old", daysOld),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}
