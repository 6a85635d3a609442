package postgres

import (
	"context"
	"fmt"

	"topmarketingjobs/internal/models"

	"go.uber.org/zap"
)

// CreateApplication inserts a pending application. A second application of
// the same candidate to the same job fails with ErrDuplicate.
func (s *Store) CreateApplication(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (job_id, candidate_id, cover_letter, status, created_at)
		VALUES (?, ?, ?, ?, NOW())
		RETURNING id, created_at
	`

	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}

	err := s.sess.
		SelectBySql(query, app.JobID, app.CandidateID, app.CoverLetter, app.Status).
		LoadOneContext(ctx, app)

	if isUniqueViolation(err) {
		return fmt.Errorf("application to job %s: %w", app.JobID, ErrDuplicate)
	}

	if err != nil {
		s.logger.Error("failed to create application",
			zap.String("job_id", app.JobID),
			zap.String("candidate_id", app.CandidateID),
			zap.Error(err),
		)
		return fmt.Errorf("create application: %w", err)
	}

	s.logger.Info("application created",
		zap.String("application_id", app.ID),
		zap.String("job_id", app.JobID),
	)

	return nil
}
