package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"topmarketingjobs/internal/api/webhook"
	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxCoverLetter = 5000

type applyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

type applicationEvent struct {
	ApplicationID string    `json:"application_id"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	CandidateID   string    `json:"candidate_id"`
	EmployerID    string    `json:"employer_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// handleApply records an application of the session candidate and tells the
// employer about it in-app and through the webhook.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	if session.Role != RoleCandidate {
		writeError(w, http.StatusForbidden, "only candidates can apply")
		return
	}

	var req applyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CoverLetter = strings.TrimSpace(req.CoverLetter)
	if len([]rune(req.CoverLetter)) > maxCoverLetter {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("cover letter longer than %d characters", maxCoverLetter))
		return
	}

	jobID := chi.URLParam(r, "id")
	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusBadGateway, "could not load job")
		return
	}

	app := &models.Application{
		JobID:       job.ID,
		CandidateID: session.UserID,
		Status:      models.ApplicationStatusPending,
	}
	if req.CoverLetter != "" {
		app.CoverLetter = &req.CoverLetter
	}

	if err := s.store.CreateApplication(r.Context(), app); err != nil {
		if errors.Is(err, postgres.ErrDuplicate) {
			writeError(w, http.StatusConflict, "already applied to this job")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not save application")
		return
	}

	event := applicationEvent{
		ApplicationID: app.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		CandidateID:   app.CandidateID,
		CreatedAt:     app.CreatedAt,
	}

	if job.EmployerID != nil && *job.EmployerID != "" {
		event.EmployerID = *job.EmployerID
		s.notifyEmployer(r.Context(), *job.EmployerID, job)
	}

	if s.webhook != nil && !s.webhook.SendEvent(webhook.EventApplicationCreated, event) {
		s.logger.Debug("application webhook not sent", zap.String("application_id", app.ID))
	}

	writeJSON(w, http.StatusCreated, app)
}

// notifyEmployer is best effort: the application is already saved.
func (s *Server) notifyEmployer(ctx context.Context, employerID string, job *models.JobRow) {
	link := "/employer/applications?job=" + job.ID
	n := &models.Notification{
		UserID:  employerID,
		Type:    models.NotificationTypeApplication,
		Title:   "Ứng viên mới",
		Message: fmt.Sprintf("Có ứng viên mới ứng tuyển vị trí %s", job.Title),
		Link:    &link,
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.logger.Error("failed to notify employer",
			zap.String("employer_id", employerID),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return
	}

	if s.realtime == nil {
		return
	}
	if err := s.realtime.Publish(ctx, notificationsTable, employerID, n); err != nil {
		s.logger.Warn("failed to publish notification",
			zap.String("employer_id", employerID),
			zap.Error(err),
		)
	}
}
