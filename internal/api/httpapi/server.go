// Package httpapi serves the search, application and notification endpoints
// of the web app.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"topmarketingjobs/internal/api/webhook"
	"topmarketingjobs/internal/metrics"
	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// MaxRequestsPerMinute is the per-client budget enforced by RateLimit.
const MaxRequestsPerMinute = 120

// Searcher runs one entity search.
type Searcher[T any] interface {
	Search(ctx context.Context, fs search.FilterSet) (search.ResultPage[T], error)
}

// Store is the persistence the handlers need beyond searching.
type Store interface {
	GetJob(ctx context.Context, jobID string) (*models.JobRow, error)
	CreateApplication(ctx context.Context, app *models.Application) error
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

// Realtime fans out row inserts to live subscribers.
type Realtime interface {
	Publish(ctx context.Context, table, filter string, value interface{}) error
	Subscribe(ctx context.Context, table, filter string, onInsert func([]byte)) (func(), error)
}

// Pinger is a dependency checked by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RateLimiter interface {
	IncrementRateLimit(ctx context.Context, subject string) (int64, error)
}

type Deps struct {
	Jobs       Searcher[search.ListingRecord]
	Candidates Searcher[search.CandidateRecord]
	Companies  Searcher[search.CompanyRecord]

	Store    Store
	Realtime Realtime
	Limiter  RateLimiter
	Webhook  webhook.Sender
	Verifier *Verifier
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	// Health names the dependencies /health pings.
	Health map[string]Pinger

	CORSOrigins []string
	Now         func() time.Time

	// TrustProxy takes the client address from proxy headers.
	TrustProxy bool
}

type Server struct {
	jobs       Searcher[search.ListingRecord]
	candidates Searcher[search.CandidateRecord]
	companies  Searcher[search.CompanyRecord]

	store    Store
	realtime Realtime
	limiter  RateLimiter
	webhook  webhook.Sender
	verifier *Verifier
	metrics  *metrics.Metrics
	logger   *zap.Logger

	health      map[string]Pinger
	corsOrigins []string
	trustProxy  bool
	now         func() time.Time
}

func New(d Deps) *Server {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		jobs:        d.Jobs,
		candidates:  d.Candidates,
		companies:   d.Companies,
		store:       d.Store,
		realtime:    d.Realtime,
		limiter:     d.Limiter,
		webhook:     d.Webhook,
		verifier:    d.Verifier,
		metrics:     d.Metrics,
		logger:      logger,
		health:      d.Health,
		corsOrigins: d.CORSOrigins,
		trustProxy:  d.TrustProxy,
		now:         now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestID)
	r.Use(s.Recovery)
	r.Use(s.Logger)
	r.Use(s.RateLimit)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs", handleSearch(s, search.Jobs.Name, s.jobs))
		r.Get("/candidates", handleSearch(s, search.Candidates.Name, s.candidates))
		r.Get("/companies", handleSearch(s, search.Companies.Name, s.companies))
		r.Get("/search/update", s.handleSearchUpdate)
		r.Get("/jobs/{id}", s.handleJobDetail)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireSession)
			r.Post("/jobs/{id}/apply", s.handleApply)
			r.Get("/notifications", s.handleListNotifications)
			r.Post("/notifications/{id}/read", s.handleMarkRead)
		})
	})

	r.With(s.RequireSession).Get("/ws/notifications", s.handleNotificationStream)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server graceful shutdown failed: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}
	for name, p := range s.health {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
