package scheduler

import (
	"context"
	"fmt"
	"time"

	"topmarketingjobs/internal/bot/handlers"
	"topmarketingjobs/internal/bot/utils"
	"topmarketingjobs/internal/config"
	"topmarketingjobs/internal/metrics"
	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const cleanupSchedule = "@weekly"

// AlertStore is the storage used by the alert cycle.
type AlertStore interface {
	GetAlertUsers(ctx context.Context) ([]models.User, error)
	GetUnseenJobs(ctx context.Context, userID int64, jobIDs []string) ([]string, error)
	MarkJobsAsSeen(ctx context.Context, userID int64, jobIDs []string) error
	UpdateLastCheck(ctx context.Context, userID int64) error
	CleanOldSeenJobs(ctx context.Context, daysOld int) (int64, error)
}

type JobSearcher interface {
	Search(ctx context.Context, fs search.FilterSet) (search.ResultPage[search.ListingRecord], error)
}

// AlertChecker sends every user with a job alert the listings of their saved
// search they have not been sent yet.
type AlertChecker struct {
	sender    handlers.MessageSender
	store     AlertStore
	jobs      JobSearcher
	metrics   *metrics.Metrics
	config    *config.Config
	logger    *zap.Logger
	sendDelay time.Duration
	userDelay time.Duration
}

func New(
	sender handlers.MessageSender,
	store AlertStore,
	jobs JobSearcher,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *AlertChecker {
	return &AlertChecker{
		sender:    sender,
		store:     store,
		jobs:      jobs,
		metrics:   m,
		config:    cfg,
		logger:    logger,
		sendDelay: 500 * time.Millisecond,
		userDelay: 2 * time.Second,
	}
}

// Start runs the alert cycle on ALERT_SCHEDULE and the seen-jobs cleanup
// weekly until ctx is done.
func (ac *AlertChecker) Start(ctx context.Context) error {
	log := cronLogger{ac.logger.Sugar()}
	c := cron.New(cron.WithChain(
		cron.Recover(log),
		cron.SkipIfStillRunning(log),
	))

	if _, err := c.AddFunc(ac.config.AlertSchedule, func() { ac.CheckAll(ctx) }); err != nil {
		return fmt.Errorf("schedule alerts: %w", err)
	}

	if _, err := c.AddFunc(cleanupSchedule, func() { ac.Cleanup(ctx) }); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}

	c.Start()
	ac.logger.Info("alert checker started",
		zap.String("schedule", ac.config.AlertSchedule),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	ac.logger.Info("alert checker stopped")

	return nil
}

// CheckAll runs one alert cycle over all users with an alert.
func (ac *AlertChecker) CheckAll(ctx context.Context) {
	ac.logger.Info("starting alert check for all users")

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	users, err := ac.store.GetAlertUsers(dbCtx)
	if err != nil {
		ac.logger.Error("failed to get alert users", zap.Error(err))
		return
	}

	if len(users) == 0 {
		ac.logger.Debug("no users to check")
		return
	}

	for i, user := range users {
		if err := ac.CheckUser(dbCtx, &user); err != nil {
			ac.logger.Error("failed to check alert for user",
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}

		if err := ac.store.UpdateLastCheck(dbCtx, user.ID); err != nil {
			ac.logger.Error("failed to update last check",
				zap.Int64("user_id", user.ID),
				zap.Error(err),
			)
		}

		if i < len(users)-1 && !sleep(dbCtx, ac.userDelay) {
			return
		}
	}

	ac.logger.Info("finished alert check for all users", zap.Int("users", len(users)))
}

// CheckUser sends one user the new listings of their alert and marks them
// as seen.
func (ac *AlertChecker) CheckUser(ctx context.Context, user *models.User) error {
	fs, err := search.Decode(user.AlertQuery)
	if err != nil {
		ac.logger.Warn("alert query partly ignored",
			zap.Int64("user_id", user.ID),
			zap.String("query", user.AlertQuery),
			zap.Error(err),
		)
	}
	fs = handlers.AlertFilters(fs)

	page, err := ac.jobs.Search(ctx, fs)
	if err != nil {
		return fmt.Errorf("search jobs: %w", err)
	}

	if page.Empty() {
		ac.logger.Debug("no jobs found", zap.Int64("user_id", user.ID))
		return nil
	}

	ids := make([]string, 0, len(page.Items))
	for _, job := range page.Items {
		ids = append(ids, job.ID)
	}

	unseenIDs, err := ac.store.GetUnseenJobs(ctx, user.ID, ids)
	if err != nil {
		return fmt.Errorf("get unseen jobs: %w", err)
	}

	fresh := NewJobs(page.Items, unseenIDs, ac.config.MaxJobsPerAlert)
	if len(fresh) == 0 {
		ac.logger.Debug("no new jobs", zap.Int64("user_id", user.ID))
		return nil
	}

	sent, err := ac.send(ctx, user.ID, fresh)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}

	// cards already delivered are recorded even when the cycle is stopping
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := ac.store.MarkJobsAsSeen(markCtx, user.ID, sent); err != nil {
		return fmt.Errorf("mark jobs as seen: %w", err)
	}

	ac.metrics.AlertsSent(len(sent))

	ac.logger.Info("sent new jobs to user",
		zap.Int64("user_id", user.ID),
		zap.Int("count", len(sent)),
	)

	return nil
}

// NewJobs keeps the listings whose id is unseen, in search order, up to limit.
func NewJobs(items []search.ListingRecord, unseenIDs []string, limit int) []search.ListingRecord {
	unseen := make(map[string]bool, len(unseenIDs))
	for _, id := range unseenIDs {
		unseen[id] = true
	}

	var fresh []search.ListingRecord
	for _, job := range items {
		if limit > 0 && len(fresh) >= limit {
			break
		}
		if unseen[job.ID] {
			fresh = append(fresh, job)
		}
	}

	return fresh
}

// send delivers the header and one card per job and returns the ids that
// reached the user. It stops early once ctx is done.
func (ac *AlertChecker) send(ctx context.Context, userID int64, jobs []search.ListingRecord) ([]string, error) {
	recipient := &tele.User{ID: userID}

	if _, err := ac.sender.Send(recipient, utils.FormatAlertHeader(len(jobs)), tele.ModeMarkdownV2); err != nil {
		return nil, fmt.Errorf("send summary: %w", err)
	}

	sent := make([]string, 0, len(jobs))
	for i, job := range jobs {
		jobURL := utils.JobURL(ac.config.PublicBaseURL, job.ID)
		message := utils.FormatJobCard(job, "")
		keyboard := utils.InlineJobKeyboard(jobURL)

		if _, err := ac.sender.Send(recipient, message, keyboard, tele.ModeMarkdownV2); err != nil {
			ac.logger.Error("failed to send job notification",
				zap.Int64("user_id", userID),
				zap.String("job_id", job.ID),
				zap.Error(err),
			)
			continue
		}
		sent = append(sent, job.ID)

		if i < len(jobs)-1 && !sleep(ctx, ac.sendDelay) {
			break
		}
	}

	return sent, nil
}

// Cleanup forgets seen jobs older than SEEN_RETENTION_DAYS.
func (ac *AlertChecker) Cleanup(ctx context.Context) {
	dbCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := ac.store.CleanOldSeenJobs(dbCtx, ac.config.SeenRetentionDays); err != nil {
		ac.logger.Error("failed to clean seen jobs", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
