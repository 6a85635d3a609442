package handlers

import (
	"topmarketingjobs/internal/api/webhook"
	"topmarketingjobs/internal/config"
	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"
	"topmarketingjobs/internal/storage/postgres"
	"topmarketingjobs/internal/storage/redis"

	"go.uber.org/zap"
)

// JobSearcher is the job directory search shared with the HTTP API.
type JobSearcher = *search.Searcher[models.JobRow, search.ListingRecord]

// Context contains deps for all handlers
type Context struct {
	Store    *postgres.Store
	Cache    *redis.Cache
	Jobs     JobSearcher
	Sessions *Sessions
	Webhook  webhook.Sender
	Config   *config.Config
	Logger   *zap.Logger
}
