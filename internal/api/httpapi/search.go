package httpapi

import (
	"errors"
	"net/http"
	"time"

	"topmarketingjobs/internal/metrics"
	"topmarketingjobs/internal/search"
	"topmarketingjobs/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// loadFailed is the body of a 502 when the directory query fails.
const loadFailed = "could not load results"

type searchResponse[T any] struct {
	Items      []T    `json:"items"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	PageWindow []int  `json:"page_window"`
	Query      string `json:"query"`
}

func handleSearch[T any](s *Server, entity string, searcher Searcher[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		fs, err := search.Decode(r.URL.RawQuery)
		if err != nil {
			s.logger.Warn("dropped malformed filters",
				zap.String("entity", entity),
				zap.String("query", r.URL.RawQuery),
				zap.Error(err),
			)
		}

		page, err := searcher.Search(r.Context(), fs)
		if err != nil {
			s.metrics.ObserveSearch(entity, metrics.OutcomeError, time.Since(start))
			s.logger.Error("search failed",
				zap.String("entity", entity),
				zap.String("request_id", requestID(r.Context())),
				zap.Error(err),
			)
			writeError(w, http.StatusBadGateway, loadFailed)
			return
		}
		s.metrics.ObserveSearch(entity, metrics.OutcomeOK, time.Since(start))

		items := page.Items
		if items == nil {
			items = []T{}
		}

		// the link reproduces the page actually served, which may be clamped
		fs.Page = page.Page
		totalPages := page.TotalPages()

		writeJSON(w, http.StatusOK, searchResponse[T]{
			Items:      items,
			TotalCount: page.TotalCount,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: totalPages,
			PageWindow: search.PageWindow(page.Page, totalPages),
			Query:      search.Encode(fs),
		})
	}
}

type updateResponse struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

// handleSearchUpdate applies one control change (key, value) to the filters
// carried in the rest of the query and returns the next canonical query.
func (s *Server) handleSearchUpdate(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	key, value := values.Get("key"), values.Get("value")
	values.Del("key")
	values.Del("value")

	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	fs, err := search.FromValues(values)
	if err != nil {
		s.logger.Warn("dropped malformed filters", zap.Error(err))
	}

	next, err := fs.Update(key, value)
	switch {
	case errors.Is(err, search.ErrUnknownKey):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Warn("dropped malformed filter value",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusOK, updateResponse{Query: search.Encode(next), Page: next.Page})
}

type jobDetail struct {
	search.ListingRecord
	Description string `json:"description"`
}

func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusBadGateway, loadFailed)
		return
	}

	writeJSON(w, http.StatusOK, jobDetail{
		ListingRecord: search.FormatJob(*job, s.now()),
		Description:   job.Description,
	})
}
