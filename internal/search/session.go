package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// LoadFailedMessage is shown to the user when a search query fails.
const LoadFailedMessage = "Không thể tải kết quả, vui lòng thử lại" // could not load results

var ErrStaleResult = errors.New("stale search result")

// Source is the storage side of a search: it runs a QuerySpec and returns the
// page rows together with the exact size of the filtered set.
type Source[R any] interface {
	Query(ctx context.Context, spec QuerySpec) ([]R, int, error)
}

// Searcher runs the whole pipeline for one entity: build, query, format,
// re-rank and paginate.
type Searcher[R any, T Rankable] struct {
	Entity   Entity
	Source   Source[R]
	Format   func(R, time.Time) T
	PageSize int
	Now      func() time.Time
}

func NewSearcher[R any, T Rankable](entity Entity, source Source[R], format func(R, time.Time) T, pageSize int) *Searcher[R, T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Searcher[R, T]{
		Entity:   entity,
		Source:   source,
		Format:   format,
		PageSize: pageSize,
		Now:      time.Now,
	}
}

func (s *Searcher[R, T]) Search(ctx context.Context, fs FilterSet) (ResultPage[T], error) {
	rows, count, err := s.Source.Query(ctx, Build(s.Entity, fs, s.PageSize))
	if err != nil {
		return ResultPage[T]{}, fmt.Errorf("search %s: %w", s.Entity.Name, err)
	}

	// a stale link can point past the last page: fetch the last one instead
	if last := TotalPages(count, s.PageSize); count > 0 && fs.Page > last {
		fs.Page = last
		rows, count, err = s.Source.Query(ctx, Build(s.Entity, fs, s.PageSize))
		if err != nil {
			return ResultPage[T]{}, fmt.Errorf("search %s: %w", s.Entity.Name, err)
		}
	}

	now := s.Now()
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.Format(row, now))
	}

	if ShouldRerank(fs) {
		items = Rerank(items, fs.Keyword)
	}

	return ResultPage[T]{
		Items:      items,
		TotalCount: count,
		Page:       ClampPage(fs.Page, TotalPages(count, s.PageSize)),
		PageSize:   s.PageSize,
	}, nil
}

// Notifier shows a transient message to the user of a Session.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

type SearchFunc[T any] func(ctx context.Context, fs FilterSet) (ResultPage[T], error)

// Session holds the results on screen for one client and serialises the
// loads it triggers. Only the latest Load may replace the current page: a
// newer Load cancels the one in flight and any late answer is dropped with
// ErrStaleResult. A failed Load keeps the previous page.
type Session[T any] struct {
	search   SearchFunc[T]
	notifier Notifier

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    *ResultPage[T]
	filters    FilterSet
}

func NewSession[T any](search SearchFunc[T], notifier Notifier) *Session[T] {
	return &Session[T]{
		search:   search,
		notifier: notifier,
		filters:  NewFilterSet(),
	}
}

func (s *Session[T]) Load(ctx context.Context, fs FilterSet) (ResultPage[T], error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	page, err := s.search(loadCtx, fs)
	cancel()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ResultPage[T]{}, ErrStaleResult
	}
	s.cancel = nil

	if err != nil {
		var prev ResultPage[T]
		if s.current != nil {
			prev = *s.current
		}
		s.mu.Unlock()

		if s.notifier != nil {
			s.notifier.Notify(ctx, LoadFailedMessage)
		}
		return prev, err
	}

	s.current = &page
	s.filters = fs
	s.mu.Unlock()

	return page, nil
}

// GoTo loads another page of the current search.
func (s *Session[T]) GoTo(ctx context.Context, requested int) (ResultPage[T], error) {
	page, fs, ok := s.Current()
	if !ok {
		return page, fmt.Errorf("%w: no results loaded", ErrPageOutOfRange)
	}

	target, err := GoToPage(page.Page, requested, page.TotalPages())
	if err != nil {
		return page, err
	}

	next, _ := fs.Update(KeyPage, strconv.Itoa(target))
	return s.Load(ctx, next)
}

// Change applies one filter control change and reloads.
func (s *Session[T]) Change(ctx context.Context, key, value string) (ResultPage[T], error) {
	s.mu.Lock()
	fs := s.filters
	s.mu.Unlock()

	next, err := fs.Update(key, value)
	if err != nil && errors.Is(err, ErrUnknownKey) {
		return ResultPage[T]{}, err
	}
	return s.Load(ctx, next)
}

// Current returns the page on screen and the filters that produced it.
func (s *Session[T]) Current() (ResultPage[T], FilterSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ResultPage[T]{}, s.filters, false
	}
	return *s.current, s.filters, true
}
