package search_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func pageOf(titles ...string) search.ResultPage[search.ListingRecord] {
	items := make([]search.ListingRecord, len(titles))
	for i, title := range titles {
		items[i] = search.ListingRecord{Title: title}
	}
	return search.ResultPage[search.ListingRecord]{Items: items, TotalCount: 30, Page: 1, PageSize: 10}
}

func TestSession_FailureKeepsPreviousPage(t *testing.T) {
	fail := false
	loadErr := errors.New("connection reset")
	searchFn := func(_ context.Context, fs search.FilterSet) (search.ResultPage[search.ListingRecord], error) {
		if fail {
			return search.ResultPage[search.ListingRecord]{}, loadErr
		}
		p := pageOf("SEO Specialist")
		p.Page = fs.Page
		return p, nil
	}
	notifier := &recordingNotifier{}
	sess := search.NewSession(searchFn, notifier)

	if _, err := sess.Load(context.Background(), search.NewFilterSet()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fail = true
	got, err := sess.GoTo(context.Background(), 2)
	if !errors.Is(err, loadErr) {
		t.Fatalf("GoTo error = %v, want %v", err, loadErr)
	}
	if got.Page != 1 || len(got.Items) != 1 {
		t.Errorf("GoTo returned %+v, want previous page", got)
	}
	if notifier.count() != 1 || notifier.messages[0] != search.LoadFailedMessage {
		t.Errorf("notifications = %v", notifier.messages)
	}

	current, fs, ok := sess.Current()
	if !ok || current.Page != 1 || fs.Page != 1 {
		t.Errorf("Current() = %+v, %+v, %v", current, fs, ok)
	}
}

func TestSession_EmptyResultIsNotAnError(t *testing.T) {
	searchFn := func(context.Context, search.FilterSet) (search.ResultPage[search.ListingRecord], error) {
		return search.ResultPage[search.ListingRecord]{Items: nil, TotalCount: 0, Page: 1, PageSize: 10}, nil
	}
	notifier := &recordingNotifier{}
	sess := search.NewSession(searchFn, notifier)

	page, err := sess.Load(context.Background(), search.NewFilterSet())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !page.Empty() || notifier.count() != 0 {
		t.Errorf("page = %+v, notifications = %d", page, notifier.count())
	}
}

func TestSession_StaleLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	searchFn := func(ctx context.Context, fs search.FilterSet) (search.ResultPage[search.ListingRecord], error) {
		if fs.Keyword == "slow" {
			close(started)
			<-release
			if ctx.Err() == nil {
				t.Error("superseded load was not cancelled")
			}
			return pageOf("stale"), nil
		}
		return pageOf("fresh"), nil
	}
	sess := search.NewSession(searchFn, nil)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Load(context.Background(), search.FilterSet{Keyword: "slow", SortBy: search.SortRecent, Page: 1})
		done <- err
	}()
	<-started

	fresh, err := sess.Load(context.Background(), search.FilterSet{Keyword: "fast", SortBy: search.SortRecent, Page: 1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fresh.Items[0].Title != "fresh" {
		t.Fatalf("fresh load = %+v", fresh)
	}

	close(release)
	select {
	case err := <-done:
		if !errors.Is(err, search.ErrStaleResult) {
			t.Errorf("stale load error = %v, want ErrStaleResult", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stale load did not return")
	}

	current, fs, _ := sess.Current()
	if current.Items[0].Title != "fresh" || fs.Keyword != "fast" {
		t.Errorf("Current() = %+v, %+v", current, fs)
	}
}

func TestSession_ChangeResetsPage(t *testing.T) {
	var seen []search.FilterSet
	searchFn := func(_ context.Context, fs search.FilterSet) (search.ResultPage[search.ListingRecord], error) {
		seen = append(seen, fs)
		p := pageOf("x")
		p.Page = fs.Page
		return p, nil
	}
	sess := search.NewSession(searchFn, nil)

	ctx := context.Background()
	if _, err := sess.Load(ctx, search.FilterSet{SortBy: search.SortRecent, Page: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Change(ctx, search.KeyLocation, "ha-noi"); err != nil {
		t.Fatal(err)
	}
	if last := seen[len(seen)-1]; last.Page != 1 || last.Location != "ha-noi" {
		t.Errorf("after Change: %+v", last)
	}

	if _, err := sess.Change(ctx, "colour", "red"); !errors.Is(err, search.ErrUnknownKey) {
		t.Errorf("Change(unknown) error = %v", err)
	}
}

func TestSession_GoToRejectsOutOfRange(t *testing.T) {
	calls := 0
	searchFn := func(context.Context, search.FilterSet) (search.ResultPage[search.ListingRecord], error) {
		calls++
		return pageOf("a"), nil
	}
	sess := search.NewSession(searchFn, nil)

	if _, err := sess.GoTo(context.Background(), 1); !errors.Is(err, search.ErrPageOutOfRange) {
		t.Errorf("GoTo before Load error = %v", err)
	}

	if _, err := sess.Load(context.Background(), search.NewFilterSet()); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.GoTo(context.Background(), 4); !errors.Is(err, search.ErrPageOutOfRange) {
		t.Errorf("GoTo(4) of 3 error = %v", err)
	}
	if calls != 1 {
		t.Errorf("search called %d times, want 1", calls)
	}
}

type stubSource struct {
	rows  []models.JobRow
	count int
	err   error
	specs []search.QuerySpec
}

func (s *stubSource) Query(_ context.Context, spec search.QuerySpec) ([]models.JobRow, int, error) {
	s.specs = append(s.specs, spec)
	return s.rows, s.count, s.err
}

// rangeSource serves a fixed table and honours the requested row window.
type rangeSource struct {
	rows  []models.JobRow
	specs []search.QuerySpec
}

func (s *rangeSource) Query(_ context.Context, spec search.QuerySpec) ([]models.JobRow, int, error) {
	s.specs = append(s.specs, spec)
	from, to := spec.Range.From, spec.Range.To+1
	if from > len(s.rows) {
		from = len(s.rows)
	}
	if to > len(s.rows) {
		to = len(s.rows)
	}
	return s.rows[from:to], len(s.rows), nil
}

func TestSearcher_RerankAndClamp(t *testing.T) {
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		rows: []models.JobRow{
			{ID: "1", Title: "Senior Content Writer", CreatedAt: now},
			{ID: "2", Title: "Content Marketing Manager", IsFeatured: true, CreatedAt: now},
		},
		count: 2,
	}
	s := search.NewSearcher(search.Jobs, src, search.FormatJob, 10)
	s.Now = func() time.Time { return now }

	page, err := s.Search(context.Background(), search.FilterSet{Keyword: "content", SortBy: search.SortRelevant, Page: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Items[0].ID != "2" || page.Items[1].ID != "1" {
		t.Errorf("items not re-ranked: %+v", page.Items)
	}
	if page.Page != 1 || page.TotalPages() != 1 {
		t.Errorf("page = %d total = %d", page.Page, page.TotalPages())
	}
	if len(src.specs) != 2 || src.specs[0].Range.From != 40 || src.specs[1].Range.From != 0 {
		t.Errorf("requested ranges = %+v", src.specs)
	}
}

func TestSearcher_PagePastEndFetchesLastPage(t *testing.T) {
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	src := &rangeSource{}
	for i := 0; i < 25; i++ {
		src.rows = append(src.rows, models.JobRow{ID: fmt.Sprintf("job-%02d", i), Title: "Job", CreatedAt: now})
	}
	s := search.NewSearcher(search.Jobs, src, search.FormatJob, 10)
	s.Now = func() time.Time { return now }

	fs := search.NewFilterSet()
	fs.Page = 9

	page, err := s.Search(context.Background(), fs)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Page != 3 || page.TotalCount != 25 {
		t.Errorf("page = %d total = %d, want page 3 of 25", page.Page, page.TotalCount)
	}
	if len(page.Items) != 5 || page.Items[0].ID != "job-20" {
		t.Errorf("items = %+v, want the 5 rows of page 3", page.Items)
	}
}

func TestSearcher_InRangePageQueriesOnce(t *testing.T) {
	src := &rangeSource{rows: make([]models.JobRow, 25)}
	s := search.NewSearcher(search.Jobs, src, search.FormatJob, 10)

	fs := search.NewFilterSet()
	fs.Page = 2
	page, err := s.Search(context.Background(), fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(src.specs) != 1 || page.Page != 2 || len(page.Items) != 10 {
		t.Errorf("queries = %d page = %d items = %d", len(src.specs), page.Page, len(page.Items))
	}
}

func TestSearcher_EmptyResultStaysOnPageOne(t *testing.T) {
	src := &rangeSource{}
	s := search.NewSearcher(search.Jobs, src, search.FormatJob, 10)

	fs := search.NewFilterSet()
	fs.Page = 4
	page, err := s.Search(context.Background(), fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(src.specs) != 1 || page.Page != 1 || !page.Empty() {
		t.Errorf("queries = %d page = %+v", len(src.specs), page)
	}
}

func TestSearcher_WrapsSourceError(t *testing.T) {
	boom := errors.New("boom")
	s := search.NewSearcher(search.Jobs, &stubSource{err: boom}, search.FormatJob, 10)

	if _, err := s.Search(context.Background(), search.NewFilterSet()); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}
