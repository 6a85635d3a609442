package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"topmarketingjobs/internal/config"
	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type fakeStore struct {
	users      []models.User
	seen       map[int64]map[string]bool
	lastChecks []int64
	cleanedAge int
	markErr    error
}

func (f *fakeStore) GetAlertUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeStore) GetUnseenJobs(_ context.Context, userID int64, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if !f.seen[userID][id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkJobsAsSeen(ctx context.Context, userID int64, ids []string) error {
	f.markErr = ctx.Err()
	if f.seen[userID] == nil {
		f.seen[userID] = map[string]bool{}
	}
	for _, id := range ids {
		f.seen[userID][id] = true
	}
	return nil
}

func (f *fakeStore) UpdateLastCheck(_ context.Context, userID int64) error {
	f.lastChecks = append(f.lastChecks, userID)
	return nil
}

func (f *fakeStore) CleanOldSeenJobs(_ context.Context, days int) (int64, error) {
	f.cleanedAge = days
	return 0, nil
}

type fakeSearcher struct {
	items   []search.ListingRecord
	err     error
	queries []search.FilterSet
}

func (f *fakeSearcher) Search(_ context.Context, fs search.FilterSet) (search.ResultPage[search.ListingRecord], error) {
	f.queries = append(f.queries, fs)
	if f.err != nil {
		return search.ResultPage[search.ListingRecord]{}, f.err
	}
	return search.ResultPage[search.ListingRecord]{Items: f.items, TotalCount: len(f.items), Page: 1, PageSize: 10}, nil
}

type fakeSender struct {
	messages int
	failOn   int
	afterN   int
	after    func()
}

func (f *fakeSender) Send(_ tele.Recipient, _ interface{}, _ ...interface{}) (*tele.Message, error) {
	f.messages++
	if f.after != nil && f.messages == f.afterN {
		f.after()
	}
	if f.failOn > 0 && f.messages == f.failOn {
		return nil, errors.New("too many requests")
	}
	return &tele.Message{}, nil
}

func jobs(ids ...string) []search.ListingRecord {
	out := make([]search.ListingRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, search.ListingRecord{ID: id, Title: "Job " + id, CompanyName: "ACME", SalaryText: "Thỏa thuận"})
	}
	return out
}

func newChecker(store AlertStore, jobs JobSearcher, sender *fakeSender, maxJobs int) *AlertChecker {
	cfg := &config.Config{PublicBaseURL: "https://topmarketingjobs.vn", MaxJobsPerAlert: maxJobs, SeenRetentionDays: 30}
	ac := New(sender, store, jobs, nil, cfg, zap.NewNop())
	ac.sendDelay = 0
	ac.userDelay = 0
	return ac
}

func TestNewJobs(t *testing.T) {
	items := jobs("a", "b", "c", "d")

	got := NewJobs(items, []string{"d", "b", "c"}, 2)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("NewJobs = %+v, want b,c in search order", got)
	}

	if got := NewJobs(items, nil, 5); len(got) != 0 {
		t.Errorf("nothing unseen = %+v", got)
	}
	if got := NewJobs(items, []string{"a", "b", "c", "d"}, 0); len(got) != 4 {
		t.Errorf("no limit = %d jobs", len(got))
	}
}

func TestCheckAllSendsOnlyUnseen(t *testing.T) {
	store := &fakeStore{
		users: []models.User{{ID: 7, AlertEnabled: true, AlertQuery: "q=seo&page=3&sort=featured"}},
		seen:  map[int64]map[string]bool{7: {"a": true}},
	}
	searcher := &fakeSearcher{items: jobs("a", "b", "c")}
	sender := &fakeSender{}
	ac := newChecker(store, searcher, sender, 10)

	ac.CheckAll(context.Background())

	if len(searcher.queries) != 1 {
		t.Fatalf("searches = %d", len(searcher.queries))
	}
	q := searcher.queries[0]
	if q.Keyword != "seo" || q.Page != 1 || q.SortBy != search.SortRecent {
		t.Errorf("alert search = %+v, want keyword kept, page 1, recent", q)
	}

	// header + b + c
	if sender.messages != 3 {
		t.Errorf("messages = %d, want 3", sender.messages)
	}
	if !store.seen[7]["b"] || !store.seen[7]["c"] {
		t.Errorf("seen = %v", store.seen[7])
	}
	if len(store.lastChecks) != 1 || store.lastChecks[0] != 7 {
		t.Errorf("last checks = %v", store.lastChecks)
	}

	// a second run finds nothing new
	sender.messages = 0
	ac.CheckAll(context.Background())
	if sender.messages != 0 {
		t.Errorf("second run sent %d messages", sender.messages)
	}
}

func TestCheckUserCapsAndSkipsFailedSends(t *testing.T) {
	store := &fakeStore{seen: map[int64]map[string]bool{}}
	searcher := &fakeSearcher{items: jobs("a", "b", "c", "d")}
	sender := &fakeSender{failOn: 2} // first job card fails
	ac := newChecker(store, searcher, sender, 3)

	if err := ac.CheckUser(context.Background(), &models.User{ID: 1, AlertQuery: "q=pr"}); err != nil {
		t.Fatal(err)
	}

	if sender.messages != 4 {
		t.Errorf("messages = %d, want header + 3 cards", sender.messages)
	}
	if store.seen[1]["a"] {
		t.Error("a job that failed to send must stay unseen")
	}
	if !store.seen[1]["b"] || !store.seen[1]["c"] || store.seen[1]["d"] {
		t.Errorf("seen = %v, want b and c", store.seen[1])
	}
}

func TestCheckAllSearchFailure(t *testing.T) {
	store := &fakeStore{
		users: []models.User{{ID: 1, AlertQuery: "q=pr"}},
		seen:  map[int64]map[string]bool{},
	}
	ac := newChecker(store, &fakeSearcher{err: errors.New("db down")}, &fakeSender{}, 10)

	ac.CheckAll(context.Background())

	if len(store.lastChecks) != 0 {
		t.Errorf("last check updated after a failed search: %v", store.lastChecks)
	}
}

func TestCleanup(t *testing.T) {
	store := &fakeStore{}
	ac := newChecker(store, &fakeSearcher{}, &fakeSender{}, 10)

	ac.Cleanup(context.Background())

	if store.cleanedAge != 30 {
		t.Errorf("cleaned age = %d", store.cleanedAge)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	ac := newChecker(&fakeStore{}, &fakeSearcher{}, &fakeSender{}, 10)
	ac.config.AlertSchedule = "not a schedule"

	if err := ac.Start(context.Background()); err == nil {
		t.Error("expected schedule error")
	}
}

func TestCheckUserStopsOnShutdown(t *testing.T) {
	store := &fakeStore{seen: map[int64]map[string]bool{}}
	searcher := &fakeSearcher{items: jobs("a", "b", "c")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// shutdown arrives right after the first card
	sender := &fakeSender{afterN: 2, after: cancel}
	ac := newChecker(store, searcher, sender, 10)
	ac.sendDelay = time.Hour

	done := make(chan error, 1)
	go func() {
		done <- ac.CheckUser(ctx, &models.User{ID: 9, AlertEnabled: true})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("CheckUser: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("CheckUser kept waiting between cards after cancel")
	}

	if sender.messages != 2 {
		t.Errorf("messages = %d, want header and one card", sender.messages)
	}
	if !store.seen[9]["a"] || store.seen[9]["b"] || store.seen[9]["c"] {
		t.Errorf("seen = %v, want only a", store.seen[9])
	}
	if store.markErr != nil {
		t.Errorf("seen jobs marked with a done context: %v", store.markErr)
	}
}
