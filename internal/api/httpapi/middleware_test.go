package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMasksAccessToken(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(Deps{Logger: zap.New(core)})

	h := s.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws/notifications?access_token=eyJhbGciOi.secret.sig&x=1", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d", len(entries))
	}
	query, _ := entries[0].ContextMap()["query"].(string)
	if strings.Contains(query, "secret") {
		t.Errorf("token written to log: %q", query)
	}
	if !strings.Contains(query, "access_token=REDACTED") || !strings.Contains(query, "x=1") {
		t.Errorf("query = %q", query)
	}
}

func TestRedactedQuery(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/api/jobs", ""},
		{"/api/jobs?q=seo&page=2", "q=seo&page=2"},
		{"/ws?access_token=abc", "access_token=REDACTED"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		if got := redactedQuery(req.URL); got != tt.want {
			t.Errorf("redactedQuery(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

type subjectLimiter struct{ subjects []string }

func (l *subjectLimiter) IncrementRateLimit(_ context.Context, subject string) (int64, error) {
	l.subjects = append(l.subjects, subject)
	return 1, nil
}

func TestRateLimitSubject(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		want       string
	}{
		{name: "proxy headers ignored by default", trustProxy: false, want: "ip:192.0.2.1"},
		{name: "trusted proxy", trustProxy: true, want: "ip:10.0.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &subjectLimiter{}
			s := New(Deps{Limiter: limiter, TrustProxy: tt.trustProxy, CORSOrigins: []string{"*"}})
			handler := s.Router()

			// httptest peers come from 192.0.2.1
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("X-Real-IP", "10.0.0.7")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if len(limiter.subjects) != 1 || limiter.subjects[0] != tt.want {
				t.Errorf("subjects = %v, want [%s]", limiter.subjects, tt.want)
			}
		})
	}
}
