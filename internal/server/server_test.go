package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/headlines/internal/config"
	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/metrics"
	"github.com/deusflow/headlines/internal/models"
)

type fakeAggregator struct {
	page, pageSize int
	hasDeadline    bool
	err            error
}

func (f *fakeAggregator) Aggregate(ctx context.Context, page, pageSize int) (*models.Response, error) {
	f.page, f.pageSize = page, pageSize
	_, f.hasDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	resp := &models.Response{
		Groups:      []*models.HeadlineGroup{},
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  1,
		GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if page == 1 {
		resp.Overview = &models.Overview{Title: "T", Bullets: []string{}}
	}
	return resp, nil
}

func newTestServer(agg Aggregator, m *metrics.Metrics) *Server {
	return New(agg, m, config.Default(), logger.Discard())
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestAggregate_Routes(t *testing.T) {
	for _, path := range []string{"/aggregate", "/api/news"} {
		t.Run(path, func(t *testing.T) {
			agg := &fakeAggregator{}
			w, body := get(t, newTestServer(agg, metrics.New()).Router(), path+"?page=1&pageSize=5")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, 1, agg.page)
			assert.Equal(t, 5, agg.pageSize)
			assert.True(t, agg.hasDeadline)
			assert.Contains(t, body, "overview")
			assert.Equal(t, []any{}, body["groups"])
			assert.Equal(t, "2025-01-01T00:00:00Z", body["generatedAt"])
		})
	}
}

func TestAggregate_LaterPageOmitsOverview(t *testing.T) {
	_, body := get(t, newTestServer(&fakeAggregator{}, metrics.New()).Router(), "/aggregate?page=3")
	assert.NotContains(t, body, "overview")
	assert.EqualValues(t, 3, body["page"])
}

func TestAggregate_Error(t *testing.T) {
	agg := &fakeAggregator{err: fmt.Errorf("model unavailable: GEMINI_API_KEY: missing API key")}
	w, body := get(t, newTestServer(agg, metrics.New()).Router(), "/aggregate")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "model unavailable: GEMINI_API_KEY: missing API key", body["error"])
}

func TestParsePaging(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", 1, 60},
		{"page=2&pageSize=10", 2, 10},
		{"page=0", 1, 60},
		{"page=-4", 1, 60},
		{"page=abc&pageSize=xyz", 1, 60},
		{"pageSize=1000", 1, config.MaxPageSize},
		{"pageSize=0", 1, 1},
		{"pageSize=-3", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/aggregate?"+tt.query, nil)
			page, pageSize := ParsePaging(req, 60)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestHealth(t *testing.T) {
	m := metrics.New()
	h := newTestServer(&fakeAggregator{}, m).Router()

	w, body := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	m.SetError("boom")
	w, body = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "boom", body["last_error"])
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	m.IncrementRequests()
	w, body := get(t, newTestServer(&fakeAggregator{}, m).Router(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["requests"])
}

func TestLoggingMiddleware(t *testing.T) {
	s := newTestServer(&fakeAggregator{}, metrics.New())

	called := false
	handler := s.withLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := newTestServer(&fakeAggregator{}, metrics.New())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
