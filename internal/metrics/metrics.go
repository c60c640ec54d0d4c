package metrics

import (
	"sync"
	"time"
)

// Metrics accumulates pipeline counters for the lifetime of the process.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	Requests           int64
	FailedRequests     int64
	CacheHits          int64
	FeedsFetched       int64
	FeedsFailed        int64
	ItemsCollected     int64
	DuplicatesFiltered int64
	SummaryBatches     int64
	FailedSummaryBatch int64
	ItemsSummarized    int64
	GroupsBuilt        int64
	EmbeddingFallbacks int64
	OverviewsGenerated int64
	OverviewFallbacks  int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

// Run is what one aggregation contributes to the counters.
type Run struct {
	FeedsFetched       int
	FeedsFailed        int
	ItemsCollected     int
	DuplicatesFiltered int
	SummaryBatches     int
	FailedBatches      int
	ItemsSummarized    int
	GroupsBuilt        int
	EmbeddingFallback  bool
	OverviewGenerated  bool
	OverviewFallback   bool
}

func (m *Metrics) IncrementRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) RecordRun(r Run) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FeedsFetched += int64(r.FeedsFetched)
	m.FeedsFailed += int64(r.FeedsFailed)
	m.ItemsCollected += int64(r.ItemsCollected)
	m.DuplicatesFiltered += int64(r.DuplicatesFiltered)
	m.SummaryBatches += int64(r.SummaryBatches)
	m.FailedSummaryBatch += int64(r.FailedBatches)
	m.ItemsSummarized += int64(r.ItemsSummarized)
	m.GroupsBuilt += int64(r.GroupsBuilt)
	if r.EmbeddingFallback {
		m.EmbeddingFallbacks++
	}
	if r.OverviewGenerated {
		m.OverviewsGenerated++
	}
	if r.OverviewFallback {
		m.OverviewFallbacks++
	}
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedRequests++
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"requests":                   m.Requests,
		"failed_requests":            m.FailedRequests,
		"cache_hits":                 m.CacheHits,
		"feeds_fetched":              m.FeedsFetched,
		"feeds_failed":               m.FeedsFailed,
		"items_collected":            m.ItemsCollected,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"summary_batches":            m.SummaryBatches,
		"failed_summary_batches":     m.FailedSummaryBatch,
		"items_summarized":           m.ItemsSummarized,
		"groups_built":               m.GroupsBuilt,
		"embedding_fallbacks":        m.EmbeddingFallbacks,
		"overviews_generated":        m.OverviewsGenerated,
		"overview_fallbacks":         m.OverviewFallbacks,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              formatTime(m.LastRunTime),
		"last_error_time":            formatTime(m.LastErrorTime),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
