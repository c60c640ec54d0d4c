// Package app wires the pipeline together: fetch, normalize, paginate,
// summarize, cluster and compose the overview for one request.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/deusflow/headlines/internal/cache"
	"github.com/deusflow/headlines/internal/cluster"
	"github.com/deusflow/headlines/internal/config"
	"github.com/deusflow/headlines/internal/llm"
	"github.com/deusflow/headlines/internal/metrics"
	"github.com/deusflow/headlines/internal/models"
	"github.com/deusflow/headlines/internal/news"
	"github.com/deusflow/headlines/internal/overview"
	"github.com/deusflow/headlines/internal/rss"
	"github.com/deusflow/headlines/internal/summarize"
)

// ErrModelUnavailable is the only error Aggregate returns: the model client
// could not be constructed, usually because the API key is missing.
var ErrModelUnavailable = errors.New("model unavailable")

// ClientFactory builds the model client used for one aggregation.
type ClientFactory func(ctx context.Context) (llm.Client, error)

type Aggregator struct {
	cfg       *config.Config
	sources   []rss.Source
	fetcher   *rss.Fetcher
	newClient ClientFactory
	metrics   *metrics.Metrics
	cache     *cache.Cache[*models.Response]
	log       *slog.Logger
	now       func() time.Time
}

type Option func(*Aggregator)

func WithClientFactory(f ClientFactory) Option {
	return func(a *Aggregator) { a.newClient = f }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func WithLogger(log *slog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New builds an Aggregator over sources. Without WithClientFactory the client
// is built from cfg on every request.
func New(cfg *config.Config, sources []rss.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:     cfg,
		sources: sources,
		metrics: metrics.Global,
		log:     slog.Default(),
		now:     time.Now,
	}
	a.newClient = func(ctx context.Context) (llm.Client, error) {
		return llm.NewFromConfig(ctx, cfg)
	}
	for _, opt := range opts {
		opt(a)
	}
	a.fetcher = rss.NewFetcher(cfg.FetchTimeout, a.log)
	a.cache = cache.New[*models.Response](cfg.CacheTTL)
	return a
}

// LoadSources returns the sources from cfg.FeedsConfigPath, or the built-in
// list when no path is configured.
func LoadSources(cfg *config.Config) ([]rss.Source, error) {
	if cfg.FeedsConfigPath == "" {
		return rss.DefaultSources, nil
	}
	sources, err := rss.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load feeds: %w", err)
	}
	return sources, nil
}

// Aggregate builds one page of grouped headlines. Feed, batch, embedding and
// overview failures only shrink the result; the returned error is always
// ErrModelUnavailable.
func (a *Aggregator) Aggregate(ctx context.Context, page, pageSize int) (*models.Response, error) {
	start := time.Now()
	a.metrics.IncrementRequests()

	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = a.cfg.DefaultPageSize
	}
	pageSize = config.ClampPageSize(pageSize)

	key := cache.Key(strconv.Itoa(page), strconv.Itoa(pageSize))
	if resp, ok := a.cache.Get(key); ok {
		a.metrics.IncrementCacheHits()
		a.log.Debug("serving cached page", "page", page, "page_size", pageSize)
		return resp, nil
	}

	client, err := a.newClient(ctx)
	if err != nil {
		a.metrics.SetError(err.Error())
		a.log.Error("cannot build model client", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			a.log.Debug("closing model client", "error", cerr)
		}
	}()

	var run metrics.Run

	results := a.fetcher.FetchAll(ctx, a.sources)
	for _, r := range results {
		if r.OK {
			run.FeedsFetched++
		} else {
			run.FeedsFailed++
		}
	}

	items, collected := news.Collect(results, news.Options{
		Now:            a.now(),
		Window:         a.cfg.Window(),
		PerSourceLimit: a.cfg.PerSourceLimit,
		TotalCap:       a.cfg.TotalCap,
	})
	run.ItemsCollected = collected.Kept
	run.DuplicatesFiltered = collected.Duplicates

	pg := news.Paginate(items, page, pageSize)
	a.log.Info("collected items",
		"sources", len(a.sources),
		"failed_sources", run.FeedsFailed,
		"raw", collected.Raw,
		"kept", collected.Kept,
		"page", pg.Page,
		"page_items", len(pg.Items))

	summarized, sstats := summarize.New(client, a.cfg.SummaryChunkSize, a.cfg.SnippetLimit, a.log).
		Summarize(ctx, pg.Items)
	run.SummaryBatches = sstats.Batches
	run.FailedBatches = sstats.FailedBatches
	run.ItemsSummarized = sstats.Records

	groups, gstats := cluster.New(client, a.cfg.SimilarityThreshold, a.log).Group(ctx, summarized)
	run.GroupsBuilt = gstats.Groups
	run.EmbeddingFallback = gstats.Degraded

	resp := &models.Response{
		Groups:     groups,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalItems: pg.TotalItems,
		TotalPages: pg.TotalPages,
	}

	if pg.Page == 1 {
		ov, fromModel := overview.New(client, a.cfg.OverviewGroups, a.log).Compose(ctx, groups)
		resp.Overview = ov
		run.OverviewGenerated = fromModel
		run.OverviewFallback = !fromModel
	}
	resp.GeneratedAt = a.now().UTC()

	a.metrics.RecordRun(run)
	a.metrics.RecordProcessingTime(time.Since(start))
	a.metrics.SetLastRun()
	a.cache.Set(key, resp)

	a.log.Info("aggregation done",
		"page", resp.Page,
		"groups", len(groups),
		"summarized", sstats.Records,
		"failed_batches", sstats.FailedBatches,
		"duration", time.Since(start).Round(time.Millisecond))
	return resp, nil
}
