package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/headlines/internal/fanout"
)

// DefaultTimeout bounds a single feed fetch.
const DefaultTimeout = 8 * time.Second

// DefaultUserAgent is sent with every feed request.
const DefaultUserAgent = "Mozilla/5.0 (NewsAggregatorBot)"

// maxFeedBytes caps how much of a feed body is read.
const maxFeedBytes = 10 << 20

// RawItem is one feed entry as parsed, before any filtering.
// PublishedAt is an ISO-ish timestamp string and may be empty or malformed.
type RawItem struct {
	Title       string
	Link        string
	Summary     string
	PublishedAt string
}

// SourceResult holds what one source contributed. Items is nil when the
// source failed to fetch or parse.
type SourceResult struct {
	Source Source
	Items  []RawItem
	OK     bool
}

// Fetcher downloads raw feed bytes with a hard per-call deadline.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       *slog.Logger
}

func NewFetcher(timeout time.Duration, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:    &http.Client{},
		timeout:   timeout,
		userAgent: DefaultUserAgent,
		log:       log,
	}
}

// Fetch returns the response body, or ok=false on any network error,
// timeout, or non-2xx status. It never retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, bool) {
	log := f.log.With(slog.String("url", url))

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("Failed to create feed request", slog.Any("error", err))
		return nil, false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("Feed request failed", slog.Any("error", err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Unexpected feed status", slog.Int("status_code", resp.StatusCode))
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		log.Warn("Failed to read feed body", slog.Any("error", err))
		return nil, false
	}
	return body, true
}

// Parse turns feed bytes (RSS, Atom or JSON Feed) into raw entries.
func Parse(data []byte) ([]RawItem, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		summary := it.Description
		if strings.TrimSpace(summary) == "" {
			summary = it.Content
		}
		items = append(items, RawItem{
			Title:       strings.TrimSpace(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Summary:     cleanHTML(summary),
			PublishedAt: isoDate(it),
		})
	}
	return items, nil
}

// FetchAll fetches and parses every source concurrently. The result has one
// slot per source in input order; a failing source yields an empty slot.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []SourceResult {
	return fanout.Map(ctx, sources, func(ctx context.Context, _ int, src Source) SourceResult {
		res := SourceResult{Source: src}

		body, ok := f.Fetch(ctx, src.URL)
		if !ok {
			return res
		}
		items, err := Parse(body)
		if err != nil {
			f.log.Warn("Error parsing RSS", slog.String("source", src.Name), slog.Any("error", err))
			return res
		}

		f.log.Debug("Loaded feed", slog.String("source", src.Name), slog.Int("items", len(items)))
		res.Items = items
		res.OK = true
		return res
	})
}

// isoDate prefers the parsed publish date, then the parsed update date, then
// whatever raw string the feed carried.
func isoDate(it *gofeed.Item) string {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC().Format(time.RFC3339)
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC().Format(time.RFC3339)
	case it.Published != "":
		return it.Published
	default:
		return it.Updated
	}
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
