// Package news turns raw feed entries into a windowed, deduplicated,
// newest-first list and pages through it.
package news

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/headlines/internal/rss"
)

// UntitledTitle replaces missing entry titles.
const UntitledTitle = "Untitled"

// CanonicalItem is one feed entry after normalization. URL is the dedup key.
type CanonicalItem struct {
	Source      string
	Title       string
	URL         string
	Snippet     string
	PublishedAt string
	Published   time.Time // zero when PublishedAt could not be parsed
}

// Options controls Collect.
type Options struct {
	Now            time.Time
	Window         time.Duration
	PerSourceLimit int
	TotalCap       int
}

// Stats reports what Collect dropped along the way.
type Stats struct {
	Raw        int
	InWindow   int
	Duplicates int
	Kept       int
}

// Page is one window over the capped, sorted item list.
type Page struct {
	Items      []CanonicalItem
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the date formats feeds actually emit.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fail to parse date in any known format: %q", s)
}

// Normalize converts one source's raw entries, keeps only those dated within
// window of now, and caps the result at perSource in feed order. Undated or
// unparseable entries are dropped: they cannot be windowed or ordered.
func Normalize(src rss.Source, raw []rss.RawItem, now time.Time, window time.Duration, perSource int) []CanonicalItem {
	cutoff := now.Add(-window)
	out := make([]CanonicalItem, 0, min(len(raw), max(perSource, 0)))

	for _, it := range raw {
		if perSource > 0 && len(out) >= perSource {
			break
		}

		published, err := ParseTimestamp(it.PublishedAt)
		if err != nil || published.Before(cutoff) {
			continue
		}

		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = UntitledTitle
		}
		link := strings.TrimSpace(it.Link)
		if link == "" {
			link = src.Homepage
		}

		out = append(out, CanonicalItem{
			Source:      src.Name,
			Title:       title,
			URL:         link,
			Snippet:     it.Summary,
			PublishedAt: it.PublishedAt,
			Published:   published,
		})
	}
	return out
}

// DedupeByURL keeps the first item seen for each URL. Items without a URL
// cannot be keyed and are dropped. The second return value counts removals.
func DedupeByURL(items []CanonicalItem) ([]CanonicalItem, int) {
	seen := make(map[string]struct{}, len(items))
	out := make([]CanonicalItem, 0, len(items))
	dropped := 0
	for _, it := range items {
		if it.URL == "" {
			dropped++
			continue
		}
		if _, dup := seen[it.URL]; dup {
			dropped++
			continue
		}
		seen[it.URL] = struct{}{}
		out = append(out, it)
	}
	return out, dropped
}

// SortNewest orders items newest first. Items without a timestamp sort as
// the epoch. Equal timestamps keep their relative order.
func SortNewest(items []CanonicalItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i]).After(sortKey(items[j]))
	})
}

func sortKey(it CanonicalItem) time.Time {
	if it.Published.IsZero() {
		return time.Unix(0, 0)
	}
	return it.Published
}

// Cap truncates items to at most n entries.
func Cap(items []CanonicalItem, n int) []CanonicalItem {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// Collect runs the whole normalization: per-source filter and cap, global
// dedup in source order, newest-first sort, then the global cap.
func Collect(results []rss.SourceResult, opts Options) ([]CanonicalItem, Stats) {
	var stats Stats
	var flat []CanonicalItem
	for _, r := range results {
		stats.Raw += len(r.Items)
		flat = append(flat, Normalize(r.Source, r.Items, opts.Now, opts.Window, opts.PerSourceLimit)...)
	}
	stats.InWindow = len(flat)

	deduped, dropped := DedupeByURL(flat)
	stats.Duplicates = dropped

	SortNewest(deduped)
	capped := Cap(deduped, opts.TotalCap)
	stats.Kept = len(capped)

	return capped, stats
}

// Paginate slices a 1-indexed page out of items. A page past the end is
// empty, never an error. TotalPages is at least 1.
func Paginate(items []CanonicalItem, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(items)
	totalPages := max(1, (total+pageSize-1)/pageSize)

	var slice []CanonicalItem
	if page <= totalPages {
		start := (page - 1) * pageSize
		if start < total {
			slice = items[start:min(start+pageSize, total)]
		}
	}

	return Page{
		Items:      slice,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
