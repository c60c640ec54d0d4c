// Package summarize asks the model for a neutral headline, a topic and an
// angle for every canonical item, a batch at a time.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deusflow/headlines/internal/fanout"
	"github.com/deusflow/headlines/internal/llm"
	"github.com/deusflow/headlines/internal/models"
	"github.com/deusflow/headlines/internal/news"
	"github.com/deusflow/headlines/internal/taxonomy"
)

const (
	DefaultBatchSize    = 10
	DefaultSnippetLimit = 300
)

// Stats reports how the batches of one Summarize call went.
type Stats struct {
	Batches       int
	FailedBatches int
	Records       int
	Discarded     int
}

type Summarizer struct {
	gen          llm.Generator
	batchSize    int
	snippetLimit int
	log          *slog.Logger
}

func New(gen llm.Generator, batchSize, snippetLimit int, log *slog.Logger) *Summarizer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if snippetLimit < 1 {
		snippetLimit = DefaultSnippetLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{gen: gen, batchSize: batchSize, snippetLimit: snippetLimit, log: log}
}

// SystemPrompt is the instruction sent with every batch.
func SystemPrompt() string {
	return fmt.Sprintf("You are a news assistant. For each item, return: headline (<= 14 words, neutral), "+
		"topic (one of: %s), and angle (one of: %s). "+
		"Return a JSON array of objects with keys: source, title, url, publishedAt, headline, topic, angle. "+
		"Return JSON only.", taxonomy.JoinTopics(), taxonomy.JoinAngles())
}

// BuildPrompt renders one batch as a numbered list.
func BuildPrompt(items []news.CanonicalItem, snippetLimit int) string {
	var b strings.Builder
	b.WriteString("Summarize and classify these news items:\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. source=%s\n   title=%s\n   snippet=%s\n   url=%s\n   published=%s\n",
			i+1, item.Source, item.Title, Truncate(item.Snippet, snippetLimit), item.URL, item.PublishedAt)
	}
	return b.String()
}

// Truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit < 1 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}

// Summarize runs every batch concurrently and returns the records in batch
// order. A batch whose call fails or whose output cannot be decoded
// contributes nothing.
func (s *Summarizer) Summarize(ctx context.Context, items []news.CanonicalItem) ([]models.SummarizedItem, Stats) {
	batches := fanout.Chunk(items, s.batchSize)
	stats := Stats{Batches: len(batches)}
	if len(batches) == 0 {
		return []models.SummarizedItem{}, stats
	}

	results := fanout.Map(ctx, batches, func(ctx context.Context, i int, batch []news.CanonicalItem) batchResult {
		return s.summarizeBatch(ctx, i, batch)
	})

	out := make([]models.SummarizedItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, res := range results {
		if !res.ok {
			stats.FailedBatches++
			continue
		}
		stats.Discarded += res.discarded
		for _, item := range res.items {
			if seen[item.URL] {
				stats.Discarded++
				continue
			}
			seen[item.URL] = true
			out = append(out, item)
		}
	}
	stats.Records = len(out)
	return out, stats
}

type batchResult struct {
	items     []models.SummarizedItem
	discarded int
	ok        bool
}

func (s *Summarizer) summarizeBatch(ctx context.Context, idx int, batch []news.CanonicalItem) batchResult {
	text, err := s.gen.Generate(ctx, SystemPrompt(), BuildPrompt(batch, s.snippetLimit))
	if err != nil {
		s.log.Warn("summary batch failed", "batch", idx, "items", len(batch), "error", err)
		return batchResult{}
	}

	elems, ok := llm.ParseArray(text)
	if !ok {
		s.log.Warn("summary batch returned unparseable output", "batch", idx, "items", len(batch))
		return batchResult{}
	}

	items, discarded := Reconcile(batch, elems)
	s.log.Debug("summary batch done", "batch", idx, "records", len(items), "discarded", discarded)
	return batchResult{items: items, discarded: discarded, ok: true}
}

// record is the shape the model is asked for. Every field is optional and
// non-string values are ignored.
type record struct {
	Source      string
	Title       string
	URL         string
	PublishedAt string
	Headline    string
	Topic       string
	Angle       string
}

func decodeRecord(raw json.RawMessage) (record, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return record{}, false
	}
	str := func(key string) string {
		v, _ := fields[key].(string)
		return strings.TrimSpace(v)
	}
	return record{
		Source:      str("source"),
		Title:       str("title"),
		URL:         str("url"),
		PublishedAt: str("publishedAt"),
		Headline:    str("headline"),
		Topic:       str("topic"),
		Angle:       str("angle"),
	}, true
}

// Reconcile turns decoded records into items. Records are matched to the
// batch by URL so that source, title and publish time come from the feed
// rather than from the model; records without a URL are dropped.
func Reconcile(batch []news.CanonicalItem, elems []json.RawMessage) ([]models.SummarizedItem, int) {
	byURL := make(map[string]news.CanonicalItem, len(batch))
	for _, item := range batch {
		byURL[item.URL] = item
	}

	out := make([]models.SummarizedItem, 0, len(elems))
	discarded := 0
	for _, raw := range elems {
		rec, ok := decodeRecord(raw)
		if !ok || rec.URL == "" {
			discarded++
			continue
		}

		source, title, published := rec.Source, rec.Title, rec.PublishedAt
		if item, found := byURL[rec.URL]; found {
			source, title, published = item.Source, item.Title, item.PublishedAt
		}
		if title == "" {
			title = news.UntitledTitle
		}
		headline := rec.Headline
		if headline == "" {
			headline = title
		}

		out = append(out, models.SummarizedItem{
			ID:          models.ItemID(rec.URL, title),
			Source:      source,
			Title:       title,
			URL:         rec.URL,
			PublishedAt: published,
			Headline:    headline,
			Topic:       taxonomy.NormalizeTopic(rec.Topic),
			Angle:       taxonomy.NormalizeAngle(rec.Angle),
		})
	}
	return out, discarded
}
