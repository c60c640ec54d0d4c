// Package overview writes the short "what happened today" digest shown above
// the first page of groups.
package overview

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deusflow/headlines/internal/llm"
	"github.com/deusflow/headlines/internal/models"
)

const (
	FallbackTitle = "Today at a glance"

	DefaultGroups  = 12
	MaxBullets     = 6
	fallbackGroups = 5

	systemPrompt = "Summarize grouped headlines into 3-6 neutral, factual bullets. Return JSON only."
)

type Composer struct {
	gen       llm.Generator
	maxGroups int
	log       *slog.Logger
}

func New(gen llm.Generator, maxGroups int, log *slog.Logger) *Composer {
	if maxGroups < 1 {
		maxGroups = DefaultGroups
	}
	if log == nil {
		log = slog.Default()
	}
	return &Composer{gen: gen, maxGroups: maxGroups, log: log}
}

// BuildPrompt lists the leading groups with their topic and source count.
func BuildPrompt(groups []*models.HeadlineGroup, maxGroups int) string {
	if len(groups) > maxGroups {
		groups = groups[:maxGroups]
	}
	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = fmt.Sprintf("- %s: %s (sources=%d)", g.Topic, g.Title, g.UniqueSources)
	}
	return "You are an impartial news editor. Create a concise, 3-6 bullet summary of today's most important " +
		"stories from these grouped headlines. Stay neutral and factual; do not speculate.\n" +
		"Return JSON with { \"title\": string, \"bullets\": string[] }.\n\n" +
		strings.Join(lines, "\n")
}

// Fallback is the deterministic overview used whenever the model's answer is
// unusable.
func Fallback(groups []*models.HeadlineGroup) *models.Overview {
	n := min(fallbackGroups, len(groups))
	bullets := make([]string, n)
	for i := 0; i < n; i++ {
		bullets[i] = fmt.Sprintf("%s: %s", groups[i].Topic, groups[i].Title)
	}
	return &models.Overview{Title: FallbackTitle, Bullets: bullets}
}

// Compose never fails: any generator error or malformed answer yields the
// fallback, and the bool reports which one was returned.
func (c *Composer) Compose(ctx context.Context, groups []*models.HeadlineGroup) (*models.Overview, bool) {
	text, err := c.gen.Generate(ctx, systemPrompt, BuildPrompt(groups, c.maxGroups))
	if err != nil {
		c.log.Warn("overview generation failed, using fallback", "error", err)
		return Fallback(groups), false
	}

	ov, ok := Decode(text)
	if !ok {
		c.log.Warn("overview output unusable, using fallback", "length", len(text))
		return Fallback(groups), false
	}
	return ov, true
}

// Decode validates the model's answer. bullets must be an array of strings
// with at least one non-blank entry; blank bullets are dropped and at most
// MaxBullets are kept. A missing, blank or non-string title becomes
// FallbackTitle.
func Decode(text string) (*models.Overview, bool) {
	fields, ok := llm.ParseObject(text)
	if !ok {
		return nil, false
	}

	raw, ok := fields["bullets"]
	if !ok {
		return nil, false
	}
	var bullets []string
	if err := json.Unmarshal(raw, &bullets); err != nil {
		return nil, false
	}

	kept := make([]string, 0, MaxBullets)
	for _, b := range bullets {
		if b = strings.TrimSpace(b); b != "" && len(kept) < MaxBullets {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}

	return &models.Overview{Title: decodeTitle(fields["title"]), Bullets: kept}, true
}

func decodeTitle(raw json.RawMessage) string {
	if raw == nil {
		return FallbackTitle
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return FallbackTitle
	}
	if title = strings.TrimSpace(title); title == "" {
		return FallbackTitle
	}
	return title
}
