package models

import (
	"hash/fnv"
	"strconv"
	"time"

	"github.com/deusflow/headlines/internal/taxonomy"
)

// SummarizedItem is one feed entry after the model rewrote its headline and
// classified it.
type SummarizedItem struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	PublishedAt string         `json:"publishedAt,omitempty"`
	Headline    string         `json:"headline"`
	Topic       taxonomy.Topic `json:"topic"`
	Angle       taxonomy.Angle `json:"angle"`
}

// HeadlineGroup is a set of items judged to report the same story.
type HeadlineGroup struct {
	ID                 string                 `json:"id"`
	Title              string                 `json:"title"`
	Items              []*SummarizedItem      `json:"items"`
	Topic              taxonomy.Topic         `json:"topic"`
	UniqueSources      int                    `json:"uniqueSources"`
	CorroborationScore float64                `json:"corroborationScore"`
	AngleBreakdown     map[taxonomy.Angle]int `json:"angleBreakdown"`
}

type Overview struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Response is the payload of one aggregation request.
type Response struct {
	Overview    *Overview        `json:"overview,omitempty"`
	Groups      []*HeadlineGroup `json:"groups"`
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	TotalItems  int              `json:"totalItems"`
	TotalPages  int              `json:"totalPages"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// Hash is a fast non-cryptographic string hash (FNV-64a, base 36).
func Hash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 36)
}

// ItemID derives a stable id from an item's URL and title.
func ItemID(url, title string) string {
	return Hash(url + "\x1f" + title)
}
