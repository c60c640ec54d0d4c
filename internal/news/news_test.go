package news

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/headlines/internal/rss"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) string {
	return now.Add(-d).Format(time.RFC3339)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2025-03-10T10:00:00Z", true, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)},
		{"Mon, 10 Mar 2025 10:00:00 +0000", true, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)},
		{"Mon, 10 Mar 2025 10:00:00 GMT", true, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)},
		{"2025-03-10", true, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday-ish", false, time.Time{}},
		{"2025-13-45T99:00:00Z", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestNormalize_DropsUndatedAndStale(t *testing.T) {
	src := rss.Source{Name: "Wire", Homepage: "https://wire.example"}
	raw := []rss.RawItem{
		{Title: "fresh", Link: "https://wire.example/1", PublishedAt: ago(time.Hour)},
		{Title: "no date", Link: "https://wire.example/2"},
		{Title: "bad date", Link: "https://wire.example/3", PublishedAt: "not a date"},
		{Title: "too old", Link: "https://wire.example/4", PublishedAt: ago(8 * 24 * time.Hour)},
		{Title: "", Link: "", Summary: "s", PublishedAt: ago(2 * time.Hour)},
	}

	got := Normalize(src, raw, now, 7*24*time.Hour, 50)
	require.Len(t, got, 2)

	assert.Equal(t, "fresh", got[0].Title)
	assert.Equal(t, "Wire", got[0].Source)

	assert.Equal(t, UntitledTitle, got[1].Title)
	assert.Equal(t, "https://wire.example", got[1].URL)
	assert.Equal(t, "s", got[1].Snippet)
}

func TestNormalize_MissingLinkWithoutHomepage(t *testing.T) {
	got := Normalize(rss.Source{Name: "X"}, []rss.RawItem{{Title: "t", PublishedAt: ago(time.Minute)}}, now, time.Hour, 10)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].URL)
}

func TestNormalize_PerSourceCapAfterFilter(t *testing.T) {
	raw := []rss.RawItem{
		{Title: "old", Link: "u0", PublishedAt: ago(30 * 24 * time.Hour)},
		{Title: "a", Link: "u1", PublishedAt: ago(time.Hour)},
		{Title: "b", Link: "u2", PublishedAt: ago(2 * time.Hour)},
		{Title: "c", Link: "u3", PublishedAt: ago(3 * time.Hour)},
	}
	got := Normalize(rss.Source{Name: "S"}, raw, now, 7*24*time.Hour, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
}

func TestDedupeByURL_FirstWins(t *testing.T) {
	items := []CanonicalItem{
		{Source: "A", URL: "https://x/1", Title: "from A"},
		{Source: "B", URL: "https://x/2"},
		{Source: "C", URL: "https://x/1", Title: "from C"},
		{Source: "D", URL: ""},
	}
	got, dropped := DedupeByURL(items)
	require.Len(t, got, 2)
	assert.Equal(t, "from A", got[0].Title)
	assert.Equal(t, "https://x/2", got[1].URL)
	assert.Equal(t, 2, dropped)
}

func TestSortNewest(t *testing.T) {
	items := []CanonicalItem{
		{Title: "undated"},
		{Title: "older", Published: now.Add(-2 * time.Hour)},
		{Title: "newest", Published: now},
		{Title: "middle", Published: now.Add(-time.Hour)},
	}
	SortNewest(items)
	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"newest", "middle", "older", "undated"}, titles)
}

func TestCap(t *testing.T) {
	items := make([]CanonicalItem, 5)
	assert.Len(t, Cap(items, 3), 3)
	assert.Len(t, Cap(items, 10), 5)
	assert.Empty(t, Cap(items, 0))
}

func TestCollect(t *testing.T) {
	results := []rss.SourceResult{
		{Source: rss.Source{Name: "A"}, OK: true, Items: []rss.RawItem{
			{Title: "a1", Link: "https://s/shared", PublishedAt: ago(5 * time.Hour)},
			{Title: "a2", Link: "https://a/2", PublishedAt: ago(1 * time.Hour)},
		}},
		{Source: rss.Source{Name: "Broken"}},
		{Source: rss.Source{Name: "B"}, OK: true, Items: []rss.RawItem{
			{Title: "b1", Link: "https://s/shared", PublishedAt: ago(30 * time.Minute)},
			{Title: "b2", Link: "https://b/2", PublishedAt: ago(3 * time.Hour)},
			{Title: "b3", Link: "https://b/3"},
		}},
	}

	items, stats := Collect(results, Options{Now: now, Window: 7 * 24 * time.Hour, PerSourceLimit: 50, TotalCap: 2})

	// a1 wins the shared URL even though b1 is newer; the cap keeps the two newest.
	require.Len(t, items, 2)
	assert.Equal(t, "a2", items[0].Title)
	assert.Equal(t, "b2", items[1].Title)

	assert.Equal(t, 5, stats.Raw)
	assert.Equal(t, 4, stats.InWindow)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 2, stats.Kept)
}

func TestPaginate(t *testing.T) {
	items := make([]CanonicalItem, 25)
	for i := range items {
		items[i].URL = fmt.Sprintf("u%d", i)
	}

	p := Paginate(items, 1, 10)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalItems)
	assert.Equal(t, "u0", p.Items[0].URL)

	p = Paginate(items, 3, 10)
	assert.Len(t, p.Items, 5)
	assert.Equal(t, "u20", p.Items[0].URL)

	p = Paginate(items, 4, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 4, p.Page)

	p = Paginate(items, 1<<62, 10)
	assert.Empty(t, p.Items)
}

func TestPaginate_EmptyHasOnePage(t *testing.T) {
	p := Paginate(nil, 1, 60)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 0, p.TotalItems)
	assert.Empty(t, p.Items)
}

func TestPaginate_ClampsInputs(t *testing.T) {
	items := make([]CanonicalItem, 3)
	p := Paginate(items, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageSize)
	assert.Len(t, p.Items, 1)
	assert.Equal(t, 3, p.TotalPages)
}
