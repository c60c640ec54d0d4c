// Package cluster groups summarized items that report the same story, using
// cosine similarity between headline embeddings.
package cluster

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/deusflow/headlines/internal/llm"
	"github.com/deusflow/headlines/internal/models"
	"github.com/deusflow/headlines/internal/taxonomy"
)

const (
	DefaultThreshold = 0.86

	// fullCorroboration is the number of distinct sources that earns a score of 1.
	fullCorroboration = 5
)

type Stats struct {
	Items    int
	Edges    int
	Groups   int
	Degraded bool
}

type Clusterer struct {
	emb       llm.Embedder
	threshold float64
	log       *slog.Logger
}

// New returns a Clusterer linking items whose similarity reaches threshold.
// Values outside [-1, 1] fall back to DefaultThreshold.
func New(emb llm.Embedder, threshold float64, log *slog.Logger) *Clusterer {
	if threshold < -1 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Clusterer{emb: emb, threshold: threshold, log: log}
}

// EmbeddingText is what gets embedded for an item.
func EmbeddingText(item models.SummarizedItem) string {
	return item.Headline + " — " + item.Title
}

// Group embeds all items in one call and returns the connected components of
// the similarity graph, largest first. If embedding fails every item becomes
// its own group.
func (c *Clusterer) Group(ctx context.Context, items []models.SummarizedItem) ([]*models.HeadlineGroup, Stats) {
	stats := Stats{Items: len(items)}
	if len(items) == 0 {
		return []*models.HeadlineGroup{}, stats
	}

	inputs := make([]string, len(items))
	for i, item := range items {
		inputs[i] = EmbeddingText(item)
	}

	var adj [][]int
	vecs, err := c.emb.Embed(ctx, inputs)
	switch {
	case err != nil:
		c.log.Warn("embedding failed, falling back to singleton groups", "items", len(items), "error", err)
		stats.Degraded = true
		adj = make([][]int, len(items))
	case len(vecs) != len(items):
		c.log.Warn("embedding count mismatch, falling back to singleton groups", "items", len(items), "vectors", len(vecs))
		stats.Degraded = true
		adj = make([][]int, len(items))
	default:
		adj, stats.Edges = Graph(vecs, c.threshold)
	}

	groups := Build(items, adj)
	stats.Groups = len(groups)
	c.log.Debug("clustered items", "items", stats.Items, "edges", stats.Edges, "groups", stats.Groups)
	return groups, stats
}

// Cosine returns the cosine similarity of a and b. An all-zero vector is
// treated as having norm 1; vectors of different dimension have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	na, nb = math.Sqrt(na), math.Sqrt(nb)
	if na == 0 {
		na = 1
	}
	if nb == 0 {
		nb = 1
	}
	return dot / (na * nb)
}

// Graph links every pair whose similarity reaches threshold and returns the
// adjacency lists along with the edge count.
func Graph(vecs [][]float32, threshold float64) ([][]int, int) {
	adj := make([][]int, len(vecs))
	edges := 0
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			if Cosine(vecs[i], vecs[j]) >= threshold {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
				edges++
			}
		}
	}
	return adj, edges
}

// Components returns the connected components of adj, each sorted by index,
// in order of their lowest index.
func Components(adj [][]int) [][]int {
	visited := make([]bool, len(adj))
	var comps [][]int
	for start := range adj {
		if visited[start] {
			continue
		}
		visited[start] = true
		stack := []int{start}
		var comp []int
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, n)
			for _, m := range adj[n] {
				if !visited[m] {
					visited[m] = true
					stack = append(stack, m)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

// Build turns the components of adj into scored groups, sorted by size
// (largest first, stable).
func Build(items []models.SummarizedItem, adj [][]int) []*models.HeadlineGroup {
	comps := Components(adj)
	groups := make([]*models.HeadlineGroup, 0, len(comps))
	for _, comp := range comps {
		groups = append(groups, buildGroup(items, adj, comp))
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Items) > len(groups[j].Items)
	})
	return groups
}

func buildGroup(items []models.SummarizedItem, adj [][]int, comp []int) *models.HeadlineGroup {
	// representative: most connections, lowest index on ties
	rep := comp[0]
	for _, idx := range comp[1:] {
		if len(adj[idx]) > len(adj[rep]) {
			rep = idx
		}
	}

	members := make([]*models.SummarizedItem, len(comp))
	for i, idx := range comp {
		members[i] = &items[idx]
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Source < members[j].Source
	})

	ids := make([]string, len(members))
	topics := make([]taxonomy.Topic, len(members))
	sources := make(map[string]struct{}, len(members))
	angles := make(map[taxonomy.Angle]int, len(taxonomy.Angles()))
	for _, a := range taxonomy.Angles() {
		angles[a] = 0
	}
	for i, m := range members {
		ids[i] = m.ID
		topics[i] = m.Topic
		sources[m.Source] = struct{}{}
		angles[taxonomy.NormalizeAngle(string(m.Angle))]++
	}

	title := items[rep].Headline
	if title == "" {
		title = items[rep].Title
	}

	return &models.HeadlineGroup{
		ID:                 models.Hash(strings.Join(ids, "-")),
		Title:              title,
		Items:              members,
		Topic:              taxonomy.MajorityTopic(topics),
		UniqueSources:      len(sources),
		CorroborationScore: Score(len(sources)),
		AngleBreakdown:     angles,
	}
}

// Score maps a distinct-source count onto [0, 1].
func Score(uniqueSources int) float64 {
	return math.Min(1, math.Max(0, float64(uniqueSources)/fullCorroboration))
}
