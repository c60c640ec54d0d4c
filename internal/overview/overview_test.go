package overview

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/models"
	"github.com/deusflow/headlines/internal/taxonomy"
)

type generatorFunc func(ctx context.Context, system, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

func reply(text string, err error) generatorFunc {
	return func(context.Context, string, string) (string, error) { return text, err }
}

func makeGroups(n int) []*models.HeadlineGroup {
	groups := make([]*models.HeadlineGroup, n)
	for i := range groups {
		groups[i] = &models.HeadlineGroup{
			Title:         fmt.Sprintf("Story %d", i),
			Topic:         taxonomy.TopicWorld,
			UniqueSources: n - i,
		}
	}
	return groups
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(makeGroups(20), 12)
	assert.Contains(t, prompt, "- World: Story 0 (sources=20)")
	assert.Contains(t, prompt, "- World: Story 11 (sources=9)")
	assert.NotContains(t, prompt, "Story 12")
	assert.Contains(t, prompt, `"bullets": string[]`)
}

func TestFallback(t *testing.T) {
	ov := Fallback(makeGroups(8))
	assert.Equal(t, FallbackTitle, ov.Title)
	require.Len(t, ov.Bullets, 5)
	assert.Equal(t, "World: Story 0", ov.Bullets[0])

	ov = Fallback(makeGroups(2))
	assert.Len(t, ov.Bullets, 2)

	ov = Fallback(nil)
	assert.Equal(t, FallbackTitle, ov.Title)
	assert.NotNil(t, ov.Bullets)
	assert.Empty(t, ov.Bullets)
}

func TestCompose(t *testing.T) {
	groups := makeGroups(3)

	tests := []struct {
		name         string
		gen          generatorFunc
		wantFallback bool
		wantTitle    string
		wantBullets  int
	}{
		{"valid", reply(`{"title":"Morning brief","bullets":["a","b","c"]}`, nil), false, "Morning brief", 3},
		{"fenced with prose", reply("Here:\n```json\n{\"bullets\":[\"a\"]}\n```", nil), false, FallbackTitle, 1},
		{"too many bullets", reply(`{"title":"T","bullets":["1","2","3","4","5","6","7","8"]}`, nil), false, "T", MaxBullets},
		{"blank bullets dropped", reply(`{"title":"T","bullets":["a"," ",""]}`, nil), false, "T", 1},
		{"non-string title", reply(`{"title":7,"bullets":["a"]}`, nil), false, FallbackTitle, 1},
		{"blank title", reply(`{"title":"  ","bullets":["a"]}`, nil), false, FallbackTitle, 1},
		{"empty string", reply("", nil), true, FallbackTitle, 3},
		{"bullets not an array", reply(`{"title":"T","bullets":"not an array"}`, nil), true, FallbackTitle, 3},
		{"bullets not strings", reply(`{"title":"T","bullets":[1,2]}`, nil), true, FallbackTitle, 3},
		{"missing bullets", reply(`{"title":"T"}`, nil), true, FallbackTitle, 3},
		{"empty bullets", reply(`{"title":"T","bullets":[]}`, nil), true, FallbackTitle, 3},
		{"only blank bullets", reply(`{"bullets":[" ",""]}`, nil), true, FallbackTitle, 3},
		{"null bullets", reply(`{"title":"T","bullets":null}`, nil), true, FallbackTitle, 3},
		{"generator error", reply("", errors.New("boom")), true, FallbackTitle, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov, fromModel := New(tt.gen, 12, logger.Discard()).Compose(context.Background(), groups)
			require.NotNil(t, ov)
			assert.Equal(t, !tt.wantFallback, fromModel)
			assert.Equal(t, tt.wantTitle, ov.Title)
			assert.Len(t, ov.Bullets, tt.wantBullets)
		})
	}
}

func TestCompose_UsesSystemPrompt(t *testing.T) {
	var gotSystem, gotPrompt string
	gen := generatorFunc(func(_ context.Context, system, prompt string) (string, error) {
		gotSystem, gotPrompt = system, prompt
		return `{"title":"T","bullets":["x"]}`, nil
	})
	_, _ = New(gen, 0, nil).Compose(context.Background(), makeGroups(1))
	assert.Contains(t, gotSystem, "3-6 neutral, factual bullets")
	assert.Contains(t, gotPrompt, "Story 0")
}
