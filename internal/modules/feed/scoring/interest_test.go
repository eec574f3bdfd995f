package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

func TestInterestScoreMatches(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	engine := NewInterestEngine(logger.NewNop())

	cases := []struct {
		name      string
		item      *types.ContentItem
		interests []*types.Interest
		want      float64
	}{
		{
			name: "explicit_tag_match",
			item: &types.ContentItem{
				ID:          uuid.New(),
				Tags:        types.TagList{"hiking"},
				PublishedAt: now.Add(-time.Hour),
			},
			interests: []*types.Interest{
				{Name: "hiking", Source: types.InterestExplicit},
			},
			want: 40,
		},
		{
			name: "inferred_tag_scaled_by_strength",
			item: &types.ContentItem{
				ID:          uuid.New(),
				Tags:        types.TagList{"hiking"},
				PublishedAt: now.Add(-time.Hour),
			},
			interests: []*types.Interest{
				{Name: "hiking", Source: types.InterestInferred, Strength: 0.5},
			},
			want: 10,
		},
		{
			name: "title_match_counts_half",
			item: &types.ContentItem{
				ID:          uuid.New(),
				Title:       "Weekend Hiking Routes",
				PublishedAt: now.Add(-time.Hour),
			},
			interests: []*types.Interest{
				{Name: "hiking", Source: types.InterestExplicit},
			},
			want: 20,
		},
		{
			name: "category_match_adds_points",
			item: &types.ContentItem{
				ID:          uuid.New(),
				Tags:        types.TagList{"hiking"},
				Categories:  types.TagList{"outdoors"},
				PublishedAt: now.Add(-time.Hour),
			},
			interests: []*types.Interest{
				{Name: "hiking", Category: "outdoors", Source: types.InterestExplicit},
			},
			want: 55,
		},
		{
			name: "no_match",
			item: &types.ContentItem{
				ID:          uuid.New(),
				Tags:        types.TagList{"cooking"},
				PublishedAt: now.Add(-time.Hour),
			},
			interests: []*types.Interest{
				{Name: "hiking", Source: types.InterestExplicit},
			},
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := testContext(now)
			sc.Interests = tc.interests
			got, err := engine.Score(tc.item, sc)
			if err != nil {
				t.Fatalf("Score() error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("score=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestInterestScoreClampsAtHundred(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	item := &types.ContentItem{
		ID:           uuid.New(),
		Tags:         types.TagList{"hiking", "cooking", "jazz"},
		QualityScore: 1.0,
		PublishedAt:  now.Add(-time.Hour),
	}

	sc := testContext(now)
	sc.Interests = []*types.Interest{
		{Name: "hiking", Source: types.InterestExplicit},
		{Name: "cooking", Source: types.InterestExplicit},
		{Name: "jazz", Source: types.InterestExplicit},
	}

	engine := NewInterestEngine(logger.NewNop())
	got, err := engine.Score(item, sc)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if got != 100 {
		t.Fatalf("score=%v, want clamp at 100", got)
	}
}
