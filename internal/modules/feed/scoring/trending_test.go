package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

func testContext(now time.Time) *Context {
	return &Context{
		Connections:  map[uuid.UUID]*types.Connection{},
		CreatorStats: map[uuid.UUID]*types.CreatorMetric{},
		Trending:     map[uuid.UUID]*types.TrendingMetric{},
		Now:          now,
	}
}

func TestTrendingScoreFromMetric(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	item := &types.ContentItem{
		ID:           uuid.New(),
		Kind:         types.ContentPost,
		CreatorID:    uuid.New(),
		QualityScore: 0.5,
		PublishedAt:  now.Add(-2 * time.Hour),
	}

	sc := testContext(now)
	sc.Trending[item.ID] = &types.TrendingMetric{
		ContentID:        item.ID,
		TrendingScore:    0.6,
		VelocityScore:    0.5,
		ViralCoefficient: 0.4,
	}

	engine := NewTrendingEngine(logger.NewNop())
	got, err := engine.Score(item, sc)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	// 0.6 + 0.5*25 + 0.4*15 = 19.1, quality 0.5 keeps the multiplier at 1.0
	// and the item is inside the freshness window.
	if math.Abs(got-19.1) > 1e-9 {
		t.Fatalf("score=%v, want 19.1", got)
	}
}

func TestTrendingScoreCapsComponents(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	item := &types.ContentItem{
		ID:           uuid.New(),
		CreatorID:    uuid.New(),
		QualityScore: 0.5,
		PublishedAt:  now.Add(-time.Hour),
	}

	sc := testContext(now)
	sc.Trending[item.ID] = &types.TrendingMetric{
		ContentID:        item.ID,
		TrendingScore:    500,
		VelocityScore:    9,
		ViralCoefficient: 9,
		UniqueUsers:      100,
		EngagementCount:  100,
	}

	engine := NewTrendingEngine(logger.NewNop())
	got, err := engine.Score(item, sc)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	// 50 + 25 + 15 + 10 = 100 with all components saturated.
	if math.Abs(got-100) > 1e-9 {
		t.Fatalf("score=%v, want 100", got)
	}
}

func TestTrendingFallbackWithoutMetric(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	item := &types.ContentItem{
		ID:             uuid.New(),
		CreatorID:      uuid.New(),
		QualityScore:   0.5,
		TrendingScore:  12,
		RecentEngageCt: 100,
		PublishedAt:    now.Add(-time.Hour),
	}

	engine := NewTrendingEngine(logger.NewNop())
	got, err := engine.Score(item, testContext(now))
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	// 12 + min(100*0.5, 20) = 32.
	if math.Abs(got-32) > 1e-9 {
		t.Fatalf("score=%v, want 32", got)
	}
}

func TestTrendingDecayAfterTwelveHours(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	engine := NewTrendingEngine(logger.NewNop())

	fresh := &types.ContentItem{
		ID:            uuid.New(),
		CreatorID:     uuid.New(),
		QualityScore:  0.5,
		TrendingScore: 40,
		PublishedAt:   now.Add(-6 * time.Hour),
	}
	stale := &types.ContentItem{
		ID:            uuid.New(),
		CreatorID:     uuid.New(),
		QualityScore:  0.5,
		TrendingScore: 40,
		PublishedAt:   now.Add(-60 * time.Hour),
	}

	freshScore, err := engine.Score(fresh, testContext(now))
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	staleScore, err := engine.Score(stale, testContext(now))
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if staleScore >= freshScore {
		t.Fatalf("stale score %v should be below fresh score %v", staleScore, freshScore)
	}
}

func TestTrendingBoostMultiplier(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	item := &types.ContentItem{
		ID:            uuid.New(),
		CreatorID:     uuid.New(),
		QualityScore:  0.5,
		TrendingScore: 20,
		PublishedAt:   now.Add(-time.Hour),
	}

	engine := NewTrendingEngine(logger.NewNop())
	sc := testContext(now)
	sc.Profile = &types.UserProfile{TrendingBoost: 1.5}

	boosted, err := engine.Score(item, sc)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if math.Abs(boosted-30) > 1e-9 {
		t.Fatalf("score=%v, want 30", boosted)
	}
}
