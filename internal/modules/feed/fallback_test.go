package feed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

func TestClassifyUser(t *testing.T) {
	cases := []struct {
		name         string
		interactions int64
		connections  int64
		interests    int64
		want         UserClass
	}{
		{name: "no_signal_at_all", want: ClassNewUser},
		{name: "connections_but_few_interactions", connections: 10, interactions: 3, want: ClassLowActivity},
		{name: "interests_but_no_interactions", interests: 4, want: ClassLowActivity},
		{name: "super_connected", connections: 150, interactions: 500, want: ClassSuperConnected},
		{name: "at_threshold_is_regular", connections: 100, interactions: 500, want: ClassRegular},
		{name: "regular", connections: 20, interactions: 50, want: ClassRegular},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := &types.UserProfile{InteractionsAll: tc.interactions}
			got := ClassifyUser(profile, tc.connections, tc.interests)
			if got != tc.want {
				t.Fatalf("ClassifyUser()=%s, want %s", got, tc.want)
			}
		})
	}
}

func fallbackFixtures(now time.Time) (*fakeContentRepo, *fakeTrendingRepo) {
	content := &fakeContentRepo{}
	trending := &fakeTrendingRepo{}
	for i := 0; i < 12; i++ {
		item := &types.ContentItem{
			ID:              uuid.New(),
			Kind:            types.ContentPost,
			CreatorID:       uuid.New(),
			Tags:            types.TagList{"hiking"},
			EngagementScore: float64(100 - i),
			TrendingScore:   float64(40 - i),
			PublishedAt:     now.Add(-time.Duration(i+1) * time.Hour),
		}
		content.items = append(content.items, item)
		trending.metrics = append(trending.metrics, &types.TrendingMetric{
			ContentID:     item.ID,
			ContentKind:   item.Kind,
			Window:        "24h",
			TrendingScore: item.TrendingScore,
			ExpiresAt:     now.Add(time.Hour),
		})
	}
	return content, trending
}

func TestFallbackFillNewUser(t *testing.T) {
	now := time.Now().UTC()
	content, trending := fallbackFixtures(now)
	interests := &fakeInterestRepo{}

	s := NewFallbackSelector(content, trending, interests, "24h", logger.NewNop())
	got := s.Fill(context.Background(), uuid.New(), ClassNewUser, 10, map[uuid.UUID]struct{}{}, HistorySets{})

	if len(got) != 10 {
		t.Fatalf("len=%d, want 10", len(got))
	}
	for _, c := range got {
		if c.Breakdown.Fallback == "" {
			t.Fatal("fallback candidates must carry their tier label")
		}
		if c.Score < 0 || c.Score > 100 {
			t.Fatalf("score %v out of range", c.Score)
		}
	}
}

func TestFallbackFillLowActivityPrefersInterests(t *testing.T) {
	now := time.Now().UTC()
	content, trending := fallbackFixtures(now)
	userID := uuid.New()

	offTopic := &types.ContentItem{
		ID:              uuid.New(),
		Kind:            types.ContentPost,
		CreatorID:       uuid.New(),
		Tags:            types.TagList{"finance"},
		EngagementScore: 5000,
		PublishedAt:     now.Add(-time.Minute),
	}
	content.items = append(content.items, offTopic)

	interests := &fakeInterestRepo{interests: []*types.Interest{
		{UserID: userID, Name: "hiking", Strength: 0.1, Source: types.InterestBehavioral},
	}}

	s := NewFallbackSelector(content, trending, interests, "24h", logger.NewNop())
	got := s.Fill(context.Background(), userID, ClassLowActivity, 5, map[uuid.UUID]struct{}{}, HistorySets{})

	if len(got) != 5 {
		t.Fatalf("len=%d, want 5", len(got))
	}
	for _, c := range got {
		if c.Item.ID == offTopic.ID {
			t.Fatal("interest-weighted tier should prefer tagged content over raw popularity")
		}
	}
}

func TestFallbackFillRespectsExclusions(t *testing.T) {
	now := time.Now().UTC()
	content, trending := fallbackFixtures(now)

	// Fill mutates its exclude set as it admits, so keep a snapshot of the
	// original exclusions for the assertion.
	original := map[uuid.UUID]struct{}{}
	exclude := map[uuid.UUID]struct{}{}
	for _, item := range content.items[:6] {
		original[item.ID] = struct{}{}
		exclude[item.ID] = struct{}{}
	}

	s := NewFallbackSelector(content, trending, &fakeInterestRepo{}, "24h", logger.NewNop())
	got := s.Fill(context.Background(), uuid.New(), ClassRegular, 6, exclude, HistorySets{})

	if len(got) != 6 {
		t.Fatalf("len=%d, want 6", len(got))
	}
	for _, c := range got {
		if _, ok := original[c.Item.ID]; ok {
			t.Fatalf("excluded item %s returned by fallback", c.Item.ID)
		}
	}
}

func TestFallbackFillSkipsMutedAndBlockedCreators(t *testing.T) {
	now := time.Now().UTC()
	content, trending := fallbackFixtures(now)

	mutedCreator := content.items[0].CreatorID
	blockedCreator := content.items[1].CreatorID
	sets := HistorySets{
		Muted:   map[uuid.UUID]struct{}{mutedCreator: {}},
		Blocked: map[uuid.UUID]struct{}{blockedCreator: {}},
	}

	s := NewFallbackSelector(content, trending, &fakeInterestRepo{}, "24h", logger.NewNop())
	got := s.Fill(context.Background(), uuid.New(), ClassNewUser, 10, map[uuid.UUID]struct{}{}, sets)

	if len(got) == 0 {
		t.Fatal("fallback returned nothing")
	}
	for _, c := range got {
		if c.Item.CreatorID == mutedCreator {
			t.Fatal("muted creator surfaced through fallback")
		}
		if c.Item.CreatorID == blockedCreator {
			t.Fatal("blocked creator surfaced through fallback")
		}
	}
}

func TestFallbackEmergencySkipsOwnContent(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()
	content := &fakeContentRepo{items: []*types.ContentItem{
		{ID: uuid.New(), CreatorID: userID, PublishedAt: now.Add(-time.Hour)},
		{ID: uuid.New(), CreatorID: uuid.New(), PublishedAt: now.Add(-2 * time.Hour)},
	}}

	s := NewFallbackSelector(content, &fakeTrendingRepo{}, &fakeInterestRepo{}, "24h", logger.NewNop())
	got := s.Fill(context.Background(), userID, ClassRegular, 5, map[uuid.UUID]struct{}{}, HistorySets{})

	if len(got) != 1 {
		t.Fatalf("len=%d, want 1", len(got))
	}
	if got[0].Item.CreatorID == userID {
		t.Fatal("a user's own content must never fall back into their feed")
	}
}
