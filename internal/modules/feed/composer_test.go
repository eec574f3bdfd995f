package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

func makeCandidate(creator uuid.UUID, kind types.ContentKind, connected bool, score float64, age time.Duration) *Candidate {
	return &Candidate{
		Item: &types.ContentItem{
			ID:          uuid.New(),
			Kind:        kind,
			CreatorID:   creator,
			PublishedAt: time.Now().UTC().Add(-age),
		},
		Bucket:    types.BucketPersonal,
		Connected: connected,
		Score:     score,
	}
}

func TestComposeRespectsCreatorCap(t *testing.T) {
	creator := uuid.New()
	var pool []*Candidate
	for i := 0; i < 10; i++ {
		pool = append(pool, makeCandidate(creator, types.ContentPost, true, float64(90-i), time.Duration(i)*time.Hour))
	}
	// Enough other creators to fill the rest of the page.
	for i := 0; i < 10; i++ {
		pool = append(pool, makeCandidate(uuid.New(), types.ContentPost, false, float64(50-i), time.Duration(i)*time.Hour))
	}

	composer := NewComposer(ComposerConfig{}, logger.NewNop())
	got := composer.Compose(pool, 10, nil)

	perCreator := map[uuid.UUID]int{}
	for _, c := range got {
		perCreator[c.Item.CreatorID]++
	}
	if perCreator[creator] > DefaultCreatorCap {
		t.Fatalf("creator appears %d times, cap is %d", perCreator[creator], DefaultCreatorCap)
	}
	if len(got) != 10 {
		t.Fatalf("len=%d, want 10", len(got))
	}
}

func TestComposeHonorsSessionLimit(t *testing.T) {
	creator := uuid.New()
	pool := []*Candidate{
		makeCandidate(creator, types.ContentPost, true, 90, time.Hour),
	}
	// The creator's remaining items score below every alternative, so the
	// top-up pass never needs them.
	for i := 0; i < 4; i++ {
		pool = append(pool, makeCandidate(creator, types.ContentPost, true, float64(10-i), time.Duration(i+2)*time.Hour))
	}
	for i := 0; i < 12; i++ {
		pool = append(pool, makeCandidate(uuid.New(), types.ContentPost, false, float64(50-i), time.Duration(i)*time.Hour))
	}

	// The creator already appeared 4 times today; one admission is left
	// before the session limit of 5, and the creator cap still allows 2.
	sessionCounts := map[uuid.UUID]int64{creator: 4}

	composer := NewComposer(ComposerConfig{}, logger.NewNop())
	got := composer.Compose(pool, 10, sessionCounts)

	count := 0
	for _, c := range got {
		if c.Item.CreatorID == creator {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("creator admitted %d times, want 1 (session limit)", count)
	}
}

func TestComposeNoDuplicateIDs(t *testing.T) {
	shared := makeCandidate(uuid.New(), types.ContentPost, true, 80, time.Hour)
	dup := &Candidate{Item: shared.Item, Bucket: types.BucketTrending, Score: 70}

	pool := []*Candidate{shared, dup}
	for i := 0; i < 8; i++ {
		pool = append(pool, makeCandidate(uuid.New(), types.ContentPost, i%2 == 0, float64(60-i), time.Duration(i)*time.Hour))
	}

	composer := NewComposer(ComposerConfig{}, logger.NewNop())
	got := composer.Compose(pool, 10, nil)

	seen := map[uuid.UUID]struct{}{}
	for _, c := range got {
		if _, ok := seen[c.Item.ID]; ok {
			t.Fatalf("duplicate item %s in composed page", c.Item.ID)
		}
		seen[c.Item.ID] = struct{}{}
	}
}

func TestComposeConnectedShare(t *testing.T) {
	var pool []*Candidate
	for i := 0; i < 20; i++ {
		pool = append(pool, makeCandidate(uuid.New(), types.ContentPost, true, float64(90-i), time.Duration(i)*time.Hour))
	}
	for i := 0; i < 20; i++ {
		pool = append(pool, makeCandidate(uuid.New(), types.ContentPost, false, float64(90-i), time.Duration(i)*time.Hour))
	}

	composer := NewComposer(ComposerConfig{ConnectedRatio: 0.6}, logger.NewNop())
	got := composer.Compose(pool, 10, nil)

	connected := 0
	for _, c := range got {
		if c.Connected {
			connected++
		}
	}
	if connected != 6 {
		t.Fatalf("connected count=%d, want 6 of 10", connected)
	}
}

func TestComposeCapsAtFirst(t *testing.T) {
	var pool []*Candidate
	for i := 0; i < 50; i++ {
		pool = append(pool, makeCandidate(uuid.New(), types.ContentPost, i%2 == 0, float64(i), time.Duration(i)*time.Minute))
	}
	composer := NewComposer(ComposerConfig{}, logger.NewNop())
	if got := composer.Compose(pool, 15, nil); len(got) != 15 {
		t.Fatalf("len=%d, want 15", len(got))
	}
	if got := composer.Compose(nil, 15, nil); got != nil {
		t.Fatalf("empty pool should compose to nil, got %d", len(got))
	}
}

func TestInterleaveBreaksCreatorRuns(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	pool := []*Candidate{
		makeCandidate(a, types.ContentPost, true, 90, time.Hour),
		makeCandidate(a, types.ContentPost, true, 89, 2*time.Hour),
		makeCandidate(b, types.ContentCommunity, true, 50, time.Hour),
		makeCandidate(b, types.ContentCommunity, true, 49, 2*time.Hour),
	}

	composer := NewComposer(ComposerConfig{}, logger.NewNop())
	got := composer.Compose(pool, 4, nil)
	if len(got) != 4 {
		t.Fatalf("len=%d, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Item.CreatorID == got[i-1].Item.CreatorID {
			t.Fatalf("adjacent items %d and %d share a creator despite alternatives", i-1, i)
		}
	}
}
