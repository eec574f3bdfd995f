package feed

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/types"
)

// fakeContentRepo serves from an in-memory slice, newest first where the
// real repo orders by recency.
type fakeContentRepo struct {
	items []*types.ContentItem
	err   error
}

func (f *fakeContentRepo) byRecency() []*types.ContentItem {
	out := make([]*types.ContentItem, len(f.items))
	copy(out, f.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func capItems(items []*types.ContentItem, limit int) []*types.ContentItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func (f *fakeContentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*types.ContentItem
	for _, item := range f.items {
		if _, ok := want[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) GetByCreators(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID, limit int) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[uuid.UUID]struct{}, len(creatorIDs))
	for _, id := range creatorIDs {
		want[id] = struct{}{}
	}
	var out []*types.ContentItem
	for _, item := range f.byRecency() {
		if _, ok := want[item.CreatorID]; ok {
			out = append(out, item)
		}
	}
	return capItems(out, limit), nil
}

func (f *fakeContentRepo) GetByTagOverlap(ctx context.Context, tx *gorm.DB, tags []string, limit int) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ContentItem
	for _, item := range f.byRecency() {
		for _, tag := range tags {
			if item.Tags.Contains(strings.ToLower(tag)) {
				out = append(out, item)
				break
			}
		}
	}
	return capItems(out, limit), nil
}

func (f *fakeContentRepo) GetHighQuality(ctx context.Context, tx *gorm.DB, minQuality float64, excludeCreators []uuid.UUID, limit int) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	excluded := make(map[uuid.UUID]struct{}, len(excludeCreators))
	for _, id := range excludeCreators {
		excluded[id] = struct{}{}
	}
	var out []*types.ContentItem
	for _, item := range f.byRecency() {
		if item.QualityScore < minQuality {
			continue
		}
		if _, ok := excluded[item.CreatorID]; ok {
			continue
		}
		out = append(out, item)
	}
	return capItems(out, limit), nil
}

func (f *fakeContentRepo) GetByKind(ctx context.Context, tx *gorm.DB, kind types.ContentKind, limit int) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ContentItem
	for _, item := range f.byRecency() {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return capItems(out, limit), nil
}

func (f *fakeContentRepo) GetRecentTop(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ContentItem
	for _, item := range f.byRecency() {
		if item.PublishedAt.After(since) {
			out = append(out, item)
		}
	}
	return capItems(out, limit), nil
}

func (f *fakeContentRepo) GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*types.ContentItem, len(f.items))
	copy(out, f.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EngagementScore > out[j].EngagementScore
	})
	return capItems(out, limit), nil
}

type fakeTrendingRepo struct {
	metrics []*types.TrendingMetric
	err     error
}

func (f *fakeTrendingRepo) TopForWindow(ctx context.Context, tx *gorm.DB, window string, limit int) ([]*types.TrendingMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*types.TrendingMetric, len(f.metrics))
	copy(out, f.metrics)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrendingScore > out[j].TrendingScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTrendingRepo) GetByContentIDs(ctx context.Context, tx *gorm.DB, window string, contentIDs []uuid.UUID) ([]*types.TrendingMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[uuid.UUID]struct{}, len(contentIDs))
	for _, id := range contentIDs {
		want[id] = struct{}{}
	}
	var out []*types.TrendingMetric
	for _, m := range f.metrics {
		if _, ok := want[m.ContentID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeInterestRepo struct {
	interests []*types.Interest
	err       error
}

func (f *fakeInterestRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, minStrength float64) ([]*types.Interest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Interest
	for _, i := range f.interests {
		if i.UserID == userID && i.Strength >= minStrength {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInterestRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, i := range f.interests {
		if i.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*types.UserProfile
	err      error
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[userID], nil
}

type fakeCompositionRepo struct {
	compositions map[uuid.UUID]*types.FeedComposition
	err          error
}

func (f *fakeCompositionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.FeedComposition, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.compositions[userID], nil
}

func (f *fakeCompositionRepo) Upsert(ctx context.Context, tx *gorm.DB, composition *types.FeedComposition) (*types.FeedComposition, error) {
	if err := composition.Validate(); err != nil {
		return nil, err
	}
	if f.compositions == nil {
		f.compositions = map[uuid.UUID]*types.FeedComposition{}
	}
	f.compositions[composition.UserID] = composition
	return composition, nil
}

type fakeCreatorMetricRepo struct {
	metrics map[uuid.UUID]*types.CreatorMetric
	err     error
}

func (f *fakeCreatorMetricRepo) GetByCreatorIDs(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID) ([]*types.CreatorMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.CreatorMetric
	for _, id := range creatorIDs {
		if m, ok := f.metrics[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeConnectionGraph struct {
	connections []*types.Connection
	blocked     map[uuid.UUID]struct{}
	err         error
}

func (f *fakeConnectionGraph) AcceptedConnections(ctx context.Context, userID uuid.UUID) ([]*types.Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.connections, nil
}

func (f *fakeConnectionGraph) BlockedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.blocked == nil {
		return map[uuid.UUID]struct{}{}, nil
	}
	return f.blocked, nil
}

func (f *fakeConnectionGraph) ConnectionCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.connections)), nil
}

// fakeHistoryStore keeps the per-day sets in plain maps.
type fakeHistoryStore struct {
	mu       sync.Mutex
	viewed   map[uuid.UUID]struct{}
	hidden   map[uuid.UUID]struct{}
	muted    map[uuid.UUID]struct{}
	sessions map[uuid.UUID]int64
	active   []uuid.UUID
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{
		viewed:   map[uuid.UUID]struct{}{},
		hidden:   map[uuid.UUID]struct{}{},
		muted:    map[uuid.UUID]struct{}{},
		sessions: map[uuid.UUID]int64{},
	}
}

func (f *fakeHistoryStore) MarkViewed(ctx context.Context, userID uuid.UUID, contentIDs ...uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range contentIDs {
		f.viewed[id] = struct{}{}
	}
	return nil
}

func (f *fakeHistoryStore) MarkHidden(ctx context.Context, userID, contentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[contentID] = struct{}{}
	return nil
}

func (f *fakeHistoryStore) MuteCreator(ctx context.Context, userID, creatorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted[creatorID] = struct{}{}
	return nil
}

func (f *fakeHistoryStore) ViewedToday(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copySet(f.viewed), nil
}

func (f *fakeHistoryStore) HiddenToday(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copySet(f.hidden), nil
}

func (f *fakeHistoryStore) MutedCreators(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copySet(f.muted), nil
}

func (f *fakeHistoryStore) SessionCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]int64, len(f.sessions))
	for k, v := range f.sessions {
		out[k] = v
	}
	return out, nil
}

func (f *fakeHistoryStore) IncrSessionCounts(ctx context.Context, userID uuid.UUID, creatorIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range creatorIDs {
		f.sessions[id]++
	}
	return nil
}

func (f *fakeHistoryStore) MarkActive(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = append(f.active, userID)
	return nil
}

func (f *fakeHistoryStore) ActiveToday(ctx context.Context, limit int64) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.active
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copySet(in map[uuid.UUID]struct{}) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

// fakeCacheStore is an in-memory CacheStore; TTLs are recorded but never
// expire within a test.
type fakeCacheStore struct {
	mu      sync.Mutex
	data    map[string]string
	failing bool
	deletes []string
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: map[string]string{}}
}

func (f *fakeCacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", false, context.DeadlineExceeded
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return context.DeadlineExceeded
	}
	f.data[key] = value
	return nil
}

func (f *fakeCacheStore) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
		f.deletes = append(f.deletes, key)
	}
	return nil
}

func (f *fakeCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	f.deletes = append(f.deletes, pattern)
	return nil
}

func (f *fakeCacheStore) MGet(ctx context.Context, keys []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, context.DeadlineExceeded
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := f.data[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func (f *fakeCacheStore) MSet(ctx context.Context, values map[string]string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return context.DeadlineExceeded
	}
	for k, v := range values {
		f.data[k] = v
	}
	return nil
}
