package feed

import (
	"context"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// DefaultExplorationRatio is the fraction of the page reserved for trending
// backfill outside the normal composition quotas.
const DefaultExplorationRatio = 0.2

// minSizeForHistoryFilter: below this feed size exploration skips the
// viewed/hidden filter so a sparsely-filled feed stays viable.
const minSizeForHistoryFilter = 10

// ExplorationInjector appends trending items the composer did not select.
type ExplorationInjector struct {
	log      *logger.Logger
	trending repos.TrendingMetricRepo
	content  repos.ContentRepo
	window   string
	ratio    float64
}

func NewExplorationInjector(trending repos.TrendingMetricRepo, content repos.ContentRepo, window string, ratio float64, baseLog *logger.Logger) *ExplorationInjector {
	if window == "" {
		window = "24h"
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultExplorationRatio
	}
	return &ExplorationInjector{
		log:      baseLog.With("component", "ExplorationInjector"),
		trending: trending,
		content:  content,
		window:   window,
		ratio:    ratio,
	}
}

// Inject appends up to first*ratio fresh trending items, preserving id
// uniqueness. Failures leave the feed as-is.
func (e *ExplorationInjector) Inject(ctx context.Context, selected []*Candidate, first int, sets HistorySets) []*Candidate {
	count := int(float64(first) * e.ratio)
	if count <= 0 || e.trending == nil || e.content == nil {
		return selected
	}

	taken := make(map[uuid.UUID]struct{}, len(selected))
	for _, c := range selected {
		taken[c.Item.ID] = struct{}{}
	}

	metrics, err := e.trending.TopForWindow(ctx, nil, e.window, count*overfetchFactor)
	if err != nil {
		e.log.Warn("exploration trending fetch failed, skipping", "error", err)
		return selected
	}
	ids := make([]uuid.UUID, 0, len(metrics))
	for _, m := range metrics {
		if _, ok := taken[m.ContentID]; ok {
			continue
		}
		ids = append(ids, m.ContentID)
	}
	items, err := e.content.GetByIDs(ctx, nil, ids)
	if err != nil {
		e.log.Warn("exploration content fetch failed, skipping", "error", err)
		return selected
	}

	applyHistory := len(selected) >= minSizeForHistoryFilter

	added := 0
	for _, item := range items {
		if added >= count {
			break
		}
		if item == nil {
			continue
		}
		if _, ok := taken[item.ID]; ok {
			continue
		}
		if creatorExcluded(item.CreatorID, sets) {
			continue
		}
		if applyHistory {
			if _, viewed := sets.Viewed[item.ID]; viewed {
				continue
			}
			if _, hidden := sets.Hidden[item.ID]; hidden {
				continue
			}
		}
		taken[item.ID] = struct{}{}
		selected = append(selected, &Candidate{
			Item:   item,
			Bucket: types.BucketTrending,
			Score:  item.TrendingScore,
			Breakdown: types.ScoreBreakdown{
				Bucket:      types.BucketTrending,
				Score:       item.TrendingScore,
				Exploration: true,
			},
		})
		added++
	}
	return selected
}
