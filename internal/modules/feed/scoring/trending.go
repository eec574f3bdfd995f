package scoring

import (
	"fmt"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// trendingEngine scores from externally computed trending metrics. Without a
// metric for the item it falls back to the item's own trending score plus a
// bounded recent-engagement bonus.
type trendingEngine struct {
	log *logger.Logger
}

func NewTrendingEngine(baseLog *logger.Logger) Engine {
	return &trendingEngine{log: baseLog.With("engine", "trending")}
}

func (e *trendingEngine) Name() string {
	return string(types.BucketTrending)
}

func (e *trendingEngine) Score(item *types.ContentItem, sc *Context) (float64, error) {
	if item == nil || sc == nil {
		return 0, fmt.Errorf("trending engine: nil input")
	}

	score := 0.0
	if metric := sc.Trending[item.ID]; metric != nil {
		score += min2(metric.TrendingScore, 50)
		score += min2(metric.VelocityScore*25, 25)
		score += min2(metric.ViralCoefficient*15, 15)
		score += metric.DiversityRatio() * 10
	} else {
		score += item.TrendingScore
		score += min2(float64(item.RecentEngageCt)*0.5, 20)
	}

	score *= 0.8 + 0.4*item.QualityScore
	if sc.Profile != nil && sc.Profile.TrendingBoost > 0 {
		score *= sc.Profile.TrendingBoost
	}
	score *= decayFactor(item.PublishedAt, sc.Now, trendingDecayThresholdHours)

	return clampScore(score), nil
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
