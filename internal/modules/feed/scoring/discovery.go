package scoring

import (
	"fmt"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// discoveryEngine surfaces high-quality content from creators the user is
// not connected to. Small creators get a diversity bonus and a bounded
// random jitter keeps the pool rotating.
type discoveryEngine struct {
	log *logger.Logger
}

func NewDiscoveryEngine(baseLog *logger.Logger) Engine {
	return &discoveryEngine{log: baseLog.With("engine", "discovery")}
}

func (e *discoveryEngine) Name() string {
	return string(types.BucketDiscovery)
}

func (e *discoveryEngine) Score(item *types.ContentItem, sc *Context) (float64, error) {
	if item == nil || sc == nil {
		return 0, fmt.Errorf("discovery engine: nil input")
	}

	score := item.QualityScore * 30
	score += min2(item.EngagementScore*0.2, 20)

	followerCount := int64(0)
	if stats := sc.CreatorStats[item.CreatorID]; stats != nil {
		followerCount = stats.FollowerCount
	}
	switch {
	case followerCount < 1_000:
		score += 15
	case followerCount < 10_000:
		score += 10
	default:
		score += 5
	}

	score += contentTypeBonus(item.Kind)

	age := sc.Now.Sub(item.PublishedAt)
	switch {
	case age.Hours() <= 24:
		score += 15
	case age.Hours() <= 168:
		score += 10
	default:
		score += 5
	}

	if sc.Rand != nil {
		score += sc.Rand.Float64() * 10
	}

	if sc.Profile != nil && sc.Profile.DiscoveryBoost > 0 {
		score *= sc.Profile.DiscoveryBoost
	}

	return clampScore(score), nil
}

func contentTypeBonus(kind types.ContentKind) float64 {
	switch kind {
	case types.ContentCommunity:
		return 8
	case types.ContentPost:
		return 5
	case types.ContentProduct:
		return 3
	default:
		return 0
	}
}
