package feed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
	"github.com/opencircle/opencircle-backend/internal/types"
)

// UserClass buckets users by how much signal the primary pipeline has to
// work with.
type UserClass string

const (
	ClassNewUser        UserClass = "new_user"
	ClassLowActivity    UserClass = "low_activity"
	ClassSuperConnected UserClass = "super_connected"
	ClassRegular        UserClass = "regular"
)

// lowActivityThreshold is the lifetime interaction count below which a user
// with connections or interests still counts as low activity.
const lowActivityThreshold = 5

// superConnectedThreshold is the connection count above which a user is
// classified super connected.
const superConnectedThreshold = 100

// ClassifyUser derives the fallback class from graph and profile signals.
func ClassifyUser(profile *types.UserProfile, connectionCount, interestCount int64) UserClass {
	if connectionCount == 0 && interestCount == 0 {
		return ClassNewUser
	}
	if profile != nil && profile.InteractionsAll < lowActivityThreshold {
		return ClassLowActivity
	}
	if connectionCount > superConnectedThreshold {
		return ClassSuperConnected
	}
	return ClassRegular
}

// FallbackSelector fills under-filled pages. Each tier returns whatever it
// can; only a system with no content at all yields nothing.
type FallbackSelector struct {
	log       *logger.Logger
	content   repos.ContentRepo
	trending  repos.TrendingMetricRepo
	interests repos.InterestRepo
	window    string
}

func NewFallbackSelector(content repos.ContentRepo, trending repos.TrendingMetricRepo, interests repos.InterestRepo, window string, baseLog *logger.Logger) *FallbackSelector {
	if window == "" {
		window = "24h"
	}
	return &FallbackSelector{
		log:       baseLog.With("component", "FallbackSelector"),
		content:   content,
		trending:  trending,
		interests: interests,
		window:    window,
	}
}

// Fill returns up to need candidates not already in exclude. The class
// picks the generator; anything still missing afterwards comes from the
// emergency path, which ignores view history entirely. Muted and blocked
// creators stay out even here.
func (s *FallbackSelector) Fill(ctx context.Context, userID uuid.UUID, class UserClass, need int, exclude map[uuid.UUID]struct{}, sets HistorySets) []*Candidate {
	if need <= 0 {
		return nil
	}

	var items []*types.ContentItem
	switch class {
	case ClassNewUser:
		items = s.trendingAndPopular(ctx, need)
	case ClassLowActivity:
		items = s.interestWeighted(ctx, userID, need)
	default:
		items = s.emergency(ctx, need)
	}

	out := s.toCandidates(items, userID, string(class), need, exclude, sets)
	if len(out) < need {
		extra := s.toCandidates(s.emergency(ctx, need*overfetchFactor), userID, "emergency", need-len(out), exclude, sets)
		out = append(out, extra...)
	}
	return out
}

func (s *FallbackSelector) trendingAndPopular(ctx context.Context, need int) []*types.ContentItem {
	var items []*types.ContentItem
	metrics, err := s.trending.TopForWindow(ctx, nil, s.window, need*overfetchFactor)
	if err != nil {
		s.log.Warn("fallback trending fetch failed", "error", err)
	} else {
		ids := make([]uuid.UUID, 0, len(metrics))
		for _, m := range metrics {
			ids = append(ids, m.ContentID)
		}
		trending, err := s.content.GetByIDs(ctx, nil, ids)
		if err != nil {
			s.log.Warn("fallback trending content fetch failed", "error", err)
		} else {
			items = trending
		}
	}
	popular, err := s.content.GetPopular(ctx, nil, need*overfetchFactor)
	if err != nil {
		s.log.Warn("fallback popular fetch failed", "error", err)
	} else {
		items = append(items, popular...)
	}
	return items
}

func (s *FallbackSelector) interestWeighted(ctx context.Context, userID uuid.UUID, need int) []*types.ContentItem {
	var names []string
	if s.interests != nil {
		// No strength floor here: for low-activity users even weak
		// interests beat generic popularity.
		ints, err := s.interests.GetByUserID(ctx, nil, userID, 0)
		if err != nil {
			s.log.Warn("fallback interest load failed", "error", err, "user_id", userID)
		}
		for _, interest := range ints {
			names = append(names, interest.Name)
		}
	}
	if len(names) > 0 {
		items, err := s.content.GetByTagOverlap(ctx, nil, names, need*overfetchFactor)
		if err == nil && len(items) > 0 {
			return items
		}
		if err != nil {
			s.log.Warn("fallback interest content fetch failed", "error", err)
		}
	}
	items, err := s.content.GetPopular(ctx, nil, need*overfetchFactor)
	if err != nil {
		s.log.Warn("fallback popular fetch failed", "error", err)
		return nil
	}
	return items
}

// emergency is the last resort: plain recency plus engagement, no view
// history filtering at all.
func (s *FallbackSelector) emergency(ctx context.Context, need int) []*types.ContentItem {
	since := time.Now().UTC().Add(-7 * 24 * time.Hour)
	items, err := s.content.GetRecentTop(ctx, nil, since, need)
	if err != nil {
		s.log.Warn("emergency fallback fetch failed", "error", err)
		return nil
	}
	if len(items) == 0 {
		// Even recency can be empty on a brand new deployment.
		items, err = s.content.GetPopular(ctx, nil, need)
		if err != nil {
			s.log.Warn("emergency popular fetch failed", "error", err)
			return nil
		}
	}
	return items
}

func (s *FallbackSelector) toCandidates(items []*types.ContentItem, userID uuid.UUID, label string, need int, exclude map[uuid.UUID]struct{}, sets HistorySets) []*Candidate {
	out := make([]*Candidate, 0, need)
	for _, item := range items {
		if len(out) >= need {
			break
		}
		if item == nil || item.CreatorID == userID {
			continue
		}
		if creatorExcluded(item.CreatorID, sets) {
			continue
		}
		if _, ok := exclude[item.ID]; ok {
			continue
		}
		exclude[item.ID] = struct{}{}
		score := clampTo100(item.EngagementScore*0.1 + item.TrendingScore)
		out = append(out, &Candidate{
			Item:   item,
			Bucket: types.BucketTrending,
			Score:  score,
			Breakdown: types.ScoreBreakdown{
				Bucket:   types.BucketTrending,
				Score:    score,
				Fallback: label,
			},
		})
	}
	return out
}

func clampTo100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
