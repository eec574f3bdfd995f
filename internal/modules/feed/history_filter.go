package feed

import (
	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
)

// HistorySets carries the per-user daily exclusion sets loaded from the
// history store plus graph-level blocks.
type HistorySets struct {
	Viewed  map[uuid.UUID]struct{}
	Hidden  map[uuid.UUID]struct{}
	Muted   map[uuid.UUID]struct{}
	Blocked map[uuid.UUID]struct{}
}

// HistoryFilter removes already-seen and hidden items and anything from
// muted or blocked creators. When strict filtering would starve the feed it
// relaxes: only muted/blocked exclusion stays, viewed/hidden are ignored.
type HistoryFilter struct {
	log *logger.Logger
}

func NewHistoryFilter(baseLog *logger.Logger) *HistoryFilter {
	return &HistoryFilter{log: baseLog.With("component", "HistoryFilter")}
}

// looseThreshold is the point below which filtering relaxes.
func looseThreshold(first int) int {
	half := first / 2
	if half < 5 {
		return 5
	}
	return half
}

// Filter applies the exclusion sets. The boolean result reports whether
// loose mode was used.
func (f *HistoryFilter) Filter(candidates []*Candidate, sets HistorySets, first int) ([]*Candidate, bool) {
	strict := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Item == nil {
			continue
		}
		if creatorExcluded(c.Item.CreatorID, sets) {
			continue
		}
		if _, viewed := sets.Viewed[c.Item.ID]; viewed {
			continue
		}
		if _, hidden := sets.Hidden[c.Item.ID]; hidden {
			continue
		}
		strict = append(strict, c)
	}
	strict = dedupeByID(strict)
	if len(strict) >= looseThreshold(first) {
		return strict, false
	}

	// Loose mode: muted/blocked exclusion only, dedupe purely by id. This
	// keeps the feed non-empty whenever any eligible content exists.
	loose := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Item == nil {
			continue
		}
		if creatorExcluded(c.Item.CreatorID, sets) {
			continue
		}
		loose = append(loose, c)
	}
	return dedupeByID(loose), true
}

func creatorExcluded(creatorID uuid.UUID, sets HistorySets) bool {
	if _, muted := sets.Muted[creatorID]; muted {
		return true
	}
	if _, blocked := sets.Blocked[creatorID]; blocked {
		return true
	}
	return false
}
