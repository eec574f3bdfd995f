package feed

import (
	"github.com/google/uuid"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
)

const (
	// DefaultConnectedRatio is the share of the page reserved for content
	// from accepted connections.
	DefaultConnectedRatio = 0.6
	// DefaultCreatorCap bounds how often one creator appears per page.
	DefaultCreatorCap = 2
	// DefaultSessionLimit bounds how often one creator appears across a
	// user's pages in one day.
	DefaultSessionLimit = 5
)

// ComposerConfig tunes the quota and diversity pass.
type ComposerConfig struct {
	ConnectedRatio float64
	CreatorCap     int
	SessionLimit   int
}

func (c ComposerConfig) withDefaults() ComposerConfig {
	if c.ConnectedRatio <= 0 || c.ConnectedRatio > 1 {
		c.ConnectedRatio = DefaultConnectedRatio
	}
	if c.CreatorCap <= 0 {
		c.CreatorCap = DefaultCreatorCap
	}
	if c.SessionLimit <= 0 {
		c.SessionLimit = DefaultSessionLimit
	}
	return c
}

// Composer merges scored candidates into one ordered page honoring the
// connected/other split, the per-creator cap and the per-day session limit,
// then interleaves to break up same-creator and same-type runs.
type Composer struct {
	log *logger.Logger
	cfg ComposerConfig
}

func NewComposer(cfg ComposerConfig, baseLog *logger.Logger) *Composer {
	return &Composer{
		log: baseLog.With("component", "Composer"),
		cfg: cfg.withDefaults(),
	}
}

// Compose returns at most first candidates. sessionCounts carries each
// creator's appearances earlier today; admissions here count against the
// session limit on top of that.
func (cp *Composer) Compose(candidates []*Candidate, first int, sessionCounts map[uuid.UUID]int64) []*Candidate {
	if first <= 0 || len(candidates) == 0 {
		return nil
	}

	pool := dedupeByID(candidates)
	sortCandidates(pool)

	var connected, other []*Candidate
	for _, c := range pool {
		if c.Connected {
			connected = append(connected, c)
		} else {
			other = append(other, c)
		}
	}

	targetConnected := int(float64(first) * cp.cfg.ConnectedRatio)
	targetOther := first - targetConnected

	perCreator := map[uuid.UUID]int{}
	used := map[uuid.UUID]struct{}{}

	admit := func(from []*Candidate, target int, enforceSession bool) []*Candidate {
		out := make([]*Candidate, 0, target)
		for _, c := range from {
			if len(out) >= target {
				break
			}
			if _, taken := used[c.Item.ID]; taken {
				continue
			}
			creator := c.Item.CreatorID
			if perCreator[creator] >= cp.cfg.CreatorCap {
				continue
			}
			if enforceSession {
				session := sessionCounts[creator] + int64(perCreator[creator])
				if session >= int64(cp.cfg.SessionLimit) {
					continue
				}
			}
			used[c.Item.ID] = struct{}{}
			perCreator[creator]++
			out = append(out, c)
		}
		return out
	}

	selected := admit(connected, targetConnected, true)
	selected = append(selected, admit(other, targetOther, true)...)

	// Top up from whatever remains; only the creator cap applies here.
	if len(selected) < first {
		selected = append(selected, admit(pool, first-len(selected), false)...)
	}

	return cp.interleave(selected)
}

// interleave greedily picks the next candidate that differs from the
// previous item in both creator and content type, falling back to the first
// unused candidate when no safe pick exists. Terminates after exactly
// len(selected) picks.
func (cp *Composer) interleave(selected []*Candidate) []*Candidate {
	if len(selected) <= 2 {
		return selected
	}

	remaining := make([]*Candidate, len(selected))
	copy(remaining, selected)
	out := make([]*Candidate, 0, len(selected))

	var prev *Candidate
	for len(remaining) > 0 {
		pick := -1
		for i, c := range remaining {
			if prev == nil ||
				(c.Item.CreatorID != prev.Item.CreatorID && c.Item.Kind != prev.Item.Kind) {
				pick = i
				break
			}
		}
		if pick < 0 {
			// Relax to creator-only separation before giving up entirely.
			for i, c := range remaining {
				if c.Item.CreatorID != prev.Item.CreatorID {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			pick = 0
		}
		prev = remaining[pick]
		out = append(out, prev)
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}
