package feed

import (
	"context"
	"time"

	rediscl "github.com/opencircle/opencircle-backend/internal/clients/redis"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
)

const (
	defaultWarmInterval = 5 * time.Minute
	warmUserBatch       = 50
	warmPageSize        = 20
)

// Warmer is the background maintenance loop: it refreshes the trending
// snapshot and pre-computes first pages for recently active users. It only
// overwrites identically keyed cache values, so racing live traffic is safe,
// and it never runs on the request path.
type Warmer struct {
	log      *logger.Logger
	pipeline *Pipeline
	trending repos.TrendingMetricRepo
	history  rediscl.HistoryStore
	window   string
	interval time.Duration
}

func NewWarmer(pipeline *Pipeline, trending repos.TrendingMetricRepo, history rediscl.HistoryStore, window string, interval time.Duration, baseLog *logger.Logger) *Warmer {
	if window == "" {
		window = "24h"
	}
	if interval <= 0 {
		interval = defaultWarmInterval
	}
	if trending != nil && pipeline != nil && pipeline.cache != nil {
		trending = newCachedTrendingRepo(trending, pipeline.cache)
	}
	return &Warmer{
		log:      baseLog.With("component", "FeedWarmer"),
		pipeline: pipeline,
		trending: trending,
		history:  history,
		window:   window,
		interval: interval,
	}
}

// Start launches the loop; it stops when ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) {
	if w == nil || w.pipeline == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *Warmer) runOnce(ctx context.Context) {
	start := time.Now()

	// Reading through the cached repo repopulates the snapshot once the
	// TTL has lapsed.
	if w.trending != nil {
		if _, err := w.trending.TopForWindow(ctx, nil, w.window, trendingSnapshotSize); err != nil {
			w.log.Warn("trending refresh failed", "error", err)
		}
	}

	if w.history == nil {
		return
	}
	users, err := w.history.ActiveToday(ctx, warmUserBatch)
	if err != nil {
		w.log.Warn("active user load failed, skipping warm-up", "error", err)
		return
	}
	warmed := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		_ = w.pipeline.Page(ctx, userID, warmPageSize, "")
		warmed++
	}
	w.log.Debug("feed warm-up pass done",
		"users", warmed, "elapsed_ms", time.Since(start).Milliseconds())
}
