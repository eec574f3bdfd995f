package app

import (
	"github.com/opencircle/opencircle-backend/internal/modules/feed"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/services"
)

type Services struct {
	CacheManager *feed.CacheManager
	Pipeline     *feed.Pipeline
	Feed         services.FeedService
	Warmer       *feed.Warmer
}

func wireServices(cfg Config, log *logger.Logger, reposet Repos, clients Clients) Services {
	cacheManager := feed.NewCacheManager(clients.Cache, cfg.CacheTTLs, log)

	pipeline := feed.NewPipeline(
		cfg.Feed,
		reposet.Composition,
		reposet.Content,
		reposet.Trending,
		reposet.Interest,
		reposet.UserProfile,
		reposet.CreatorStats,
		clients.Graph,
		cacheManager,
		clients.History,
		log,
	)

	feedService := services.NewFeedService(pipeline, clients.History, clients.Bus, reposet.Composition, log)

	warmer := feed.NewWarmer(pipeline, reposet.Trending, clients.History, cfg.TrendingWindow, cfg.WarmInterval, log)

	return Services{
		CacheManager: cacheManager,
		Pipeline:     pipeline,
		Feed:         feedService,
		Warmer:       warmer,
	}
}
