package app

import (
	"strings"
	"time"

	"github.com/opencircle/opencircle-backend/internal/modules/feed"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/utils"
)

type Config struct {
	Port         string
	AllowOrigins []string

	TrendingWindow string
	WarmInterval   time.Duration

	Feed      feed.PipelineConfig
	CacheTTLs feed.CacheTTLs
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)

	window := utils.GetEnv("TRENDING_WINDOW", "24h", log)
	warmIntervalSeconds := utils.GetEnvAsInt("FEED_WARM_INTERVAL", 300, log)

	connectedRatio := utils.GetEnvAsFloat("FEED_CONNECTED_RATIO", 0.6, log)
	creatorCap := utils.GetEnvAsInt("FEED_CREATOR_CAP", 2, log)
	sessionLimit := utils.GetEnvAsInt("FEED_SESSION_LIMIT", 5, log)
	explorationRatio := utils.GetEnvAsFloat("FEED_EXPLORATION_RATIO", 0.2, log)
	bucketTimeoutMS := utils.GetEnvAsInt("FEED_BUCKET_TIMEOUT_MS", 800, log)

	feedTTL := utils.GetEnvAsInt("FEED_CACHE_TTL", 1800, log)
	trendingTTL := utils.GetEnvAsInt("TRENDING_CACHE_TTL", 300, log)
	connectionsTTL := utils.GetEnvAsInt("CONNECTIONS_CACHE_TTL", 3600, log)
	engagementTTL := utils.GetEnvAsInt("ENGAGEMENT_CACHE_TTL", 600, log)

	return Config{
		Port:           port,
		AllowOrigins:   splitOrigins(origins),
		TrendingWindow: window,
		WarmInterval:   time.Duration(warmIntervalSeconds) * time.Second,
		Feed: feed.PipelineConfig{
			Window:           window,
			ConnectedRatio:   connectedRatio,
			CreatorCap:       creatorCap,
			SessionLimit:     sessionLimit,
			ExplorationRatio: explorationRatio,
			BucketTimeout:    time.Duration(bucketTimeoutMS) * time.Millisecond,
		},
		CacheTTLs: feed.CacheTTLs{
			Feed:        time.Duration(feedTTL) * time.Second,
			Trending:    time.Duration(trendingTTL) * time.Second,
			Connections: time.Duration(connectionsTTL) * time.Second,
			Engagement:  time.Duration(engagementTTL) * time.Second,
		},
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
