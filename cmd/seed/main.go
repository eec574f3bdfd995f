// Command seed loads a YAML fixture file into Postgres for local
// development. It writes the read-side tables the feed composes from, which
// production receives from the content and analytics collaborators.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opencircle/opencircle-backend/internal/db"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type fixtures struct {
	Content      []types.ContentItem     `yaml:"content"`
	Profiles     []types.UserProfile     `yaml:"profiles"`
	Interests    []types.Interest        `yaml:"interests"`
	Trending     []types.TrendingMetric  `yaml:"trending"`
	Creators     []types.CreatorMetric   `yaml:"creators"`
	Compositions []types.FeedComposition `yaml:"compositions"`
}

func main() {
	path := "fixtures.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read fixture file", "path", path, "error", err)
		os.Exit(1)
	}
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		log.Error("Failed to parse fixture file", "path", path, "error", err)
		os.Exit(1)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Failed to init postgres", "error", err)
		os.Exit(1)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Error("Failed to migrate", "error", err)
		os.Exit(1)
	}
	theDB := pg.DB()

	now := time.Now().UTC()
	for i := range fx.Content {
		if fx.Content[i].PublishedAt.IsZero() {
			fx.Content[i].PublishedAt = now
		}
	}
	for i := range fx.Trending {
		if fx.Trending[i].ExpiresAt.IsZero() {
			fx.Trending[i].ExpiresAt = now.Add(24 * time.Hour)
		}
	}

	seed := func(label string, count int, create func() error) {
		if count == 0 {
			return
		}
		if err := create(); err != nil {
			log.Error("Seed failed", "table", label, "error", err)
			os.Exit(1)
		}
		log.Info("Seeded", "table", label, "rows", count)
	}

	seed("content_item", len(fx.Content), func() error { return theDB.Create(&fx.Content).Error })
	seed("user_profile", len(fx.Profiles), func() error { return theDB.Create(&fx.Profiles).Error })
	seed("interest", len(fx.Interests), func() error { return theDB.Create(&fx.Interests).Error })
	seed("trending_metric", len(fx.Trending), func() error { return theDB.Create(&fx.Trending).Error })
	seed("creator_metric", len(fx.Creators), func() error { return theDB.Create(&fx.Creators).Error })
	seed("feed_composition", len(fx.Compositions), func() error { return theDB.Create(&fx.Compositions).Error })
}
