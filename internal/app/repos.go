package app

import (
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/repos"
)

type Repos struct {
	Content      repos.ContentRepo
	Trending     repos.TrendingMetricRepo
	Interest     repos.InterestRepo
	UserProfile  repos.UserProfileRepo
	Composition  repos.FeedCompositionRepo
	CreatorStats repos.CreatorMetricRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Content:      repos.NewContentRepo(db, log),
		Trending:     repos.NewTrendingMetricRepo(db, log),
		Interest:     repos.NewInterestRepo(db, log),
		UserProfile:  repos.NewUserProfileRepo(db, log),
		Composition:  repos.NewFeedCompositionRepo(db, log),
		CreatorStats: repos.NewCreatorMetricRepo(db, log),
	}
}
