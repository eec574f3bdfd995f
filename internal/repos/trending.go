package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type TrendingMetricRepo interface {
	TopForWindow(ctx context.Context, tx *gorm.DB, window string, limit int) ([]*types.TrendingMetric, error)
	GetByContentIDs(ctx context.Context, tx *gorm.DB, window string, contentIDs []uuid.UUID) ([]*types.TrendingMetric, error)
}

type trendingMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrendingMetricRepo(db *gorm.DB, baseLog *logger.Logger) TrendingMetricRepo {
	repoLog := baseLog.With("repo", "TrendingMetricRepo")
	return &trendingMetricRepo{db: db, log: repoLog}
}

func (tr *trendingMetricRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return tr.db
}

func (tr *trendingMetricRepo) TopForWindow(ctx context.Context, tx *gorm.DB, window string, limit int) ([]*types.TrendingMetric, error) {
	var results []*types.TrendingMetric
	if err := tr.conn(tx).WithContext(ctx).
		Where(`"window" = ?`, window).
		Where("expires_at > ?", time.Now().UTC()).
		Order("trending_score DESC, velocity_score DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *trendingMetricRepo) GetByContentIDs(ctx context.Context, tx *gorm.DB, window string, contentIDs []uuid.UUID) ([]*types.TrendingMetric, error) {
	var results []*types.TrendingMetric
	if len(contentIDs) == 0 {
		return results, nil
	}
	if err := tr.conn(tx).WithContext(ctx).
		Where(`"window" = ?`, window).
		Where("content_id IN ?", contentIDs).
		Where("expires_at > ?", time.Now().UTC()).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
