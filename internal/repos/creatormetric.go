package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type CreatorMetricRepo interface {
	GetByCreatorIDs(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID) ([]*types.CreatorMetric, error)
}

type creatorMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreatorMetricRepo(db *gorm.DB, baseLog *logger.Logger) CreatorMetricRepo {
	repoLog := baseLog.With("repo", "CreatorMetricRepo")
	return &creatorMetricRepo{db: db, log: repoLog}
}

func (cr *creatorMetricRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *creatorMetricRepo) GetByCreatorIDs(ctx context.Context, tx *gorm.DB, creatorIDs []uuid.UUID) ([]*types.CreatorMetric, error) {
	var results []*types.CreatorMetric
	if len(creatorIDs) == 0 {
		return results, nil
	}
	if err := cr.conn(tx).WithContext(ctx).
		Where("creator_id IN ?", creatorIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
