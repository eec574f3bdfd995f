package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
	"github.com/opencircle/opencircle-backend/internal/types"
)

type InterestRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, minStrength float64) ([]*types.Interest, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type interestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterestRepo(db *gorm.DB, baseLog *logger.Logger) InterestRepo {
	repoLog := baseLog.With("repo", "InterestRepo")
	return &interestRepo{db: db, log: repoLog}
}

func (ir *interestRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ir.db
}

func (ir *interestRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, minStrength float64) ([]*types.Interest, error) {
	var results []*types.Interest
	if err := ir.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Where("strength >= ?", minStrength).
		Order("strength DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *interestRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := ir.conn(tx).WithContext(ctx).
		Model(&types.Interest{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
