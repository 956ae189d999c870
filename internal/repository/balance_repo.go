package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
)

// BalanceRepository 余额调整数据访问接口
type BalanceRepository interface {
	Create(ctx context.Context, adjustment *model.BalanceAdjustment) error
	List(ctx context.Context) ([]model.BalanceAdjustment, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]model.BalanceAdjustment, error)
}

// balanceRepo BalanceRepository 的 GORM 实现
type balanceRepo struct {
	db *gorm.DB
}

// NewBalanceRepo 创建 BalanceRepository 实例
func NewBalanceRepo(db *gorm.DB) BalanceRepository {
	return &balanceRepo{db: db}
}

func (r *balanceRepo) Create(ctx context.Context, adjustment *model.BalanceAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *balanceRepo) List(ctx context.Context) ([]model.BalanceAdjustment, error) {
	var adjustments []model.BalanceAdjustment
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (r *balanceRepo) ListByRange(ctx context.Context, from, to time.Time) ([]model.BalanceAdjustment, error) {
	var adjustments []model.BalanceAdjustment
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}
