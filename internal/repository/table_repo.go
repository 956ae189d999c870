package repository

import (
	"context"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
)

// TableRepository 桌台数据访问接口
type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id uint) (*model.Table, error)
	GetByName(ctx context.Context, name string) (*model.Table, error)
	Update(ctx context.Context, table *model.Table) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]model.Table, error)
}

// tableRepo TableRepository 的 GORM 实现
type tableRepo struct {
	db *gorm.DB
}

// NewTableRepo 创建 TableRepository 实例
func NewTableRepo(db *gorm.DB) TableRepository {
	return &tableRepo{db: db}
}

func (r *tableRepo) Create(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepo) GetByID(ctx context.Context, id uint) (*model.Table, error) {
	var table model.Table
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepo) GetByName(ctx context.Context, name string) (*model.Table, error) {
	var table model.Table
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepo) Update(ctx context.Context, table *model.Table) error {
	return r.db.WithContext(ctx).Save(table).Error
}

func (r *tableRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Table{}).Error
}

func (r *tableRepo) List(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}
