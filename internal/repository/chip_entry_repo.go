package repository

import (
	"context"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
)

// ChipEntryRepository 筹码流水与座位变更记录数据访问接口
type ChipEntryRepository interface {
	Create(ctx context.Context, entry *model.ChipEntry) error
	GetLastBySeat(ctx context.Context, sessionID string, seatNo int) (*model.ChipEntry, error)
	Delete(ctx context.Context, id uint) error
	ListBySeat(ctx context.Context, sessionID string, seatNo int) ([]model.ChipEntry, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.ChipEntry, error)

	CreateNameChange(ctx context.Context, change *model.SeatNameChange) error
	ListNameChangesBySeat(ctx context.Context, sessionID string, seatNo int) ([]model.SeatNameChange, error)
}

// chipEntryRepo ChipEntryRepository 的 GORM 实现
type chipEntryRepo struct {
	db *gorm.DB
}

// NewChipEntryRepo 创建 ChipEntryRepository 实例
func NewChipEntryRepo(db *gorm.DB) ChipEntryRepository {
	return &chipEntryRepo{db: db}
}

func (r *chipEntryRepo) Create(ctx context.Context, entry *model.ChipEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *chipEntryRepo) GetLastBySeat(ctx context.Context, sessionID string, seatNo int) (*model.ChipEntry, error) {
	var entry model.ChipEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND seat_no = ?", sessionID, seatNo).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *chipEntryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ChipEntry{}).Error
}

func (r *chipEntryRepo) ListBySeat(ctx context.Context, sessionID string, seatNo int) ([]model.ChipEntry, error) {
	var entries []model.ChipEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND seat_no = ?", sessionID, seatNo).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *chipEntryRepo) ListBySession(ctx context.Context, sessionID string) ([]model.ChipEntry, error) {
	var entries []model.ChipEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *chipEntryRepo) CreateNameChange(ctx context.Context, change *model.SeatNameChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *chipEntryRepo) ListNameChangesBySeat(ctx context.Context, sessionID string, seatNo int) ([]model.SeatNameChange, error) {
	var changes []model.SeatNameChange
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND seat_no = ?", sessionID, seatNo).
		Order("id ASC").
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}
