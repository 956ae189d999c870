package repository

import (
	"context"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
)

// StaffingRepository 值班段与抽水流水数据访问接口
type StaffingRepository interface {
	CreateDealerAssignment(ctx context.Context, assignment *model.DealerAssignment) error
	GetDealerAssignmentByID(ctx context.Context, id uint) (*model.DealerAssignment, error)
	ListDealerAssignmentsBySession(ctx context.Context, sessionID string) ([]model.DealerAssignment, error)
	UpdateDealerAssignment(ctx context.Context, assignment *model.DealerAssignment) error

	CreateRakeEntry(ctx context.Context, entry *model.RakeEntry) error
	ListRakeEntriesBySession(ctx context.Context, sessionID string) ([]model.RakeEntry, error)

	CreateWaiterAssignment(ctx context.Context, assignment *model.WaiterAssignment) error
	GetWaiterAssignmentByID(ctx context.Context, id uint) (*model.WaiterAssignment, error)
	GetActiveWaiterAssignment(ctx context.Context, sessionID string, waiterID uint) (*model.WaiterAssignment, error)
	ListWaiterAssignmentsBySession(ctx context.Context, sessionID string) ([]model.WaiterAssignment, error)
	ListActiveWaiterIDs(ctx context.Context) ([]uint, error)
	UpdateWaiterAssignment(ctx context.Context, assignment *model.WaiterAssignment) error
}

// staffingRepo StaffingRepository 的 GORM 实现
type staffingRepo struct {
	db *gorm.DB
}

// NewStaffingRepo 创建 StaffingRepository 实例
func NewStaffingRepo(db *gorm.DB) StaffingRepository {
	return &staffingRepo{db: db}
}

// ── DealerAssignment ──

func (r *staffingRepo) CreateDealerAssignment(ctx context.Context, assignment *model.DealerAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *staffingRepo) GetDealerAssignmentByID(ctx context.Context, id uint) (*model.DealerAssignment, error) {
	var assignment model.DealerAssignment
	err := r.db.WithContext(ctx).
		Preload("Dealer").
		Preload("Session").
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *staffingRepo) ListDealerAssignmentsBySession(ctx context.Context, sessionID string) ([]model.DealerAssignment, error) {
	var assignments []model.DealerAssignment
	err := r.db.WithContext(ctx).
		Preload("Dealer").
		Where("session_id = ?", sessionID).
		Order("started_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *staffingRepo) UpdateDealerAssignment(ctx context.Context, assignment *model.DealerAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// ── RakeEntry ──

func (r *staffingRepo) CreateRakeEntry(ctx context.Context, entry *model.RakeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *staffingRepo) ListRakeEntriesBySession(ctx context.Context, sessionID string) ([]model.RakeEntry, error) {
	var entries []model.RakeEntry
	err := r.db.WithContext(ctx).
		Joins("JOIN dealer_assignments ON dealer_assignments.id = rake_entries.assignment_id").
		Where("dealer_assignments.session_id = ?", sessionID).
		Order("rake_entries.id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ── WaiterAssignment ──

func (r *staffingRepo) CreateWaiterAssignment(ctx context.Context, assignment *model.WaiterAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *staffingRepo) GetWaiterAssignmentByID(ctx context.Context, id uint) (*model.WaiterAssignment, error) {
	var assignment model.WaiterAssignment
	err := r.db.WithContext(ctx).
		Preload("Waiter").
		Preload("Session").
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *staffingRepo) GetActiveWaiterAssignment(ctx context.Context, sessionID string, waiterID uint) (*model.WaiterAssignment, error) {
	var assignment model.WaiterAssignment
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND waiter_id = ? AND ended_at IS NULL", sessionID, waiterID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *staffingRepo) ListWaiterAssignmentsBySession(ctx context.Context, sessionID string) ([]model.WaiterAssignment, error) {
	var assignments []model.WaiterAssignment
	err := r.db.WithContext(ctx).
		Preload("Waiter").
		Where("session_id = ?", sessionID).
		Order("started_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *staffingRepo) ListActiveWaiterIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.WaiterAssignment{}).
		Where("ended_at IS NULL").
		Distinct().
		Pluck("waiter_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *staffingRepo) UpdateWaiterAssignment(ctx context.Context, assignment *model.WaiterAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}
