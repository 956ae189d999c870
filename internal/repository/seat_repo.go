package repository

import (
	"context"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
)

// SeatRepository 座位数据访问接口
type SeatRepository interface {
	BatchCreate(ctx context.Context, seats []model.Seat) error
	GetByID(ctx context.Context, id uint) (*model.Seat, error)
	GetBySessionAndNumber(ctx context.Context, sessionID string, seatNumber int) (*model.Seat, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Seat, error)
	Update(ctx context.Context, seat *model.Seat) error
}

// seatRepo SeatRepository 的 GORM 实现
type seatRepo struct {
	db *gorm.DB
}

// NewSeatRepo 创建 SeatRepository 实例
func NewSeatRepo(db *gorm.DB) SeatRepository {
	return &seatRepo{db: db}
}

func (r *seatRepo) BatchCreate(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *seatRepo) GetByID(ctx context.Context, id uint) (*model.Seat, error) {
	var seat model.Seat
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) GetBySessionAndNumber(ctx context.Context, sessionID string, seatNumber int) (*model.Seat, error) {
	var seat model.Seat
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND seat_no = ?", sessionID, seatNumber).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Seat, error) {
	var seats []model.Seat
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seat_no ASC").
		Find(&seats).Error
	if err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *seatRepo) Update(ctx context.Context, seat *model.Seat) error {
	return r.db.WithContext(ctx).Save(seat).Error
}
