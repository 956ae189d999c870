package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
	pkgerrors "chip-ledger/backend/pkg/errors"
)

// SessionRepository 牌局数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetOpenByTable(ctx context.Context, tableID uint) (*model.Session, error)
	GetOpenByDealer(ctx context.Context, dealerID uint) (*model.Session, error)
	ListOpen(ctx context.Context) ([]model.Session, error)
	ListClosedByTable(ctx context.Context, tableID uint) ([]model.Session, error)
	ListByCreatedRange(ctx context.Context, tableID *uint, from, to time.Time) ([]model.Session, error)
	Update(ctx context.Context, session *model.Session) error
}

// sessionRepo SessionRepository 的 GORM 实现
type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Table").
		Preload("Dealer").
		Preload("Waiter").
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetOpenByTable(ctx context.Context, tableID uint) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Dealer").
		Preload("Waiter").
		Where("table_id = ? AND status = ?", tableID, model.SessionStatusOpen).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetOpenByDealer(ctx context.Context, dealerID uint) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Table").
		Where("dealer_id = ? AND status = ?", dealerID, model.SessionStatusOpen).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListOpen(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Preload("Table").
		Where("status = ?", model.SessionStatusOpen).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) ListClosedByTable(ctx context.Context, tableID uint) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, model.SessionStatusClosed).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) ListByCreatedRange(ctx context.Context, tableID *uint, from, to time.Time) ([]model.Session, error) {
	var sessions []model.Session
	db := r.db.WithContext(ctx).
		Preload("Table").
		Where("created_at >= ? AND created_at < ?", from, to)
	if tableID != nil {
		db = db.Where("table_id = ?", *tableID)
	}
	err := db.Order("created_at ASC").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update 带乐观锁的全量更新，version 不匹配时返回 ErrOptimisticLock
func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	oldVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(session).
		Where("id = ? AND version = ?", session.ID, oldVersion).
		Updates(map[string]interface{}{
			"status":        session.Status,
			"closed_at":     session.ClosedAt,
			"dealer_id":     session.DealerID,
			"waiter_id":     session.WaiterID,
			"chips_in_play": session.ChipsInPlay,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version = oldVersion + 1
	return nil
}
