package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User    UserRepository
	Table   TableRepository
	Session SessionRepository
	Seat    SeatRepository
	Chip    ChipEntryRepository
	Staff   StaffingRepository
	Balance BalanceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		User:    NewUserRepo(db),
		Table:   NewTableRepo(db),
		Session: NewSessionRepo(db),
		Seat:    NewSeatRepo(db),
		Chip:    NewChipEntryRepo(db),
		Staff:   NewStaffingRepo(db),
		Balance: NewBalanceRepo(db),
	}
}

// Transaction 在单个数据库事务中执行 fn，fn 收到绑定事务连接的 Repository
// db 为空时（单测注入 mock 仓储的场景）直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// WithMocks 构造注入自定义仓储实现的聚合（单元测试用）
func WithMocks(user UserRepository, table TableRepository, session SessionRepository,
	seat SeatRepository, chip ChipEntryRepository, staff StaffingRepository,
	balance BalanceRepository) *Repository {
	return &Repository{
		User:    user,
		Table:   table,
		Session: session,
		Seat:    seat,
		Chip:    chip,
		Staff:   staff,
		Balance: balance,
	}
}
