package model

import "time"

// Session 牌局表 — 对应 sessions
// 同一桌台同一时刻至多一个 open 状态的牌局（部分唯一索引兜底，业务层显式校验）
type Session struct {
	ID          string     `gorm:"type:varchar(36);primaryKey"                json:"id"`
	TableID     uint       `gorm:"not null;index:ix_sessions_table_status"    json:"table_id"`
	Date        time.Time  `gorm:"type:date;not null"                         json:"date"`
	Status      string     `gorm:"type:varchar(16);not null;default:'open';index:ix_sessions_table_status" json:"status"` // open | closed
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"   json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	DealerID    *uint      `gorm:"index"                                      json:"dealer_id,omitempty"` // 当前荷官（冗余引用，历史见 DealerAssignments）
	WaiterID    *uint      `json:"waiter_id,omitempty"`
	ChipsInPlay int        `gorm:"not null;default:0"                         json:"chips_in_play"` // 台面筹码量（信息性，随买入自动抬升）
	Version     int        `gorm:"not null;default:1"                         json:"version"`

	// 关联
	Table             *Table             `gorm:"foreignKey:TableID"    json:"table,omitempty"`
	Dealer            *User              `gorm:"foreignKey:DealerID"   json:"dealer,omitempty"`
	Waiter            *User              `gorm:"foreignKey:WaiterID"   json:"waiter,omitempty"`
	Seats             []Seat             `gorm:"foreignKey:SessionID"  json:"seats,omitempty"`
	DealerAssignments []DealerAssignment `gorm:"foreignKey:SessionID"  json:"dealer_assignments,omitempty"`
	WaiterAssignments []WaiterAssignment `gorm:"foreignKey:SessionID"  json:"waiter_assignments,omitempty"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// IsOpen 牌局是否进行中
func (s *Session) IsOpen() bool { return s.Status == SessionStatusOpen }
