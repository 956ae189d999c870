package model

import "time"

// DealerAssignment 荷官值班段表 — 对应 dealer_assignments
// 同一牌局内荷官值班段互斥：任意时刻至多一段未结束（EndTime 为空）
type DealerAssignment struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"           json:"id"`
	SessionID string     `gorm:"type:varchar(36);not null;index"    json:"session_id"`
	DealerID  uint       `gorm:"not null;index"                     json:"dealer_id"`
	StartTime time.Time  `gorm:"column:started_at;not null"         json:"started_at"`
	EndTime   *time.Time `gorm:"column:ended_at"                    json:"ended_at,omitempty"`

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Dealer  *User    `gorm:"foreignKey:DealerID"  json:"dealer,omitempty"`
}

// TableName 指定表名
func (DealerAssignment) TableName() string { return "dealer_assignments" }

// Active 值班段是否仍在进行
func (a *DealerAssignment) Active() bool { return a.EndTime == nil }

// RakeEntry 抽水流水表 — 对应 rake_entries
// 金额恒为正，归属于某一荷官值班段
type RakeEntry struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	AssignmentID    uint      `gorm:"not null;index"                     json:"assignment_id"`
	Amount          int       `gorm:"not null"                           json:"amount"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedByUserID *uint     `json:"created_by_user_id,omitempty"`

	Assignment *DealerAssignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
}

// TableName 指定表名
func (RakeEntry) TableName() string { return "rake_entries" }

// WaiterAssignment 服务员值班段表 — 对应 waiter_assignments
// 服务员可同时服务多桌，跨牌局的重叠时段计薪时合并去重
type WaiterAssignment struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"           json:"id"`
	SessionID string     `gorm:"type:varchar(36);not null;index"    json:"session_id"`
	WaiterID  uint       `gorm:"not null;index"                     json:"waiter_id"`
	StartTime time.Time  `gorm:"column:started_at;not null"         json:"started_at"`
	EndTime   *time.Time `gorm:"column:ended_at"                    json:"ended_at,omitempty"`

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Waiter  *User    `gorm:"foreignKey:WaiterID"  json:"waiter,omitempty"`
}

// TableName 指定表名
func (WaiterAssignment) TableName() string { return "waiter_assignments" }

// Active 值班段是否仍在进行
func (a *WaiterAssignment) Active() bool { return a.EndTime == nil }
