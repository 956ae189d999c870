package model

import "time"

// ChipEntry 筹码流水表 — 对应 chip_entries
// 金额为带符号整数：正数买入（须标注支付方式），负数兑出
type ChipEntry struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"                               json:"id"`
	SessionID       string    `gorm:"type:varchar(36);not null;index:ix_chip_entries_session_seat" json:"session_id"`
	SeatNo          int       `gorm:"not null;index:ix_chip_entries_session_seat"            json:"seat_no"`
	Amount          int       `gorm:"not null"                                               json:"amount"`
	PaymentType     *string   `gorm:"type:varchar(16)"                                       json:"payment_type,omitempty"` // cash | credit，仅买入时有值
	CreditDeduction int       `gorm:"not null;default:0"                                     json:"credit_deduction"`       // 兑出时从信用余额扣减的部分
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                     json:"created_at"`
	CreatedByUserID *uint     `json:"created_by_user_id,omitempty"`

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

// TableName 指定表名
func (ChipEntry) TableName() string { return "chip_entries" }

// IsBuyIn 是否为买入流水
func (e *ChipEntry) IsBuyIn() bool { return e.Amount > 0 }

// SeatNameChange 座位玩家变更记录表 — 对应 seat_name_changes
// 记录换人与离座事件，供历史回看
type SeatNameChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	SessionID       string    `gorm:"type:varchar(36);not null;index:ix_seat_name_changes_session_seat" json:"session_id"`
	SeatNo          int       `gorm:"not null;index:ix_seat_name_changes_session_seat" json:"seat_no"`
	OldName         *string   `gorm:"type:varchar(255)"                  json:"old_name,omitempty"`
	NewName         *string   `gorm:"type:varchar(255)"                  json:"new_name,omitempty"`
	ChangeType      string    `gorm:"type:varchar(32);not null"          json:"change_type"` // name_change | player_left
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedByUserID *uint     `json:"created_by_user_id,omitempty"`

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

// TableName 指定表名
func (SeatNameChange) TableName() string { return "seat_name_changes" }
