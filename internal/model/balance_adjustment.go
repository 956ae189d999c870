package model

import "time"

// BalanceAdjustment 余额调整表 — 对应 balance_adjustments
// 独立于牌局与桌台的带符号金额：正数为营收（如信用结清），负数为支出；
// 按创建时间计入所属工作日汇总
type BalanceAdjustment struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	Amount          int       `gorm:"not null"                           json:"amount"`
	Comment         string    `gorm:"type:text;not null"                 json:"comment"`
	CreatedByUserID uint      `gorm:"not null"                           json:"created_by_user_id"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`

	CreatedBy *User `gorm:"foreignKey:CreatedByUserID" json:"created_by,omitempty"`
}

// TableName 指定表名
func (BalanceAdjustment) TableName() string { return "balance_adjustments" }
