package model

import "time"

// ── 业务常量 ──

// 牌局状态
const (
	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)

// 付款方式
const (
	PaymentTypeCash   = "cash"
	PaymentTypeCredit = "credit"
)

// 座位历史记录类型
const (
	ChangeTypeNameChange = "name_change"
	ChangeTypePlayerLeft = "player_left"
)

// 用户角色
const (
	RoleSuperadmin = "superadmin"
	RoleTableAdmin = "table_admin"
	RoleDealer     = "dealer"
	RoleWaiter     = "waiter"
)

// BaseModel 通用审计字段（桌台/用户等主档嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
