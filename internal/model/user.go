package model

// User 用户表 — 对应 users
// 荷官/服务员可无密码（由桌台管理员代为操作），时薪以最小筹码单位计
type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"               json:"id"`
	Username     string  `gorm:"type:varchar(120);not null;uniqueIndex" json:"username"`
	PasswordHash *string `gorm:"type:varchar(255)"                      json:"-"`
	Role         string  `gorm:"type:varchar(32);not null;index"        json:"role"` // superadmin | table_admin | dealer | waiter
	TableID      *uint   `json:"table_id,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                  json:"is_active"`
	HourlyRate   *int    `json:"hourly_rate,omitempty"`
	BaseModel

	// 关联
	Table *Table `gorm:"foreignKey:TableID" json:"table,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
