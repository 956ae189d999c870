package model

// Table 桌台表 — 对应 tables
type Table struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"                json:"id"`
	Name       string `gorm:"type:varchar(120);not null;uniqueIndex"  json:"name"`
	SeatsCount int    `gorm:"not null;default:10"                     json:"seats_count"` // 1..60
	BaseModel

	// 关联
	Sessions []Session `gorm:"foreignKey:TableID" json:"sessions,omitempty"`
}

// TableName 指定表名
func (Table) TableName() string { return "tables" }
