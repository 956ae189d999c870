package model

// Seat 座位表 — 对应 seats
// 每个牌局按桌台座位数预建座位行，现金与信用余额分账记录
type Seat struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"                          json:"id"`
	SessionID  string  `gorm:"type:varchar(36);not null;uniqueIndex:uq_seat_session_seatno" json:"session_id"`
	SeatNumber int     `gorm:"column:seat_no;not null;uniqueIndex:uq_seat_session_seatno" json:"seat_number"`
	PlayerName *string `gorm:"type:varchar(255)"                                 json:"player_name,omitempty"`
	CashTotal  int     `gorm:"not null;default:0"                                json:"cash_total"`
	CreditTotal int    `gorm:"not null;default:0"                                json:"credit_total"` // 恒 >= 0

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

// TableName 指定表名
func (Seat) TableName() string { return "seats" }

// Total 座位合计余额（现金 + 信用）
func (s *Seat) Total() int { return s.CashTotal + s.CreditTotal }

// Occupied 座位是否有玩家
func (s *Seat) Occupied() bool { return s.PlayerName != nil && *s.PlayerName != "" }
