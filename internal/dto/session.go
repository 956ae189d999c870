package dto

// ── 牌局模块 DTO ──

// OpenSessionRequest 开局请求
type OpenSessionRequest struct {
	TableID     uint   `json:"table_id"      binding:"required"`
	Date        string `json:"date"          binding:"omitempty"` // "2026-08-30"，缺省取当前工作日
	SeatsCount  *int   `json:"seats_count"   binding:"omitempty,min=1,max=60"`
	DealerID    uint   `json:"dealer_id"     binding:"required"`
	WaiterID    *uint  `json:"waiter_id"`
	ChipsInPlay int    `json:"chips_in_play" binding:"omitempty,min=0"`
}

// CloseSessionRequest 结束牌局请求
// 为仍在班的荷官补录收班抽水
type CloseSessionRequest struct {
	DealerRakes []DealerRakeItem `json:"dealer_rakes" binding:"omitempty,dive"`
}

// DealerRakeItem 收班抽水条目
type DealerRakeItem struct {
	AssignmentID uint `json:"assignment_id" binding:"required"`
	Rake         int  `json:"rake"          binding:"omitempty,min=0"`
}

// SessionResponse 牌局信息响应
type SessionResponse struct {
	ID          string  `json:"id"`
	TableID     uint    `json:"table_id"`
	TableName   string  `json:"table_name,omitempty"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ClosedAt    *string `json:"closed_at,omitempty"`
	DealerID    *uint   `json:"dealer_id,omitempty"`
	DealerName  *string `json:"dealer_name,omitempty"`
	WaiterID    *uint   `json:"waiter_id,omitempty"`
	WaiterName  *string `json:"waiter_name,omitempty"`
	ChipsInPlay int     `json:"chips_in_play"`
}

// ClosedSessionResponse 已结束牌局汇总响应
type ClosedSessionResponse struct {
	SessionResponse
	TotalBuyins   int                 `json:"total_buyins"`   // 正向流水合计
	TotalCashouts int                 `json:"total_cashouts"` // 负向流水合计（负数）
	TableRake     int                 `json:"table_rake"`     // buyins + cashouts
	SeatCredits   []SeatCreditItem    `json:"seat_credits"`
	Assignments   []AssignmentSummary `json:"assignments"`
}

// AssignmentSummary 值班段汇总（含工时与计薪）
type AssignmentSummary struct {
	AssignmentID uint    `json:"assignment_id"`
	StaffID      uint    `json:"staff_id"`
	StaffName    string  `json:"staff_name"`
	Role         string  `json:"role"` // dealer | waiter
	StartTime    string  `json:"start_time"`
	EndTime      *string `json:"end_time,omitempty"`
	Hours        float64 `json:"hours"`
	Earnings     int     `json:"earnings"`
	RakeTotal    int     `json:"rake_total,omitempty"` // 仅荷官
}

// SeatCreditItem 座位未结信用条目
type SeatCreditItem struct {
	SeatNumber        int     `json:"seat_number"`
	PlayerName        *string `json:"player_name,omitempty"`
	OutstandingCredit int     `json:"outstanding_credit"`
}

// NonCashExposureResponse 未结信用敞口响应
type NonCashExposureResponse struct {
	SessionID string           `json:"session_id"`
	Seats     []SeatCreditItem `json:"seats"`
	Total     int              `json:"total"`
}
