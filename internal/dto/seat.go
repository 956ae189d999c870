package dto

// ── 座位台账模块 DTO ──

// ChipMovementRequest 筹码变动请求
// amount 为带符号整数：正数买入（须带 payment_type），负数兑出
type ChipMovementRequest struct {
	SeatNumber      int     `json:"seat_number"      binding:"required,min=1"`
	Amount          int     `json:"amount"           binding:"required"`
	PaymentType     *string `json:"payment_type"     binding:"omitempty,oneof=cash credit"`
	CreditDeduction *int    `json:"credit_deduction" binding:"omitempty,min=0"`
}

// AssignPlayerRequest 设置座位玩家请求
type AssignPlayerRequest struct {
	SeatNumber  int     `json:"seat_number"  binding:"required,min=1"`
	PlayerName  *string `json:"player_name"  binding:"omitempty,max=120"`
	SkipHistory bool    `json:"skip_history"`
}

// UndoRequest 撤销座位最近一笔流水请求
type UndoRequest struct {
	SeatNumber int `json:"seat_number" binding:"required,min=1"`
}

// SeatResponse 座位状态响应
type SeatResponse struct {
	SeatNumber  int     `json:"seat_number"`
	PlayerName  *string `json:"player_name,omitempty"`
	CashTotal   int     `json:"cash_total"`
	CreditTotal int     `json:"credit_total"`
	Total       int     `json:"total"`
}

// SeatHistoryEvent 座位历史事件（筹码流水与换人记录按时间线合并）
type SeatHistoryEvent struct {
	Type            string  `json:"type"` // chip | name_change | player_left
	Amount          *int    `json:"amount,omitempty"`
	PaymentType     *string `json:"payment_type,omitempty"`
	CreditDeduction *int    `json:"credit_deduction,omitempty"`
	OldName         *string `json:"old_name,omitempty"`
	NewName         *string `json:"new_name,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
