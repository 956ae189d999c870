package dto

// ── 余额调整模块 DTO ──

// CreateAdjustmentRequest 创建余额调整请求
// amount 为带符号整数：正数营收，负数支出，不允许为 0
type CreateAdjustmentRequest struct {
	Amount  int    `json:"amount"  binding:"required"`
	Comment string `json:"comment" binding:"required,max=255"`
}

// ListAdjustmentsRequest 查询余额调整参数
type ListAdjustmentsRequest struct {
	From string `form:"from" binding:"omitempty"`
	To   string `form:"to"   binding:"omitempty"`
}

// CloseCreditRequest 结清玩家信用请求
type CloseCreditRequest struct {
	SessionID  string `json:"session_id"  binding:"required"`
	SeatNumber int    `json:"seat_number" binding:"required,min=1"`
	Amount     int    `json:"amount"      binding:"required,min=1"`
}

// BalanceAdjustmentItem 余额调整响应条目
type BalanceAdjustmentItem struct {
	ID        uint   `json:"id"`
	Amount    int    `json:"amount"`
	Comment   string `json:"comment"`
	CreatedBy uint   `json:"created_by"`
	CreatedAt string `json:"created_at"`
}
