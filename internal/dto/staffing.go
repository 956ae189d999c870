package dto

// ── 人员值班模块 DTO ──

// AddDealerRequest 新增荷官值班请求
type AddDealerRequest struct {
	DealerID uint `json:"dealer_id" binding:"required"`
}

// ReplaceDealerRequest 换班请求：结束当前值班段并立即开启新段
type ReplaceDealerRequest struct {
	NewDealerID  uint `json:"new_dealer_id" binding:"required"`
	OutgoingRake int  `json:"outgoing_rake" binding:"omitempty,min=0"`
}

// RemoveDealerRequest 荷官下班请求
type RemoveDealerRequest struct {
	AssignmentID uint `json:"assignment_id" binding:"required"`
	Rake         int  `json:"rake"          binding:"omitempty,min=0"`
}

// AddRakeRequest 录入抽水请求
type AddRakeRequest struct {
	AssignmentID uint `json:"assignment_id" binding:"required"`
	Amount       int  `json:"amount"        binding:"required,min=1"`
}

// AddWaiterRequest 新增服务员值班请求
type AddWaiterRequest struct {
	WaiterID uint `json:"waiter_id" binding:"required"`
}

// RemoveWaiterRequest 服务员下班请求
type RemoveWaiterRequest struct {
	AssignmentID uint `json:"assignment_id" binding:"required"`
}

// AssignmentResponse 值班段响应
type AssignmentResponse struct {
	ID        uint    `json:"id"`
	SessionID string  `json:"session_id"`
	StaffID   uint    `json:"staff_id"`
	StaffName string  `json:"staff_name"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time,omitempty"`
}

// RakeEntryResponse 抽水流水响应
type RakeEntryResponse struct {
	ID           uint   `json:"id"`
	AssignmentID uint   `json:"assignment_id"`
	Amount       int    `json:"amount"`
	CreatedAt    string `json:"created_at"`
}
