package dto

// ── 桌台模块 DTO ──

// CreateTableRequest 创建桌台请求
type CreateTableRequest struct {
	Name       string `json:"name"        binding:"required,min=1,max=120"`
	SeatsCount int    `json:"seats_count" binding:"omitempty,min=1,max=60"`
}

// UpdateTableRequest 更新桌台请求
type UpdateTableRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=1,max=120"`
	SeatsCount *int    `json:"seats_count" binding:"omitempty,min=1,max=60"`
}

// TableResponse 桌台信息响应
type TableResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	SeatsCount int    `json:"seats_count"`
	HasOpen    bool   `json:"has_open_session"`
	CreatedAt  string `json:"created_at"`
}
