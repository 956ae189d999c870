package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username   string `json:"username"    binding:"required,min=2,max=64"`
	Password   string `json:"password"    binding:"omitempty,min=6,max=72"` // 荷官/服务员可免密
	Role       string `json:"role"        binding:"required,oneof=superadmin table_admin dealer waiter"`
	TableID    *uint  `json:"table_id"`
	HourlyRate *int   `json:"hourly_rate" binding:"omitempty,min=0"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Username   *string `json:"username"    binding:"omitempty,min=2,max=64"`
	Password   *string `json:"password"    binding:"omitempty,min=6,max=72"`
	TableID    *uint   `json:"table_id"`
	HourlyRate *int    `json:"hourly_rate" binding:"omitempty,min=0"`
	IsActive   *bool   `json:"is_active"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         uint    `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	TableID    *uint   `json:"table_id,omitempty"`
	TableName  *string `json:"table_name,omitempty"`
	HourlyRate *int    `json:"hourly_rate,omitempty"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
}

// StaffOptionResponse 可选员工条目（开局/换班下拉列表）
type StaffOptionResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	HourlyRate int    `json:"hourly_rate"`
	OnDuty     bool   `json:"on_duty"` // 服务员可多桌在班，仅作展示提示
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
