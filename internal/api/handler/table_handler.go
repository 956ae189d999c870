package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/service"
	"chip-ledger/backend/pkg/response"
)

// TableHandler 桌台模块 HTTP 处理器
type TableHandler struct {
	tableSvc service.TableService
}

// NewTableHandler 创建 TableHandler
func NewTableHandler(tableSvc service.TableService) *TableHandler {
	return &TableHandler{tableSvc: tableSvc}
}

// CreateTable 创建桌台
// POST /api/v1/tables
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	table, err := h.tableSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleTableError(c, err)
		return
	}

	response.Created(c, table)
}

// GetTable 获取桌台详情
// GET /api/v1/tables/:id
func (h *TableHandler) GetTable(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	table, err := h.tableSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTableError(c, err)
		return
	}

	response.OK(c, table)
}

// ListTables 桌台列表
// GET /api/v1/tables
func (h *TableHandler) ListTables(c *gin.Context) {
	tables, err := h.tableSvc.List(c.Request.Context())
	if err != nil {
		h.handleTableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": tables})
}

// UpdateTable 更新桌台
// PUT /api/v1/tables/:id
func (h *TableHandler) UpdateTable(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	table, err := h.tableSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTableError(c, err)
		return
	}

	response.OK(c, table)
}

// DeleteTable 删除桌台
// DELETE /api/v1/tables/:id
func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.tableSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleTableError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTableError 统一处理桌台模块业务错误
func (h *TableHandler) handleTableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTableNotFound):
		response.NotFound(c, 13001, "桌台不存在")
	case errors.Is(err, service.ErrTableNameTaken):
		response.Conflict(c, 13002, "桌台名称已存在")
	case errors.Is(err, service.ErrTableHasOpen):
		response.Conflict(c, 13003, "桌台有进行中的牌局")
	case errors.Is(err, service.ErrSeatsCountRange):
		response.BadRequest(c, 13004, "座位数必须在 1 到 60 之间")
	default:
		response.InternalError(c)
	}
}
