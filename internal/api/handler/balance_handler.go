package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/service"
	"chip-ledger/backend/pkg/response"
)

// BalanceHandler 余额调整模块 HTTP 处理器
type BalanceHandler struct {
	balanceSvc service.BalanceService
}

// NewBalanceHandler 创建 BalanceHandler
func NewBalanceHandler(balanceSvc service.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceSvc: balanceSvc}
}

// CreateAdjustment 创建余额调整
// POST /api/v1/balance-adjustments
func (h *BalanceHandler) CreateAdjustment(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	adjustment, err := h.balanceSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleBalanceError(c, err)
		return
	}

	response.Created(c, adjustment)
}

// ListAdjustments 余额调整列表
// GET /api/v1/balance-adjustments
func (h *BalanceHandler) ListAdjustments(c *gin.Context) {
	var req dto.ListAdjustmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adjustments, err := h.balanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleBalanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": adjustments})
}

// CloseCredit 结清座位信用
// POST /api/v1/balance-adjustments/close-credit
func (h *BalanceHandler) CloseCredit(c *gin.Context) {
	var req dto.CloseCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	adjustment, err := h.balanceSvc.CloseCredit(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleBalanceError(c, err)
		return
	}

	response.Created(c, adjustment)
}

// handleBalanceError 统一处理余额调整模块业务错误
func (h *BalanceHandler) handleBalanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdjustmentAmountZero):
		response.BadRequest(c, 18001, "调整金额不能为 0")
	case errors.Is(err, service.ErrCreditExceedsOutstanding):
		response.BadRequest(c, 18002, "结清金额超过未结信用")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "牌局不存在")
	case errors.Is(err, service.ErrSessionStillOpen):
		response.Conflict(c, 14007, "牌局尚未结束")
	case errors.Is(err, service.ErrSeatNotFound):
		response.NotFound(c, 15001, "座位不存在")
	case errors.Is(err, service.ErrDateInvalid):
		response.BadRequest(c, 17001, "日期格式无效")
	default:
		response.InternalError(c)
	}
}
