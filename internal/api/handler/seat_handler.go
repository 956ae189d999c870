package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/service"
	pkgerrors "chip-ledger/backend/pkg/errors"
	"chip-ledger/backend/pkg/response"
)

// SeatHandler 座位台账模块 HTTP 处理器
type SeatHandler struct {
	seatSvc service.SeatService
}

// NewSeatHandler 创建 SeatHandler
func NewSeatHandler(seatSvc service.SeatService) *SeatHandler {
	return &SeatHandler{seatSvc: seatSvc}
}

// ApplyChipMovement 记录筹码变动
// POST /api/v1/sessions/:id/chips
func (h *SeatHandler) ApplyChipMovement(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.ChipMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	seat, err := h.seatSvc.ApplyChipMovement(c.Request.Context(), sessionID, &req, callerID)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, seat)
}

// UndoLastMovement 撤销座位最近一笔流水
// POST /api/v1/sessions/:id/chips/undo
func (h *SeatHandler) UndoLastMovement(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.UndoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	seat, err := h.seatSvc.UndoLast(c.Request.Context(), sessionID, req.SeatNumber)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, seat)
}

// AssignPlayer 设置座位玩家
// PUT /api/v1/sessions/:id/seats/player
func (h *SeatHandler) AssignPlayer(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.AssignPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	seat, err := h.seatSvc.AssignPlayer(c.Request.Context(), sessionID, &req, callerID)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, seat)
}

// ClearSeat 玩家离座
// POST /api/v1/sessions/:id/seats/:seat_no/clear
func (h *SeatHandler) ClearSeat(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	seatNo, ok := seatNoParam(c)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	seat, err := h.seatSvc.ClearSeat(c.Request.Context(), sessionID, seatNo, callerID)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, seat)
}

// GetSeatHistory 座位历史时间线
// GET /api/v1/sessions/:id/seats/:seat_no/history
func (h *SeatHandler) GetSeatHistory(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	seatNo, ok := seatNoParam(c)
	if !ok {
		return
	}

	history, err := h.seatSvc.History(c.Request.Context(), sessionID, seatNo)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, gin.H{"list": history})
}

// ListSeats 牌局座位列表
// GET /api/v1/sessions/:id/seats
func (h *SeatHandler) ListSeats(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	seats, err := h.seatSvc.ListSeats(c.Request.Context(), sessionID)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, gin.H{"list": seats})
}

// handleSeatError 统一处理座位台账模块业务错误
func (h *SeatHandler) handleSeatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "牌局不存在")
	case errors.Is(err, service.ErrSessionClosed):
		response.Conflict(c, 14003, "牌局已结束")
	case errors.Is(err, service.ErrSeatNotFound):
		response.NotFound(c, 15001, "座位不存在")
	case errors.Is(err, service.ErrChipAmountInvalid):
		response.BadRequest(c, 15002, "筹码金额不能为 0")
	case errors.Is(err, service.ErrPaymentTypeRequired):
		response.BadRequest(c, 15003, "买入必须指定支付方式")
	case errors.Is(err, service.ErrInsufficientCredit):
		response.BadRequest(c, 15004, "信用余额不足")
	case errors.Is(err, service.ErrInsufficientCash):
		response.BadRequest(c, 15005, "现金余额不足")
	case errors.Is(err, service.ErrNoHistory):
		response.BadRequest(c, 15006, "该座位没有可撤销的流水")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14006, "牌局已被其他操作修改，请重试")
	default:
		response.InternalError(c)
	}
}

// seatNoParam 解析座位号路径参数
func seatNoParam(c *gin.Context) (int, bool) {
	raw := c.Param("seat_no")
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		response.BadRequest(c, 10001, "座位号无效")
		return 0, false
	}
	return v, true
}
