package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/service"
	"chip-ledger/backend/pkg/response"
)

// StaffingHandler 人员值班模块 HTTP 处理器
type StaffingHandler struct {
	staffSvc service.StaffingService
}

// NewStaffingHandler 创建 StaffingHandler
func NewStaffingHandler(staffSvc service.StaffingService) *StaffingHandler {
	return &StaffingHandler{staffSvc: staffSvc}
}

// AddDealer 荷官上班
// POST /api/v1/sessions/:id/dealers
func (h *StaffingHandler) AddDealer(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.AddDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.staffSvc.AddDealer(c.Request.Context(), sessionID, req.DealerID, callerID)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.Created(c, assignment)
}

// ReplaceDealer 荷官换班
// POST /api/v1/sessions/:id/dealers/replace
func (h *StaffingHandler) ReplaceDealer(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.ReplaceDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.staffSvc.ReplaceDealer(c.Request.Context(), sessionID, &req, callerID)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, assignment)
}

// RemoveDealer 荷官下班
// POST /api/v1/sessions/:id/dealers/remove
func (h *StaffingHandler) RemoveDealer(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.RemoveDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.staffSvc.RemoveDealer(c.Request.Context(), sessionID, &req, callerID); err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddRakeEntry 录入抽水
// POST /api/v1/rake-entries
func (h *StaffingHandler) AddRakeEntry(c *gin.Context) {
	var req dto.AddRakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.staffSvc.AddRakeEntry(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.Created(c, entry)
}

// AddWaiter 服务员上班
// POST /api/v1/sessions/:id/waiters
func (h *StaffingHandler) AddWaiter(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.AddWaiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.staffSvc.AddWaiter(c.Request.Context(), sessionID, req.WaiterID, callerID)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.Created(c, assignment)
}

// RemoveWaiter 服务员下班
// POST /api/v1/sessions/:id/waiters/remove
func (h *StaffingHandler) RemoveWaiter(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.RemoveWaiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.staffSvc.RemoveWaiter(c.Request.Context(), sessionID, &req, callerID); err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAvailableDealers 可上班荷官
// GET /api/v1/staff/available-dealers
func (h *StaffingHandler) ListAvailableDealers(c *gin.Context) {
	dealers, err := h.staffSvc.AvailableDealers(c.Request.Context())
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, gin.H{"list": dealers})
}

// ListAvailableWaiters 可上班服务员
// GET /api/v1/staff/available-waiters
func (h *StaffingHandler) ListAvailableWaiters(c *gin.Context) {
	waiters, err := h.staffSvc.AvailableWaiters(c.Request.Context())
	if err != nil {
		h.handleStaffError(c, err)
		return
	}

	response.OK(c, gin.H{"list": waiters})
}

// handleStaffError 统一处理人员值班模块业务错误
func (h *StaffingHandler) handleStaffError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "牌局不存在")
	case errors.Is(err, service.ErrSessionClosed):
		response.Conflict(c, 14003, "牌局已结束")
	case errors.Is(err, service.ErrDealerNotFound):
		response.NotFound(c, 16001, "荷官不存在")
	case errors.Is(err, service.ErrWaiterNotFound):
		response.NotFound(c, 16002, "服务员不存在")
	case errors.Is(err, service.ErrDealerAlreadyAssigned):
		response.Conflict(c, 16003, "荷官已在班")
	case errors.Is(err, service.ErrWaiterAlreadyAssigned):
		response.Conflict(c, 16004, "服务员已在班")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 16005, "值班段不存在")
	case errors.Is(err, service.ErrAssignmentEnded):
		response.Conflict(c, 16006, "值班段已结束")
	case errors.Is(err, service.ErrAmbiguousReplace):
		response.Conflict(c, 16007, "当前在班荷官不唯一")
	case errors.Is(err, service.ErrRakeAmountInvalid):
		response.BadRequest(c, 16008, "抽水金额必须为正数")
	default:
		response.InternalError(c)
	}
}
