package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/service"
	pkgerrors "chip-ledger/backend/pkg/errors"
	"chip-ledger/backend/pkg/response"
)

// SessionHandler 牌局模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// OpenSession 开局
// POST /api/v1/sessions
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Open(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// GetSession 获取牌局详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// GetOpenSession 查询桌台进行中的牌局
// GET /api/v1/tables/:id/open-session
func (h *SessionHandler) GetOpenSession(c *gin.Context) {
	tableID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionSvc.GetOpen(c.Request.Context(), tableID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	// 没有进行中的牌局时 data 为 null
	response.OK(c, session)
}

// GetNonCashExposure 牌局未结信用敞口
// GET /api/v1/sessions/:id/non-cash-exposure
func (h *SessionHandler) GetNonCashExposure(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	exposure, err := h.sessionSvc.NonCashExposure(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, exposure)
}

// CloseSession 结束牌局
// POST /api/v1/sessions/:id/close
func (h *SessionHandler) CloseSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req dto.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.sessionSvc.Close(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, summary)
}

// ListClosedSessions 桌台已结束牌局列表
// GET /api/v1/tables/:id/closed-sessions
func (h *SessionHandler) ListClosedSessions(c *gin.Context) {
	tableID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	sessions, err := h.sessionSvc.ListClosed(c.Request.Context(), tableID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// handleSessionError 统一处理牌局模块业务错误
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "牌局不存在")
	case errors.Is(err, service.ErrSessionAlreadyOpen):
		response.Conflict(c, 14002, "该桌台已有进行中的牌局")
	case errors.Is(err, service.ErrSessionClosed):
		response.Conflict(c, 14003, "牌局已结束")
	case errors.Is(err, service.ErrSessionAlreadyClosed):
		response.Conflict(c, 14004, "牌局已结束，不能重复结算")
	case errors.Is(err, service.ErrDateInvalid):
		response.BadRequest(c, 14005, "日期格式无效")
	case errors.Is(err, service.ErrTableNotFound):
		response.NotFound(c, 13001, "桌台不存在")
	case errors.Is(err, service.ErrSeatsCountRange):
		response.BadRequest(c, 13004, "座位数必须在 1 到 60 之间")
	case errors.Is(err, service.ErrDealerNotFound):
		response.NotFound(c, 16001, "荷官不存在")
	case errors.Is(err, service.ErrWaiterNotFound):
		response.NotFound(c, 16002, "服务员不存在")
	case errors.Is(err, service.ErrDealerAlreadyAssigned):
		response.Conflict(c, 16003, "荷官已在班")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14006, "牌局已被其他操作修改，请重试")
	default:
		response.InternalError(c)
	}
}

// sessionIDParam 校验牌局 ID 路径参数为合法 UUID
func sessionIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "牌局ID无效")
		return "", false
	}
	return id, true
}
