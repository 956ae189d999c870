package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/service"
	"chip-ledger/backend/pkg/response"
)

// ReportHandler 日报模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GetDaySummary 工作日经营汇总
// GET /api/v1/reports/day-summary
func (h *ReportHandler) GetDaySummary(c *gin.Context) {
	var req dto.DaySummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	summary, err := h.reportSvc.DaySummary(c.Request.Context(), req.Date, req.TableID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, summary)
}

// GetPreselectedDate 报表默认工作日
// GET /api/v1/reports/preselected-date
func (h *ReportHandler) GetPreselectedDate(c *gin.Context) {
	result, err := h.reportSvc.PreselectedDate(c.Request.Context())
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// handleReportError 统一处理日报模块业务错误
func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDateInvalid):
		response.BadRequest(c, 17001, "日期格式无效")
	default:
		response.InternalError(c)
	}
}
