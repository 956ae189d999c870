package handler

import "chip-ledger/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Table   *TableHandler
	Session *SessionHandler
	Seat    *SeatHandler
	Staff   *StaffingHandler
	Report  *ReportHandler
	Balance *BalanceHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		User:    NewUserHandler(svc.User),
		Table:   NewTableHandler(svc.Table),
		Session: NewSessionHandler(svc.Session),
		Seat:    NewSeatHandler(svc.Seat),
		Staff:   NewStaffingHandler(svc.Staff),
		Report:  NewReportHandler(svc.Report),
		Balance: NewBalanceHandler(svc.Balance),
		Export:  NewExportHandler(svc.Export),
	}
}
