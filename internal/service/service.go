package service

import (
	"go.uber.org/zap"

	"chip-ledger/backend/config"
	"chip-ledger/backend/internal/repository"
	"chip-ledger/backend/pkg/jwt"
	"chip-ledger/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	User    UserService
	Table   TableService
	Session SessionService
	Seat    SeatService
	Staff   StaffingService
	Report  ReportService
	Balance BalanceService
	Export  ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	report := NewReportService(repo, logger)
	return &Service{
		Auth:    NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:    NewUserService(repo, logger),
		Table:   NewTableService(repo, logger),
		Session: NewSessionService(repo, logger),
		Seat:    NewSeatService(repo, logger),
		Staff:   NewStaffingService(repo, logger),
		Report:  report,
		Balance: NewBalanceService(repo, logger),
		Export:  NewExportService(repo, report, logger),
	}
}
