package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── 牌局模块业务错误 ──

var (
	ErrSessionNotFound      = errors.New("牌局不存在")
	ErrSessionAlreadyOpen   = errors.New("该桌台已有进行中的牌局")
	ErrSessionClosed        = errors.New("牌局已结束")
	ErrSessionAlreadyClosed = errors.New("牌局已结束，不能重复结算")
	ErrSessionStillOpen     = errors.New("牌局尚未结束")
	ErrDateInvalid          = errors.New("日期格式无效")
)

// SessionService 牌局状态机业务接口
type SessionService interface {
	Open(ctx context.Context, req *dto.OpenSessionRequest, callerID uint) (*dto.SessionResponse, error)
	GetByID(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	GetOpen(ctx context.Context, tableID uint) (*dto.SessionResponse, error)
	NonCashExposure(ctx context.Context, sessionID string) (*dto.NonCashExposureResponse, error)
	Close(ctx context.Context, sessionID string, req *dto.CloseSessionRequest, callerID uint) (*dto.ClosedSessionResponse, error)
	ListClosed(ctx context.Context, tableID uint) ([]dto.ClosedSessionResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, logger: logger}
}

// ────────────────────── Open ──────────────────────

func (s *sessionService) Open(ctx context.Context, req *dto.OpenSessionRequest, callerID uint) (*dto.SessionResponse, error) {
	table, err := s.repo.Table.GetByID(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		s.logger.Error("查询桌台失败", zap.Uint("table_id", req.TableID), zap.Error(err))
		return nil, err
	}

	// 荷官校验：存在、角色正确、在职
	dealer, err := s.repo.User.GetByID(ctx, req.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealerNotFound
		}
		s.logger.Error("查询荷官失败", zap.Uint("dealer_id", req.DealerID), zap.Error(err))
		return nil, err
	}
	if dealer.Role != model.RoleDealer || !dealer.IsActive {
		return nil, ErrDealerNotFound
	}

	// 荷官互斥：不能同时出现在两个进行中的牌局
	if _, err := s.repo.Session.GetOpenByDealer(ctx, req.DealerID); err == nil {
		return nil, ErrDealerAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询荷官在班牌局失败", zap.Uint("dealer_id", req.DealerID), zap.Error(err))
		return nil, err
	}

	var waiter *model.User
	if req.WaiterID != nil {
		waiter, err = s.repo.User.GetByID(ctx, *req.WaiterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWaiterNotFound
			}
			s.logger.Error("查询服务员失败", zap.Uint("waiter_id", *req.WaiterID), zap.Error(err))
			return nil, err
		}
		if waiter.Role != model.RoleWaiter || !waiter.IsActive {
			return nil, ErrWaiterNotFound
		}
	}

	now := time.Now().UTC()
	date := workingDayOf(now)
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, ErrDateInvalid
		}
	}

	seatsCount := table.SeatsCount
	if req.SeatsCount != nil {
		if *req.SeatsCount < 1 || *req.SeatsCount > 60 {
			return nil, ErrSeatsCountRange
		}
		seatsCount = *req.SeatsCount
	}

	session := &model.Session{
		ID:          uuid.New().String(),
		TableID:     table.ID,
		Date:        date,
		Status:      model.SessionStatusOpen,
		CreatedAt:   now,
		DealerID:    &dealer.ID,
		ChipsInPlay: req.ChipsInPlay,
		Version:     1,
	}
	if waiter != nil {
		session.WaiterID = &waiter.ID
	}

	// 开局事务：唯一性检查、建局、建座、建值班段一并提交
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Session.GetOpenByTable(ctx, table.ID); err == nil {
			return ErrSessionAlreadyOpen
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Session.Create(ctx, session); err != nil {
			return err
		}

		seats := make([]model.Seat, 0, seatsCount)
		for n := 1; n <= seatsCount; n++ {
			seats = append(seats, model.Seat{SessionID: session.ID, SeatNumber: n})
		}
		if err := tx.Seat.BatchCreate(ctx, seats); err != nil {
			return err
		}

		if err := tx.Staff.CreateDealerAssignment(ctx, &model.DealerAssignment{
			SessionID: session.ID,
			DealerID:  dealer.ID,
			StartTime: now,
		}); err != nil {
			return err
		}

		if waiter != nil {
			if err := tx.Staff.CreateWaiterAssignment(ctx, &model.WaiterAssignment{
				SessionID: session.ID,
				WaiterID:  waiter.ID,
				StartTime: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionAlreadyOpen) {
			return nil, err
		}
		s.logger.Error("开局失败", zap.Uint("table_id", table.ID), zap.Error(err))
		return nil, err
	}

	session.Table = table
	session.Dealer = dealer
	session.Waiter = waiter
	return toSessionResponse(session), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *sessionService) GetByID(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询牌局失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return toSessionResponse(session), nil
}

// ────────────────────── GetOpen ──────────────────────

// GetOpen 查询桌台进行中的牌局，没有时返回 nil
func (s *sessionService) GetOpen(ctx context.Context, tableID uint) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetOpenByTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询进行中牌局失败", zap.Uint("table_id", tableID), zap.Error(err))
		return nil, err
	}
	return toSessionResponse(session), nil
}

// ────────────────────── NonCashExposure ──────────────────────

// NonCashExposure 牌局未结信用敞口：每个座位的 credit_total 即
// 信用买入减去已记录扣减后的余额
func (s *sessionService) NonCashExposure(ctx context.Context, sessionID string) (*dto.NonCashExposureResponse, error) {
	if _, err := s.repo.Session.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询牌局失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	seats, err := s.repo.Seat.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询座位失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	resp := &dto.NonCashExposureResponse{SessionID: sessionID, Seats: []dto.SeatCreditItem{}}
	for i := range seats {
		if seats[i].CreditTotal <= 0 {
			continue
		}
		resp.Seats = append(resp.Seats, dto.SeatCreditItem{
			SeatNumber:        seats[i].SeatNumber,
			PlayerName:        seats[i].PlayerName,
			OutstandingCredit: seats[i].CreditTotal,
		})
		resp.Total += seats[i].CreditTotal
	}
	return resp, nil
}

// ────────────────────── Close ──────────────────────

func (s *sessionService) Close(ctx context.Context, sessionID string, req *dto.CloseSessionRequest, callerID uint) (*dto.ClosedSessionResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	var session *model.Session
	closedAt := time.Now().UTC()

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		session, err = tx.Session.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status == model.SessionStatusClosed {
			return ErrSessionAlreadyClosed
		}

		// 收班抽水只接受仍在班的值班段
		rakeByAssignment := make(map[uint]int, len(req.DealerRakes))
		for _, item := range req.DealerRakes {
			if item.Rake > 0 {
				rakeByAssignment[item.AssignmentID] = item.Rake
			}
		}

		dealerAssignments, err := tx.Staff.ListDealerAssignmentsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for i := range dealerAssignments {
			a := &dealerAssignments[i]
			if !a.Active() {
				continue
			}
			if rake, ok := rakeByAssignment[a.ID]; ok {
				if err := tx.Staff.CreateRakeEntry(ctx, &model.RakeEntry{
					AssignmentID:    a.ID,
					Amount:          rake,
					CreatedAt:       closedAt,
					CreatedByUserID: &callerID,
				}); err != nil {
					return err
				}
			}
			end := closedAt
			a.EndTime = &end
			if err := tx.Staff.UpdateDealerAssignment(ctx, a); err != nil {
				return err
			}
		}

		waiterAssignments, err := tx.Staff.ListWaiterAssignmentsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for i := range waiterAssignments {
			a := &waiterAssignments[i]
			if !a.Active() {
				continue
			}
			end := closedAt
			a.EndTime = &end
			if err := tx.Staff.UpdateWaiterAssignment(ctx, a); err != nil {
				return err
			}
		}

		session.Status = model.SessionStatusClosed
		session.ClosedAt = &closedAt
		return tx.Session.Update(ctx, session)
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionAlreadyClosed) {
			return nil, err
		}
		s.logger.Error("结束牌局失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	return s.closedSummary(ctx, session)
}

// ────────────────────── ListClosed ──────────────────────

func (s *sessionService) ListClosed(ctx context.Context, tableID uint) ([]dto.ClosedSessionResponse, error) {
	sessions, err := s.repo.Session.ListClosedByTable(ctx, tableID)
	if err != nil {
		s.logger.Error("查询已结束牌局失败", zap.Uint("table_id", tableID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClosedSessionResponse, 0, len(sessions))
	for i := range sessions {
		summary, err := s.closedSummary(ctx, &sessions[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *summary)
	}
	return result, nil
}

// ── 内部辅助方法 ──

// closedSummary 汇总单个已结束牌局：流水合计、台面抽水、座位未结信用与值班明细
func (s *sessionService) closedSummary(ctx context.Context, session *model.Session) (*dto.ClosedSessionResponse, error) {
	entries, err := s.repo.Chip.ListBySession(ctx, session.ID)
	if err != nil {
		s.logger.Error("查询牌局流水失败", zap.String("session_id", session.ID), zap.Error(err))
		return nil, err
	}

	var buyins, cashouts int
	for i := range entries {
		if entries[i].Amount > 0 {
			buyins += entries[i].Amount
		} else {
			cashouts += entries[i].Amount
		}
	}

	seats, err := s.repo.Seat.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	seatCredits := []dto.SeatCreditItem{}
	for i := range seats {
		if seats[i].CreditTotal <= 0 {
			continue
		}
		seatCredits = append(seatCredits, dto.SeatCreditItem{
			SeatNumber:        seats[i].SeatNumber,
			PlayerName:        seats[i].PlayerName,
			OutstandingCredit: seats[i].CreditTotal,
		})
	}

	assignments, err := s.assignmentSummaries(ctx, session)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClosedSessionResponse{
		SessionResponse: *toSessionResponse(session),
		TotalBuyins:     buyins,
		TotalCashouts:   cashouts,
		TableRake:       buyins + cashouts,
		SeatCredits:     seatCredits,
		Assignments:     assignments,
	}
	return resp, nil
}

func (s *sessionService) assignmentSummaries(ctx context.Context, session *model.Session) ([]dto.AssignmentSummary, error) {
	dealerAssignments, err := s.repo.Staff.ListDealerAssignmentsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	rakeEntries, err := s.repo.Staff.ListRakeEntriesBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	rakeByAssignment := make(map[uint]int)
	for i := range rakeEntries {
		rakeByAssignment[rakeEntries[i].AssignmentID] += rakeEntries[i].Amount
	}

	result := []dto.AssignmentSummary{}
	for i := range dealerAssignments {
		a := &dealerAssignments[i]
		end := session.ClosedAt
		if a.EndTime != nil {
			end = a.EndTime
		}
		item := dto.AssignmentSummary{
			AssignmentID: a.ID,
			StaffID:      a.DealerID,
			Role:         model.RoleDealer,
			StartTime:    a.StartTime.UTC().Format(time.RFC3339),
			RakeTotal:    rakeByAssignment[a.ID],
		}
		if a.Dealer != nil {
			item.StaffName = a.Dealer.Username
			if end != nil {
				item.Hours = end.Sub(a.StartTime).Hours()
				item.Earnings = CalculateEarnings(a.Dealer.HourlyRate, a.StartTime, *end)
			}
		}
		if end != nil {
			formatted := end.UTC().Format(time.RFC3339)
			item.EndTime = &formatted
		}
		result = append(result, item)
	}

	waiterAssignments, err := s.repo.Staff.ListWaiterAssignmentsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	for i := range waiterAssignments {
		a := &waiterAssignments[i]
		end := session.ClosedAt
		if a.EndTime != nil {
			end = a.EndTime
		}
		item := dto.AssignmentSummary{
			AssignmentID: a.ID,
			StaffID:      a.WaiterID,
			Role:         model.RoleWaiter,
			StartTime:    a.StartTime.UTC().Format(time.RFC3339),
		}
		if a.Waiter != nil {
			item.StaffName = a.Waiter.Username
			if end != nil {
				item.Hours = end.Sub(a.StartTime).Hours()
				item.Earnings = CalculateEarnings(a.Waiter.HourlyRate, a.StartTime, *end)
			}
		}
		if end != nil {
			formatted := end.UTC().Format(time.RFC3339)
			item.EndTime = &formatted
		}
		result = append(result, item)
	}
	return result, nil
}

func toSessionResponse(session *model.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:          session.ID,
		TableID:     session.TableID,
		Date:        session.Date.Format("2006-01-02"),
		Status:      session.Status,
		CreatedAt:   session.CreatedAt.UTC().Format(time.RFC3339),
		DealerID:    session.DealerID,
		WaiterID:    session.WaiterID,
		ChipsInPlay: session.ChipsInPlay,
	}
	if session.ClosedAt != nil {
		formatted := session.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &formatted
	}
	if session.Table != nil {
		resp.TableName = session.Table.Name
	}
	if session.Dealer != nil {
		resp.DealerName = &session.Dealer.Username
	}
	if session.Waiter != nil {
		resp.WaiterName = &session.Waiter.Username
	}
	return resp
}
