package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── 人员值班模块业务错误 ──

var (
	ErrDealerNotFound        = errors.New("荷官不存在")
	ErrWaiterNotFound        = errors.New("服务员不存在")
	ErrDealerAlreadyAssigned = errors.New("荷官已在班")
	ErrWaiterAlreadyAssigned = errors.New("服务员已在班")
	ErrAssignmentNotFound    = errors.New("值班段不存在")
	ErrAssignmentEnded       = errors.New("值班段已结束")
	ErrAmbiguousReplace      = errors.New("当前在班荷官不唯一，无法换班")
	ErrRakeAmountInvalid     = errors.New("抽水金额必须为正数")
)

// StaffingService 荷官/服务员值班业务接口
type StaffingService interface {
	AddDealer(ctx context.Context, sessionID string, dealerID uint, callerID uint) (*dto.AssignmentResponse, error)
	ReplaceDealer(ctx context.Context, sessionID string, req *dto.ReplaceDealerRequest, callerID uint) (*dto.AssignmentResponse, error)
	RemoveDealer(ctx context.Context, sessionID string, req *dto.RemoveDealerRequest, callerID uint) error
	AddRakeEntry(ctx context.Context, req *dto.AddRakeRequest, callerID uint) (*dto.RakeEntryResponse, error)
	AddWaiter(ctx context.Context, sessionID string, waiterID uint, callerID uint) (*dto.AssignmentResponse, error)
	RemoveWaiter(ctx context.Context, sessionID string, req *dto.RemoveWaiterRequest, callerID uint) error
	AvailableDealers(ctx context.Context) ([]dto.StaffOptionResponse, error)
	AvailableWaiters(ctx context.Context) ([]dto.StaffOptionResponse, error)
}

type staffingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStaffingService 创建 StaffingService 实例
func NewStaffingService(repo *repository.Repository, logger *zap.Logger) StaffingService {
	return &staffingService{repo: repo, logger: logger}
}

// CalculateEarnings 按工时计薪：max(0, 时长小时数) × 时薪，四舍五入取整
// 时薪未设置或为 0 时返回 0
func CalculateEarnings(hourlyRate *int, start, end time.Time) int {
	if hourlyRate == nil || *hourlyRate == 0 {
		return 0
	}
	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours = 0
	}
	return int(math.Round(hours * float64(*hourlyRate)))
}

// ────────────────────── AddDealer ──────────────────────

func (s *staffingService) AddDealer(ctx context.Context, sessionID string, dealerID uint, callerID uint) (*dto.AssignmentResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	dealer, err := s.activeStaff(ctx, dealerID, model.RoleDealer)
	if err != nil {
		return nil, err
	}

	var assignment *model.DealerAssignment
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := s.openSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		// 荷官互斥：本局或任何进行中的牌局都不允许重复在班
		assignments, err := tx.Staff.ListDealerAssignmentsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for i := range assignments {
			if assignments[i].Active() && assignments[i].DealerID == dealerID {
				return ErrDealerAlreadyAssigned
			}
		}
		if other, err := tx.Session.GetOpenByDealer(ctx, dealerID); err == nil && other.ID != sessionID {
			return ErrDealerAlreadyAssigned
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment = &model.DealerAssignment{
			SessionID: sessionID,
			DealerID:  dealerID,
			StartTime: time.Now().UTC(),
		}
		if err := tx.Staff.CreateDealerAssignment(ctx, assignment); err != nil {
			return err
		}

		session.DealerID = &dealerID
		return tx.Session.Update(ctx, session)
	})
	if err != nil {
		return nil, s.wrapStaffErr(err, sessionID, "新增荷官值班失败")
	}

	return toAssignmentResponse(assignment.ID, sessionID, dealerID, dealer.Username, assignment.StartTime, nil), nil
}

// ────────────────────── ReplaceDealer ──────────────────────

// ReplaceDealer 换班：结束唯一在班值班段并在同一时刻开启新段，
// 交班抽水记入旧段
func (s *staffingService) ReplaceDealer(ctx context.Context, sessionID string, req *dto.ReplaceDealerRequest, callerID uint) (*dto.AssignmentResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	dealer, err := s.activeStaff(ctx, req.NewDealerID, model.RoleDealer)
	if err != nil {
		return nil, err
	}

	var assignment *model.DealerAssignment
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := s.openSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		assignments, err := tx.Staff.ListDealerAssignmentsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		var active []*model.DealerAssignment
		for i := range assignments {
			if assignments[i].Active() {
				active = append(active, &assignments[i])
			}
		}
		if len(active) != 1 {
			return ErrAmbiguousReplace
		}
		outgoing := active[0]
		if outgoing.DealerID == req.NewDealerID {
			return ErrDealerAlreadyAssigned
		}
		if other, err := tx.Session.GetOpenByDealer(ctx, req.NewDealerID); err == nil && other.ID != sessionID {
			return ErrDealerAlreadyAssigned
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		if req.OutgoingRake > 0 {
			if err := tx.Staff.CreateRakeEntry(ctx, &model.RakeEntry{
				AssignmentID:    outgoing.ID,
				Amount:          req.OutgoingRake,
				CreatedAt:       now,
				CreatedByUserID: &callerID,
			}); err != nil {
				return err
			}
		}

		outgoing.EndTime = &now
		if err := tx.Staff.UpdateDealerAssignment(ctx, outgoing); err != nil {
			return err
		}

		assignment = &model.DealerAssignment{
			SessionID: sessionID,
			DealerID:  req.NewDealerID,
			StartTime: now,
		}
		if err := tx.Staff.CreateDealerAssignment(ctx, assignment); err != nil {
			return err
		}

		session.DealerID = &req.NewDealerID
		return tx.Session.Update(ctx, session)
	})
	if err != nil {
		return nil, s.wrapStaffErr(err, sessionID, "荷官换班失败")
	}

	return toAssignmentResponse(assignment.ID, sessionID, req.NewDealerID, dealer.Username, assignment.StartTime, nil), nil
}

// ────────────────────── RemoveDealer ──────────────────────

func (s *staffingService) RemoveDealer(ctx context.Context, sessionID string, req *dto.RemoveDealerRequest, callerID uint) error {
	unlock := lockSession(sessionID)
	defer unlock()

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := s.openSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		assignment, err := tx.Staff.GetDealerAssignmentByID(ctx, req.AssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}
		if assignment.SessionID != sessionID {
			return ErrAssignmentNotFound
		}
		if !assignment.Active() {
			return ErrAssignmentEnded
		}

		now := time.Now().UTC()
		if req.Rake > 0 {
			if err := tx.Staff.CreateRakeEntry(ctx, &model.RakeEntry{
				AssignmentID:    assignment.ID,
				Amount:          req.Rake,
				CreatedAt:       now,
				CreatedByUserID: &callerID,
			}); err != nil {
				return err
			}
		}

		assignment.EndTime = &now
		if err := tx.Staff.UpdateDealerAssignment(ctx, assignment); err != nil {
			return err
		}

		if session.DealerID != nil && *session.DealerID == assignment.DealerID {
			session.DealerID = nil
			return tx.Session.Update(ctx, session)
		}
		return nil
	})
	if err != nil {
		return s.wrapStaffErr(err, sessionID, "荷官下班失败")
	}
	return nil
}

// ────────────────────── AddRakeEntry ──────────────────────

func (s *staffingService) AddRakeEntry(ctx context.Context, req *dto.AddRakeRequest, callerID uint) (*dto.RakeEntryResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrRakeAmountInvalid
	}

	assignment, err := s.repo.Staff.GetDealerAssignmentByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询值班段失败", zap.Uint("assignment_id", req.AssignmentID), zap.Error(err))
		return nil, err
	}
	if assignment.Session != nil && assignment.Session.Status == model.SessionStatusClosed {
		return nil, ErrSessionClosed
	}

	entry := &model.RakeEntry{
		AssignmentID:    assignment.ID,
		Amount:          req.Amount,
		CreatedAt:       time.Now().UTC(),
		CreatedByUserID: &callerID,
	}
	if err := s.repo.Staff.CreateRakeEntry(ctx, entry); err != nil {
		s.logger.Error("录入抽水失败", zap.Uint("assignment_id", req.AssignmentID), zap.Error(err))
		return nil, err
	}

	return &dto.RakeEntryResponse{
		ID:           entry.ID,
		AssignmentID: entry.AssignmentID,
		Amount:       entry.Amount,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// ────────────────────── AddWaiter ──────────────────────

// AddWaiter 服务员上班：可同时服务多桌，仅禁止同一牌局内重复在班
func (s *staffingService) AddWaiter(ctx context.Context, sessionID string, waiterID uint, callerID uint) (*dto.AssignmentResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	waiter, err := s.activeStaff(ctx, waiterID, model.RoleWaiter)
	if err != nil {
		return nil, err
	}

	var assignment *model.WaiterAssignment
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := s.openSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if _, err := tx.Staff.GetActiveWaiterAssignment(ctx, sessionID, waiterID); err == nil {
			return ErrWaiterAlreadyAssigned
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment = &model.WaiterAssignment{
			SessionID: sessionID,
			WaiterID:  waiterID,
			StartTime: time.Now().UTC(),
		}
		if err := tx.Staff.CreateWaiterAssignment(ctx, assignment); err != nil {
			return err
		}

		if session.WaiterID == nil {
			session.WaiterID = &waiterID
			return tx.Session.Update(ctx, session)
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapStaffErr(err, sessionID, "新增服务员值班失败")
	}

	return toAssignmentResponse(assignment.ID, sessionID, waiterID, waiter.Username, assignment.StartTime, nil), nil
}

// ────────────────────── RemoveWaiter ──────────────────────

func (s *staffingService) RemoveWaiter(ctx context.Context, sessionID string, req *dto.RemoveWaiterRequest, callerID uint) error {
	unlock := lockSession(sessionID)
	defer unlock()

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := s.openSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		assignment, err := tx.Staff.GetWaiterAssignmentByID(ctx, req.AssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}
		if assignment.SessionID != sessionID {
			return ErrAssignmentNotFound
		}
		if !assignment.Active() {
			return ErrAssignmentEnded
		}

		now := time.Now().UTC()
		assignment.EndTime = &now
		if err := tx.Staff.UpdateWaiterAssignment(ctx, assignment); err != nil {
			return err
		}

		if session.WaiterID != nil && *session.WaiterID == assignment.WaiterID {
			session.WaiterID = nil
			return tx.Session.Update(ctx, session)
		}
		return nil
	})
	if err != nil {
		return s.wrapStaffErr(err, sessionID, "服务员下班失败")
	}
	return nil
}

// ────────────────────── AvailableDealers ──────────────────────

// AvailableDealers 可上班荷官：在职且不在任何进行中的牌局
func (s *staffingService) AvailableDealers(ctx context.Context) ([]dto.StaffOptionResponse, error) {
	dealers, err := s.repo.User.ListByRole(ctx, model.RoleDealer)
	if err != nil {
		s.logger.Error("查询荷官列表失败", zap.Error(err))
		return nil, err
	}

	openSessions, err := s.repo.Session.ListOpen(ctx)
	if err != nil {
		s.logger.Error("查询进行中牌局失败", zap.Error(err))
		return nil, err
	}
	busy := make(map[uint]bool, len(openSessions))
	for i := range openSessions {
		if openSessions[i].DealerID != nil {
			busy[*openSessions[i].DealerID] = true
		}
	}

	result := make([]dto.StaffOptionResponse, 0, len(dealers))
	for i := range dealers {
		if busy[dealers[i].ID] {
			continue
		}
		result = append(result, toStaffOption(&dealers[i]))
	}
	return result, nil
}

// ────────────────────── AvailableWaiters ──────────────────────

// AvailableWaiters 可上班服务员：在职即可（服务员不互斥），
// 已有未结束值班段的标记为在班
func (s *staffingService) AvailableWaiters(ctx context.Context) ([]dto.StaffOptionResponse, error) {
	waiters, err := s.repo.User.ListByRole(ctx, model.RoleWaiter)
	if err != nil {
		s.logger.Error("查询服务员列表失败", zap.Error(err))
		return nil, err
	}

	activeIDs, err := s.repo.Staff.ListActiveWaiterIDs(ctx)
	if err != nil {
		s.logger.Error("查询在班服务员失败", zap.Error(err))
		return nil, err
	}
	onDuty := make(map[uint]bool, len(activeIDs))
	for _, id := range activeIDs {
		onDuty[id] = true
	}

	result := make([]dto.StaffOptionResponse, 0, len(waiters))
	for i := range waiters {
		option := toStaffOption(&waiters[i])
		option.OnDuty = onDuty[waiters[i].ID]
		result = append(result, option)
	}
	return result, nil
}

// ── 内部辅助方法 ──

// activeStaff 校验员工存在、角色匹配且在职
func (s *staffingService) activeStaff(ctx context.Context, id uint, role string) (*model.User, error) {
	notFound := ErrDealerNotFound
	if role == model.RoleWaiter {
		notFound = ErrWaiterNotFound
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		s.logger.Error("查询员工失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if user.Role != role || !user.IsActive {
		return nil, notFound
	}
	return user, nil
}

func (s *staffingService) openSession(ctx context.Context, tx *repository.Repository, sessionID string) (*model.Session, error) {
	session, err := tx.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status == model.SessionStatusClosed {
		return nil, ErrSessionClosed
	}
	return session, nil
}

func (s *staffingService) wrapStaffErr(err error, sessionID, msg string) error {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrDealerAlreadyAssigned),
		errors.Is(err, ErrWaiterAlreadyAssigned),
		errors.Is(err, ErrAssignmentNotFound),
		errors.Is(err, ErrAssignmentEnded),
		errors.Is(err, ErrAmbiguousReplace):
		return err
	default:
		s.logger.Error(msg, zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
}

func toAssignmentResponse(id uint, sessionID string, staffID uint, staffName string, start time.Time, end *time.Time) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:        id,
		SessionID: sessionID,
		StaffID:   staffID,
		StaffName: staffName,
		StartTime: start.UTC().Format(time.RFC3339),
	}
	if end != nil {
		formatted := end.UTC().Format(time.RFC3339)
		resp.EndTime = &formatted
	}
	return resp
}

func toStaffOption(user *model.User) dto.StaffOptionResponse {
	rate := 0
	if user.HourlyRate != nil {
		rate = *user.HourlyRate
	}
	return dto.StaffOptionResponse{
		ID:         user.ID,
		Username:   user.Username,
		HourlyRate: rate,
	}
}
