package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── 座位台账模块业务错误 ──

var (
	ErrSeatNotFound        = errors.New("座位不存在")
	ErrChipAmountInvalid   = errors.New("筹码金额不能为 0")
	ErrPaymentTypeRequired = errors.New("买入必须指定支付方式")
	ErrInsufficientCredit  = errors.New("信用余额不足")
	ErrInsufficientCash    = errors.New("现金余额不足")
	ErrNoHistory           = errors.New("该座位没有可撤销的流水")
)

// SeatService 座位台账业务接口
type SeatService interface {
	ApplyChipMovement(ctx context.Context, sessionID string, req *dto.ChipMovementRequest, callerID uint) (*dto.SeatResponse, error)
	AssignPlayer(ctx context.Context, sessionID string, req *dto.AssignPlayerRequest, callerID uint) (*dto.SeatResponse, error)
	ClearSeat(ctx context.Context, sessionID string, seatNo int, callerID uint) (*dto.SeatResponse, error)
	UndoLast(ctx context.Context, sessionID string, seatNo int) (*dto.SeatResponse, error)
	History(ctx context.Context, sessionID string, seatNo int) ([]dto.SeatHistoryEvent, error)
	ListSeats(ctx context.Context, sessionID string) ([]dto.SeatResponse, error)
}

type seatService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSeatService 创建 SeatService 实例
func NewSeatService(repo *repository.Repository, logger *zap.Logger) SeatService {
	return &seatService{repo: repo, logger: logger}
}

// ────────────────────── ApplyChipMovement ──────────────────────

func (s *seatService) ApplyChipMovement(ctx context.Context, sessionID string, req *dto.ChipMovementRequest, callerID uint) (*dto.SeatResponse, error) {
	if req.Amount == 0 {
		return nil, ErrChipAmountInvalid
	}

	unlock := lockSession(sessionID)
	defer unlock()

	var seat *model.Seat
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := s.openSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		seat, err = tx.Seat.GetBySessionAndNumber(ctx, sessionID, req.SeatNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		entry := &model.ChipEntry{
			SessionID:       sessionID,
			SeatNo:          seat.SeatNumber,
			Amount:          req.Amount,
			CreatedAt:       time.Now().UTC(),
			CreatedByUserID: &callerID,
		}

		if req.Amount > 0 {
			// 买入：支付方式必填，计入对应余额
			if req.PaymentType == nil {
				return ErrPaymentTypeRequired
			}
			entry.PaymentType = req.PaymentType
			switch *req.PaymentType {
			case model.PaymentTypeCash:
				seat.CashTotal += req.Amount
			case model.PaymentTypeCredit:
				seat.CreditTotal += req.Amount
			default:
				return ErrPaymentTypeRequired
			}
		} else {
			// 兑出：先从信用扣减指定部分，剩余走现金
			m := -req.Amount
			d := 0
			if req.CreditDeduction != nil {
				d = *req.CreditDeduction
			}
			if d > m || d > seat.CreditTotal {
				return ErrInsufficientCredit
			}
			if m-d > seat.CashTotal {
				return ErrInsufficientCash
			}
			seat.CashTotal -= m - d
			seat.CreditTotal -= d
			entry.CreditDeduction = d
		}

		if err := tx.Chip.Create(ctx, entry); err != nil {
			return err
		}
		if err := tx.Seat.Update(ctx, seat); err != nil {
			return err
		}

		// 台面筹码量自动抬升至累计买入总额
		if req.Amount > 0 {
			entries, err := tx.Chip.ListBySession(ctx, sessionID)
			if err != nil {
				return err
			}
			total := 0
			for i := range entries {
				if entries[i].Amount > 0 {
					total += entries[i].Amount
				}
			}
			if total > session.ChipsInPlay {
				session.ChipsInPlay = total
				if err := tx.Session.Update(ctx, session); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapLedgerErr(err, sessionID, "记录筹码流水失败")
	}

	return toSeatResponse(seat), nil
}

// ────────────────────── AssignPlayer ──────────────────────

func (s *seatService) AssignPlayer(ctx context.Context, sessionID string, req *dto.AssignPlayerRequest, callerID uint) (*dto.SeatResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	var seat *model.Seat
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.openSession(ctx, tx, sessionID); err != nil {
			return err
		}

		var err error
		seat, err = tx.Seat.GetBySessionAndNumber(ctx, sessionID, req.SeatNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		if !req.SkipHistory {
			if err := tx.Chip.CreateNameChange(ctx, &model.SeatNameChange{
				SessionID:       sessionID,
				SeatNo:          seat.SeatNumber,
				OldName:         seat.PlayerName,
				NewName:         req.PlayerName,
				ChangeType:      model.ChangeTypeNameChange,
				CreatedAt:       time.Now().UTC(),
				CreatedByUserID: &callerID,
			}); err != nil {
				return err
			}
		}

		seat.PlayerName = req.PlayerName
		return tx.Seat.Update(ctx, seat)
	})
	if err != nil {
		return nil, s.wrapLedgerErr(err, sessionID, "设置座位玩家失败")
	}

	return toSeatResponse(seat), nil
}

// ────────────────────── ClearSeat ──────────────────────

// ClearSeat 玩家离座：记录审计行并清空玩家名，余额保持不动
func (s *seatService) ClearSeat(ctx context.Context, sessionID string, seatNo int, callerID uint) (*dto.SeatResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	var seat *model.Seat
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.openSession(ctx, tx, sessionID); err != nil {
			return err
		}

		var err error
		seat, err = tx.Seat.GetBySessionAndNumber(ctx, sessionID, seatNo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		if err := tx.Chip.CreateNameChange(ctx, &model.SeatNameChange{
			SessionID:       sessionID,
			SeatNo:          seat.SeatNumber,
			OldName:         seat.PlayerName,
			NewName:         nil,
			ChangeType:      model.ChangeTypePlayerLeft,
			CreatedAt:       time.Now().UTC(),
			CreatedByUserID: &callerID,
		}); err != nil {
			return err
		}

		seat.PlayerName = nil
		return tx.Seat.Update(ctx, seat)
	})
	if err != nil {
		return nil, s.wrapLedgerErr(err, sessionID, "清空座位失败")
	}

	return toSeatResponse(seat), nil
}

// ────────────────────── UndoLast ──────────────────────

// UndoLast 撤销座位最近一笔筹码流水并回退缓存余额
func (s *seatService) UndoLast(ctx context.Context, sessionID string, seatNo int) (*dto.SeatResponse, error) {
	unlock := lockSession(sessionID)
	defer unlock()

	var seat *model.Seat
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.openSession(ctx, tx, sessionID); err != nil {
			return err
		}

		var err error
		seat, err = tx.Seat.GetBySessionAndNumber(ctx, sessionID, seatNo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		entry, err := tx.Chip.GetLastBySeat(ctx, sessionID, seatNo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoHistory
			}
			return err
		}

		if entry.Amount > 0 {
			if entry.PaymentType != nil && *entry.PaymentType == model.PaymentTypeCredit {
				seat.CreditTotal -= entry.Amount
			} else {
				seat.CashTotal -= entry.Amount
			}
		} else {
			m := -entry.Amount
			seat.CashTotal += m - entry.CreditDeduction
			seat.CreditTotal += entry.CreditDeduction
		}

		if err := tx.Chip.Delete(ctx, entry.ID); err != nil {
			return err
		}
		return tx.Seat.Update(ctx, seat)
	})
	if err != nil {
		return nil, s.wrapLedgerErr(err, sessionID, "撤销筹码流水失败")
	}

	return toSeatResponse(seat), nil
}

// ────────────────────── History ──────────────────────

// History 座位历史：筹码流水与换人记录按时间升序合并
func (s *seatService) History(ctx context.Context, sessionID string, seatNo int) ([]dto.SeatHistoryEvent, error) {
	if _, err := s.repo.Seat.GetBySessionAndNumber(ctx, sessionID, seatNo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeatNotFound
		}
		s.logger.Error("查询座位失败", zap.String("session_id", sessionID), zap.Int("seat_no", seatNo), zap.Error(err))
		return nil, err
	}

	entries, err := s.repo.Chip.ListBySeat(ctx, sessionID, seatNo)
	if err != nil {
		return nil, err
	}
	changes, err := s.repo.Chip.ListNameChangesBySeat(ctx, sessionID, seatNo)
	if err != nil {
		return nil, err
	}

	type timed struct {
		at    time.Time
		event dto.SeatHistoryEvent
	}
	merged := make([]timed, 0, len(entries)+len(changes))
	for i := range entries {
		e := &entries[i]
		amount := e.Amount
		event := dto.SeatHistoryEvent{
			Type:        "chip",
			Amount:      &amount,
			PaymentType: e.PaymentType,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if e.CreditDeduction > 0 {
			d := e.CreditDeduction
			event.CreditDeduction = &d
		}
		merged = append(merged, timed{at: e.CreatedAt, event: event})
	}
	for i := range changes {
		c := &changes[i]
		merged = append(merged, timed{at: c.CreatedAt, event: dto.SeatHistoryEvent{
			Type:      c.ChangeType,
			OldName:   c.OldName,
			NewName:   c.NewName,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		}})
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].at.Before(merged[j].at) })

	result := make([]dto.SeatHistoryEvent, 0, len(merged))
	for i := range merged {
		result = append(result, merged[i].event)
	}
	return result, nil
}

// ────────────────────── ListSeats ──────────────────────

func (s *seatService) ListSeats(ctx context.Context, sessionID string) ([]dto.SeatResponse, error) {
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

	result := make([]dto.SeatResponse, 0, len(seats))
	for i := range seats {
		result = append(result, *toSeatResponse(&seats[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// openSession 取出牌局并要求其处于进行中状态
func (s *seatService) openSession(ctx context.Context, tx *repository.Repository, sessionID string) (*model.Session, error) {
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

// wrapLedgerErr 业务错误原样透传，意外错误记日志
func (s *seatService) wrapLedgerErr(err error, sessionID, msg string) error {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrSeatNotFound),
		errors.Is(err, ErrPaymentTypeRequired),
		errors.Is(err, ErrInsufficientCredit),
		errors.Is(err, ErrInsufficientCash),
		errors.Is(err, ErrNoHistory):
		return err
	default:
		s.logger.Error(msg, zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
}

func toSeatResponse(seat *model.Seat) *dto.SeatResponse {
	return &dto.SeatResponse{
		SeatNumber:  seat.SeatNumber,
		PlayerName:  seat.PlayerName,
		CashTotal:   seat.CashTotal,
		CreditTotal: seat.CreditTotal,
		Total:       seat.Total(),
	}
}
