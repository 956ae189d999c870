package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── 余额调整模块业务错误 ──

var (
	ErrAdjustmentAmountZero     = errors.New("调整金额不能为 0")
	ErrCreditExceedsOutstanding = errors.New("结清金额超过未结信用")
)

// BalanceService 余额调整业务接口
type BalanceService interface {
	Create(ctx context.Context, req *dto.CreateAdjustmentRequest, callerID uint) (*dto.BalanceAdjustmentItem, error)
	List(ctx context.Context, req *dto.ListAdjustmentsRequest) ([]dto.BalanceAdjustmentItem, error)
	CloseCredit(ctx context.Context, req *dto.CloseCreditRequest, callerID uint) (*dto.BalanceAdjustmentItem, error)
}

type balanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBalanceService 创建 BalanceService 实例
func NewBalanceService(repo *repository.Repository, logger *zap.Logger) BalanceService {
	return &balanceService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *balanceService) Create(ctx context.Context, req *dto.CreateAdjustmentRequest, callerID uint) (*dto.BalanceAdjustmentItem, error) {
	if req.Amount == 0 {
		return nil, ErrAdjustmentAmountZero
	}

	adjustment := &model.BalanceAdjustment{
		Amount:          req.Amount,
		Comment:         req.Comment,
		CreatedByUserID: callerID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Balance.Create(ctx, adjustment); err != nil {
		s.logger.Error("创建余额调整失败", zap.Uint("caller_id", callerID), zap.Error(err))
		return nil, err
	}

	item := toAdjustmentItem(adjustment)
	return &item, nil
}

// ────────────────────── List ──────────────────────

func (s *balanceService) List(ctx context.Context, req *dto.ListAdjustmentsRequest) ([]dto.BalanceAdjustmentItem, error) {
	var adjustments []model.BalanceAdjustment
	var err error

	if req.From == "" && req.To == "" {
		adjustments, err = s.repo.Balance.List(ctx)
	} else {
		from := time.Time{}
		to := time.Now().UTC().AddDate(0, 0, 1)
		if req.From != "" {
			from, err = time.Parse("2006-01-02", req.From)
			if err != nil {
				return nil, ErrDateInvalid
			}
		}
		if req.To != "" {
			var parsed time.Time
			parsed, err = time.Parse("2006-01-02", req.To)
			if err != nil {
				return nil, ErrDateInvalid
			}
			to = parsed.AddDate(0, 0, 1) // 含当日
		}
		adjustments, err = s.repo.Balance.ListByRange(ctx, from, to)
	}
	if err != nil {
		s.logger.Error("查询余额调整失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.BalanceAdjustmentItem, 0, len(adjustments))
	for i := range adjustments {
		result = append(result, toAdjustmentItem(&adjustments[i]))
	}
	return result, nil
}

// ────────────────────── CloseCredit ──────────────────────

// CloseCredit 结清已结束牌局的座位信用：记一笔全额信用扣减流水，
// 同时生成正向余额调整计入当日营收
func (s *balanceService) CloseCredit(ctx context.Context, req *dto.CloseCreditRequest, callerID uint) (*dto.BalanceAdjustmentItem, error) {
	unlock := lockSession(req.SessionID)
	defer unlock()

	var adjustment *model.BalanceAdjustment
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := tx.Session.GetByID(ctx, req.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status != model.SessionStatusClosed {
			return ErrSessionStillOpen
		}

		seat, err := tx.Seat.GetBySessionAndNumber(ctx, req.SessionID, req.SeatNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}
		if req.Amount > seat.CreditTotal {
			return ErrCreditExceedsOutstanding
		}

		now := time.Now().UTC()
		if err := tx.Chip.Create(ctx, &model.ChipEntry{
			SessionID:       req.SessionID,
			SeatNo:          seat.SeatNumber,
			Amount:          -req.Amount,
			CreditDeduction: req.Amount,
			CreatedAt:       now,
			CreatedByUserID: &callerID,
		}); err != nil {
			return err
		}

		seat.CreditTotal -= req.Amount
		if err := tx.Seat.Update(ctx, seat); err != nil {
			return err
		}

		player := "未知玩家"
		if seat.PlayerName != nil && *seat.PlayerName != "" {
			player = *seat.PlayerName
		}
		tableName := fmt.Sprintf("桌台 %d", session.TableID)
		if session.Table != nil {
			tableName = session.Table.Name
		}
		adjustment = &model.BalanceAdjustment{
			Amount: req.Amount,
			Comment: fmt.Sprintf("信用结清：%s，%s，%s",
				player, tableName, session.Date.Format("2006-01-02")),
			CreatedByUserID: callerID,
			CreatedAt:       now,
		}
		return tx.Balance.Create(ctx, adjustment)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound),
			errors.Is(err, ErrSessionStillOpen),
			errors.Is(err, ErrSeatNotFound),
			errors.Is(err, ErrCreditExceedsOutstanding):
			return nil, err
		default:
			s.logger.Error("信用结清失败", zap.String("session_id", req.SessionID), zap.Error(err))
			return nil, err
		}
	}

	item := toAdjustmentItem(adjustment)
	return &item, nil
}
