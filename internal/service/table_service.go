package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── 桌台模块业务错误 ──

var (
	ErrTableNotFound   = errors.New("桌台不存在")
	ErrTableNameTaken  = errors.New("桌台名称已存在")
	ErrTableHasOpen    = errors.New("桌台有进行中的牌局，无法删除")
	ErrSeatsCountRange = errors.New("座位数必须在 1 到 60 之间")
)

const defaultSeatsCount = 10

// TableService 桌台业务接口
type TableService interface {
	Create(ctx context.Context, req *dto.CreateTableRequest) (*dto.TableResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.TableResponse, error)
	List(ctx context.Context) ([]dto.TableResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateTableRequest) (*dto.TableResponse, error)
	Delete(ctx context.Context, id uint) error
}

type tableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTableService 创建 TableService 实例
func NewTableService(repo *repository.Repository, logger *zap.Logger) TableService {
	return &tableService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *tableService) Create(ctx context.Context, req *dto.CreateTableRequest) (*dto.TableResponse, error) {
	if _, err := s.repo.Table.GetByName(ctx, req.Name); err == nil {
		return nil, ErrTableNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询桌台名称失败", zap.Error(err))
		return nil, err
	}

	seats := req.SeatsCount
	if seats == 0 {
		seats = defaultSeatsCount
	}
	if seats < 1 || seats > 60 {
		return nil, ErrSeatsCountRange
	}

	table := &model.Table{
		Name:       req.Name,
		SeatsCount: seats,
	}
	if err := s.repo.Table.Create(ctx, table); err != nil {
		s.logger.Error("创建桌台失败", zap.Error(err))
		return nil, err
	}

	return s.toTableResponse(ctx, table), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *tableService) GetByID(ctx context.Context, id uint) (*dto.TableResponse, error) {
	table, err := s.repo.Table.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		s.logger.Error("查询桌台失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return s.toTableResponse(ctx, table), nil
}

// ────────────────────── List ──────────────────────

func (s *tableService) List(ctx context.Context) ([]dto.TableResponse, error) {
	tables, err := s.repo.Table.List(ctx)
	if err != nil {
		s.logger.Error("列出桌台失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TableResponse, 0, len(tables))
	for i := range tables {
		result = append(result, *s.toTableResponse(ctx, &tables[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *tableService) Update(ctx context.Context, id uint, req *dto.UpdateTableRequest) (*dto.TableResponse, error) {
	table, err := s.repo.Table.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		s.logger.Error("查询桌台失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != table.Name {
		if _, err := s.repo.Table.GetByName(ctx, *req.Name); err == nil {
			return nil, ErrTableNameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		table.Name = *req.Name
	}
	if req.SeatsCount != nil {
		if *req.SeatsCount < 1 || *req.SeatsCount > 60 {
			return nil, ErrSeatsCountRange
		}
		// 座位数变更仅影响后续开局，已开牌局的座位不变
		table.SeatsCount = *req.SeatsCount
	}

	if err := s.repo.Table.Update(ctx, table); err != nil {
		s.logger.Error("更新桌台失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTableResponse(ctx, table), nil
}

// ────────────────────── Delete ──────────────────────

func (s *tableService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Table.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTableNotFound
		}
		s.logger.Error("查询桌台失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	if _, err := s.repo.Session.GetOpenByTable(ctx, id); err == nil {
		return ErrTableHasOpen
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中牌局失败", zap.Uint("table_id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Table.Delete(ctx, id); err != nil {
		s.logger.Error("删除桌台失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *tableService) toTableResponse(ctx context.Context, table *model.Table) *dto.TableResponse {
	hasOpen := false
	if _, err := s.repo.Session.GetOpenByTable(ctx, table.ID); err == nil {
		hasOpen = true
	}
	return &dto.TableResponse{
		ID:         table.ID,
		Name:       table.Name,
		SeatsCount: table.SeatsCount,
		HasOpen:    hasOpen,
		CreatedAt:  table.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
