package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// workingDayBoundaryHour 工作日切换时刻（UTC）
// 工作日 D 的窗口为 [D 18:00, D+1 18:00)，18 点前的时间戳归入前一日
const workingDayBoundaryHour = 18

// workingDayOf 返回时间戳所属工作日的标签日期（窗口起点所在日历日）
func workingDayOf(t time.Time) time.Time {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if t.Hour() < workingDayBoundaryHour {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// workingDayBounds 返回工作日 [起, 止) 窗口
func workingDayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), workingDayBoundaryHour, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// ReportService 工作日汇总业务接口
type ReportService interface {
	GroupByWorkingDay(sessions []model.Session) []dto.WorkingDayGroup
	DaySummary(ctx context.Context, date string, tableID *uint) (*dto.DaySummaryResponse, error)
	PreselectedDate(ctx context.Context) (*dto.PreselectedDateResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// ────────────────────── GroupByWorkingDay ──────────────────────

// GroupByWorkingDay 按工作日稳定分组：桶按标签日期升序，桶内保持输入顺序
func (s *reportService) GroupByWorkingDay(sessions []model.Session) []dto.WorkingDayGroup {
	buckets := make(map[string][]dto.SessionResponse)
	labels := []string{}
	for i := range sessions {
		label := workingDayOf(sessions[i].CreatedAt).Format("2006-01-02")
		if _, ok := buckets[label]; !ok {
			labels = append(labels, label)
		}
		buckets[label] = append(buckets[label], *toSessionResponse(&sessions[i]))
	}

	sort.Strings(labels)

	result := make([]dto.WorkingDayGroup, 0, len(labels))
	for _, label := range labels {
		result = append(result, dto.WorkingDayGroup{Date: label, Sessions: buckets[label]})
	}
	return result
}

// ────────────────────── DaySummary ──────────────────────

func (s *reportService) DaySummary(ctx context.Context, date string, tableID *uint) (*dto.DaySummaryResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrDateInvalid
	}
	from, to := workingDayBounds(day)

	sessions, err := s.repo.Session.ListByCreatedRange(ctx, tableID, from, to)
	if err != nil {
		s.logger.Error("查询工作日牌局失败", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	resp := &dto.DaySummaryResponse{
		Date:        date,
		Staff:       []dto.StaffEarningsItem{},
		Adjustments: []dto.BalanceAdjustmentItem{},
	}

	now := time.Now().UTC()
	// 服务员可同时服务多桌：按人收集所有值班区间，工时取区间并集
	waiterIntervals := make(map[uint][][2]time.Time)

	for i := range sessions {
		session := &sessions[i]
		resp.SessionsTotal++
		if session.IsOpen() {
			resp.SessionsOpen++
		}

		entries, err := s.repo.Chip.ListBySession(ctx, session.ID)
		if err != nil {
			s.logger.Error("查询牌局流水失败", zap.String("session_id", session.ID), zap.Error(err))
			return nil, err
		}
		for j := range entries {
			e := &entries[j]
			switch {
			case e.Amount > 0 && e.PaymentType != nil && *e.PaymentType == model.PaymentTypeCredit:
				resp.CreditExpense += e.Amount
			case e.Amount > 0:
				resp.CashIncome += e.Amount
			default:
				resp.CashoutTotal += -e.Amount
			}
		}

		seats, err := s.repo.Seat.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		for j := range seats {
			resp.PlayerBalance += seats[j].Total()
		}

		// 荷官按值班段逐段计薪
		dealerAssignments, err := s.repo.Staff.ListDealerAssignmentsBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		for j := range dealerAssignments {
			a := &dealerAssignments[j]
			if a.Dealer == nil {
				continue
			}
			end := now
			if a.EndTime != nil {
				end = *a.EndTime
			}
			earnings := CalculateEarnings(a.Dealer.HourlyRate, a.StartTime, end)
			resp.SalaryExpense += earnings
			addStaffEarnings(&resp.Staff, a.Dealer, model.RoleDealer, end.Sub(a.StartTime).Hours(), earnings)
		}

		waiterAssignments, err := s.repo.Staff.ListWaiterAssignmentsBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		for j := range waiterAssignments {
			a := &waiterAssignments[j]
			end := now
			if a.EndTime != nil {
				end = *a.EndTime
			}
			waiterIntervals[a.WaiterID] = append(waiterIntervals[a.WaiterID], [2]time.Time{a.StartTime, end})
		}
	}

	// 服务员：重叠区间合并后计薪
	waiterIDs := make([]uint, 0, len(waiterIntervals))
	for id := range waiterIntervals {
		waiterIDs = append(waiterIDs, id)
	}
	sort.Slice(waiterIDs, func(i, j int) bool { return waiterIDs[i] < waiterIDs[j] })

	waiters, err := s.repo.User.ListByIDs(ctx, waiterIDs)
	if err != nil {
		return nil, err
	}
	waiterByID := make(map[uint]*model.User, len(waiters))
	for i := range waiters {
		waiterByID[waiters[i].ID] = &waiters[i]
	}

	for _, id := range waiterIDs {
		waiter, ok := waiterByID[id]
		if !ok {
			continue
		}
		merged := mergeIntervals(waiterIntervals[id])
		var hours float64
		var earnings int
		for _, iv := range merged {
			hours += iv[1].Sub(iv[0]).Hours()
			earnings += CalculateEarnings(waiter.HourlyRate, iv[0], iv[1])
		}
		resp.SalaryExpense += earnings
		addStaffEarnings(&resp.Staff, waiter, model.RoleWaiter, hours, earnings)
	}

	// 余额调整独立于桌台，按创建时间归入工作日，不受桌台过滤影响
	adjustments, err := s.repo.Balance.ListByRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询余额调整失败", zap.String("date", date), zap.Error(err))
		return nil, err
	}
	for i := range adjustments {
		a := &adjustments[i]
		if a.Amount > 0 {
			resp.AdjustmentProfit += a.Amount
		} else {
			resp.AdjustmentExpense += -a.Amount
		}
		resp.Adjustments = append(resp.Adjustments, toAdjustmentItem(a))
	}

	resp.NetResult = resp.CashIncome - resp.PlayerBalance - resp.SalaryExpense -
		resp.CreditExpense + resp.AdjustmentProfit - resp.AdjustmentExpense

	return resp, nil
}

// ────────────────────── PreselectedDate ──────────────────────

// PreselectedDate 报表默认工作日：当前工作日有牌局则选它，
// 否则回溯 7 天内最近有牌局的工作日，都没有时仍返回当前工作日
func (s *reportService) PreselectedDate(ctx context.Context) (*dto.PreselectedDateResponse, error) {
	current := workingDayOf(time.Now().UTC())
	from, _ := workingDayBounds(current.AddDate(0, 0, -7))
	_, to := workingDayBounds(current)

	sessions, err := s.repo.Session.ListByCreatedRange(ctx, nil, from, to)
	if err != nil {
		s.logger.Error("查询工作日牌局失败", zap.Error(err))
		return nil, err
	}

	// 分组按标签升序，末尾即回溯窗口内最近有牌局的工作日
	groups := s.GroupByWorkingDay(sessions)
	if len(groups) > 0 {
		return &dto.PreselectedDateResponse{Date: groups[len(groups)-1].Date}, nil
	}
	return &dto.PreselectedDateResponse{Date: current.Format("2006-01-02")}, nil
}

// ── 内部辅助方法 ──

// mergeIntervals 合并重叠（含相接）的时间区间，返回按起点升序的不相交区间
func mergeIntervals(intervals [][2]time.Time) [][2]time.Time {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([][2]time.Time, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0].Before(sorted[j][0]) })

	merged := [][2]time.Time{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv[0].After(last[1]) {
			if iv[1].After(last[1]) {
				last[1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// addStaffEarnings 累加同一员工同一角色的工时与薪资明细
func addStaffEarnings(items *[]dto.StaffEarningsItem, staff *model.User, role string, hours float64, earnings int) {
	rate := 0
	if staff.HourlyRate != nil {
		rate = *staff.HourlyRate
	}
	for i := range *items {
		if (*items)[i].StaffID == staff.ID && (*items)[i].Role == role {
			(*items)[i].Hours += hours
			(*items)[i].Earnings += earnings
			return
		}
	}
	*items = append(*items, dto.StaffEarningsItem{
		StaffID:    staff.ID,
		StaffName:  staff.Username,
		Role:       role,
		Hours:      hours,
		HourlyRate: rate,
		Earnings:   earnings,
	})
}

func toAdjustmentItem(a *model.BalanceAdjustment) dto.BalanceAdjustmentItem {
	return dto.BalanceAdjustmentItem{
		ID:        a.ID,
		Amount:    a.Amount,
		Comment:   a.Comment,
		CreatedBy: a.CreatedByUserID,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
