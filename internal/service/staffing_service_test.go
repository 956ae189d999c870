package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestStaffingService() (StaffingService, SessionService, *testMocks) {
	m := newTestMocks()
	logger := zap.NewNop()
	return NewStaffingService(m.repo(), logger), NewSessionService(m.repo(), logger), m
}

// ── CalculateEarnings 测试 ──

func TestCalculateEarnings(t *testing.T) {
	start := time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rate *int
		end  time.Time
		want int
	}{
		{"2.5小时×50", intPtr(50), start.Add(150 * time.Minute), 125},
		{"整点工时", intPtr(30), start.Add(2 * time.Hour), 60},
		{"四舍五入", intPtr(33), start.Add(90 * time.Minute), 50}, // 1.5h × 33 = 49.5
		{"未设置时薪", nil, start.Add(3 * time.Hour), 0},
		{"时薪为零", intPtr(0), start.Add(3 * time.Hour), 0},
		{"负时长钳制为零", intPtr(50), start.Add(-time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEarnings(tt.rate, start, tt.end)
			if got != tt.want {
				t.Errorf("期望 %d，实际=%d", tt.want, got)
			}
		})
	}
}

// ── AddDealer 测试 ──

func TestAddDealer_SecondDealerAllowed(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)
	dealerB := seedStaff(m, "dealer_b", model.RoleDealer, intPtr(40))

	resp, err := staffSvc.AddDealer(context.Background(), sessionID, dealerB.ID, 1)
	if err != nil {
		t.Fatalf("AddDealer 应成功: %v", err)
	}
	if resp.StaffID != dealerB.ID {
		t.Errorf("期望 staff_id=%d，实际=%d", dealerB.ID, resp.StaffID)
	}

	session, _ := m.session.GetByID(context.Background(), sessionID)
	if session.DealerID == nil || *session.DealerID != dealerB.ID {
		t.Errorf("期望当前荷官=%d，实际=%v", dealerB.ID, session.DealerID)
	}

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	var active int
	for _, a := range assignments {
		if a.Active() {
			active++
		}
	}
	if active != 2 {
		t.Errorf("期望 2 段在班值班段，实际=%d", active)
	}
}

func TestAddDealer_AlreadyInSession(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)

	session, _ := m.session.GetByID(context.Background(), sessionID)
	_, err := staffSvc.AddDealer(context.Background(), sessionID, *session.DealerID, 1)
	if !errors.Is(err, ErrDealerAlreadyAssigned) {
		t.Errorf("期望 ErrDealerAlreadyAssigned，实际: %v", err)
	}
}

func TestAddDealer_BusyOnOtherTable(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionA := openTestSession(t, sessionSvc, m, 4)
	sessionB := openTestSession(t, sessionSvc, m, 4)

	a, _ := m.session.GetByID(context.Background(), sessionA)
	_, err := staffSvc.AddDealer(context.Background(), sessionB, *a.DealerID, 1)
	if !errors.Is(err, ErrDealerAlreadyAssigned) {
		t.Errorf("期望 ErrDealerAlreadyAssigned，实际: %v", err)
	}
}

// ── ReplaceDealer 测试 ──

func TestReplaceDealer_Success(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)
	incoming := seedStaff(m, "dealer_new", model.RoleDealer, intPtr(60))

	before, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	outgoingID := before[0].ID

	resp, err := staffSvc.ReplaceDealer(context.Background(), sessionID, &dto.ReplaceDealerRequest{
		NewDealerID:  incoming.ID,
		OutgoingRake: 150,
	}, 1)
	if err != nil {
		t.Fatalf("ReplaceDealer 应成功: %v", err)
	}
	if resp.StaffID != incoming.ID {
		t.Errorf("期望新荷官=%d，实际=%d", incoming.ID, resp.StaffID)
	}

	// 旧段结束且抽水入账，新段开始于同一时刻
	outgoing, _ := m.staff.GetDealerAssignmentByID(context.Background(), outgoingID)
	if outgoing.Active() {
		t.Error("旧值班段应已结束")
	}
	incomingAssignment, _ := m.staff.GetDealerAssignmentByID(context.Background(), resp.ID)
	if !incomingAssignment.StartTime.Equal(*outgoing.EndTime) {
		t.Errorf("换班应无缝衔接，旧段止=%v，新段起=%v", outgoing.EndTime, incomingAssignment.StartTime)
	}

	rakes, _ := m.staff.ListRakeEntriesBySession(context.Background(), sessionID)
	if len(rakes) != 1 || rakes[0].AssignmentID != outgoingID || rakes[0].Amount != 150 {
		t.Errorf("期望交班抽水 150 记入旧段，实际=%+v", rakes)
	}

	session, _ := m.session.GetByID(context.Background(), sessionID)
	if session.DealerID == nil || *session.DealerID != incoming.ID {
		t.Errorf("期望当前荷官=%d，实际=%v", incoming.ID, session.DealerID)
	}
}

func TestReplaceDealer_AmbiguousWhenTwoActive(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)
	dealerB := seedStaff(m, "dealer_b", model.RoleDealer, intPtr(40))
	incoming := seedStaff(m, "dealer_new", model.RoleDealer, intPtr(60))

	if _, err := staffSvc.AddDealer(context.Background(), sessionID, dealerB.ID, 1); err != nil {
		t.Fatalf("AddDealer 应成功: %v", err)
	}

	_, err := staffSvc.ReplaceDealer(context.Background(), sessionID, &dto.ReplaceDealerRequest{
		NewDealerID: incoming.ID,
	}, 1)
	if !errors.Is(err, ErrAmbiguousReplace) {
		t.Errorf("期望 ErrAmbiguousReplace，实际: %v", err)
	}
}

// ── RemoveDealer 测试 ──

func TestRemoveDealer_Success(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	err := staffSvc.RemoveDealer(context.Background(), sessionID, &dto.RemoveDealerRequest{
		AssignmentID: assignments[0].ID,
		Rake:         80,
	}, 1)
	if err != nil {
		t.Fatalf("RemoveDealer 应成功: %v", err)
	}

	ended, _ := m.staff.GetDealerAssignmentByID(context.Background(), assignments[0].ID)
	if ended.Active() {
		t.Error("值班段应已结束")
	}
	rakes, _ := m.staff.ListRakeEntriesBySession(context.Background(), sessionID)
	if len(rakes) != 1 || rakes[0].Amount != 80 {
		t.Errorf("期望下班抽水 80，实际=%+v", rakes)
	}

	session, _ := m.session.GetByID(context.Background(), sessionID)
	if session.DealerID != nil {
		t.Errorf("当前荷官应清空，实际=%v", *session.DealerID)
	}
}

func TestRemoveDealer_AlreadyEnded(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	req := &dto.RemoveDealerRequest{AssignmentID: assignments[0].ID}
	if err := staffSvc.RemoveDealer(context.Background(), sessionID, req, 1); err != nil {
		t.Fatalf("首次 RemoveDealer 应成功: %v", err)
	}

	err := staffSvc.RemoveDealer(context.Background(), sessionID, req, 1)
	if !errors.Is(err, ErrAssignmentEnded) {
		t.Errorf("期望 ErrAssignmentEnded，实际: %v", err)
	}
}

// ── AddRakeEntry 测试 ──

func TestAddRakeEntry(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	resp, err := staffSvc.AddRakeEntry(context.Background(), &dto.AddRakeRequest{
		AssignmentID: assignments[0].ID,
		Amount:       200,
	}, 5)
	if err != nil {
		t.Fatalf("AddRakeEntry 应成功: %v", err)
	}
	if resp.Amount != 200 {
		t.Errorf("期望金额 200，实际=%d", resp.Amount)
	}

	rakes, _ := m.staff.ListRakeEntriesBySession(context.Background(), sessionID)
	if len(rakes) != 1 || rakes[0].CreatedByUserID == nil || *rakes[0].CreatedByUserID != 5 {
		t.Errorf("期望抽水记录归属用户 5，实际=%+v", rakes)
	}
}

func TestAddRakeEntry_InvalidAmount(t *testing.T) {
	staffSvc, _, _ := setupTestStaffingService()

	_, err := staffSvc.AddRakeEntry(context.Background(), &dto.AddRakeRequest{
		AssignmentID: 1,
		Amount:       -5,
	}, 1)
	if !errors.Is(err, ErrRakeAmountInvalid) {
		t.Errorf("期望 ErrRakeAmountInvalid，实际: %v", err)
	}
}

func TestAddRakeEntry_SessionClosed(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	if _, err := sessionSvc.Close(context.Background(), sessionID, &dto.CloseSessionRequest{}, 1); err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}

	_, err := staffSvc.AddRakeEntry(context.Background(), &dto.AddRakeRequest{
		AssignmentID: assignments[0].ID,
		Amount:       100,
	}, 1)
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("期望 ErrSessionClosed，实际: %v", err)
	}
}

// ── AddWaiter / RemoveWaiter 测试 ──

func TestAddWaiter_MultipleTablesAllowed(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionA := openTestSession(t, sessionSvc, m, 4)
	sessionB := openTestSession(t, sessionSvc, m, 4)
	waiter := seedStaff(m, "waiter_a", model.RoleWaiter, intPtr(20))

	if _, err := staffSvc.AddWaiter(context.Background(), sessionA, waiter.ID, 1); err != nil {
		t.Fatalf("首桌上班应成功: %v", err)
	}
	if _, err := staffSvc.AddWaiter(context.Background(), sessionB, waiter.ID, 1); err != nil {
		t.Fatalf("服务员应可同时服务多桌: %v", err)
	}

	// 同一牌局不允许重复在班
	_, err := staffSvc.AddWaiter(context.Background(), sessionA, waiter.ID, 1)
	if !errors.Is(err, ErrWaiterAlreadyAssigned) {
		t.Errorf("期望 ErrWaiterAlreadyAssigned，实际: %v", err)
	}
}

func TestRemoveWaiter_Success(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)
	waiter := seedStaff(m, "waiter_a", model.RoleWaiter, intPtr(20))

	resp, err := staffSvc.AddWaiter(context.Background(), sessionID, waiter.ID, 1)
	if err != nil {
		t.Fatalf("AddWaiter 应成功: %v", err)
	}

	if err := staffSvc.RemoveWaiter(context.Background(), sessionID, &dto.RemoveWaiterRequest{
		AssignmentID: resp.ID,
	}, 1); err != nil {
		t.Fatalf("RemoveWaiter 应成功: %v", err)
	}

	ended, _ := m.staff.GetWaiterAssignmentByID(context.Background(), resp.ID)
	if ended.Active() {
		t.Error("值班段应已结束")
	}
	session, _ := m.session.GetByID(context.Background(), sessionID)
	if session.WaiterID != nil {
		t.Errorf("当前服务员应清空，实际=%v", *session.WaiterID)
	}
}

// ── 可用员工查询测试 ──

func TestAvailableDealers_ExcludesBusy(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)
	idle := seedStaff(m, "dealer_idle", model.RoleDealer, intPtr(45))
	inactive := seedStaff(m, "dealer_gone", model.RoleDealer, intPtr(45))
	inactive.IsActive = false
	_ = m.user.Update(context.Background(), inactive)

	session, _ := m.session.GetByID(context.Background(), sessionID)
	busyID := *session.DealerID

	options, err := staffSvc.AvailableDealers(context.Background())
	if err != nil {
		t.Fatalf("AvailableDealers 应成功: %v", err)
	}
	if len(options) != 1 || options[0].ID != idle.ID {
		t.Fatalf("期望仅空闲荷官 %d 可选，实际=%+v", idle.ID, options)
	}
	for _, o := range options {
		if o.ID == busyID {
			t.Errorf("在班荷官 %d 不应出现在可选列表", busyID)
		}
	}
}

func TestAvailableWaiters_IncludesBusy(t *testing.T) {
	staffSvc, sessionSvc, m := setupTestStaffingService()
	sessionID := openTestSession(t, sessionSvc, m, 4)
	waiter := seedStaff(m, "waiter_a", model.RoleWaiter, intPtr(20))
	if _, err := staffSvc.AddWaiter(context.Background(), sessionID, waiter.ID, 1); err != nil {
		t.Fatalf("AddWaiter 应成功: %v", err)
	}

	options, err := staffSvc.AvailableWaiters(context.Background())
	if err != nil {
		t.Fatalf("AvailableWaiters 应成功: %v", err)
	}
	if len(options) != 1 || options[0].ID != waiter.ID {
		t.Fatalf("在班服务员仍应可选，实际=%+v", options)
	}
	if !options[0].OnDuty {
		t.Error("在班服务员应带 on_duty 标记")
	}

	idle := seedStaff(m, "waiter_b", model.RoleWaiter, intPtr(20))
	options, err = staffSvc.AvailableWaiters(context.Background())
	if err != nil {
		t.Fatalf("AvailableWaiters 应成功: %v", err)
	}
	for _, o := range options {
		if o.ID == idle.ID && o.OnDuty {
			t.Errorf("空闲服务员 %d 不应带 on_duty 标记", idle.ID)
		}
	}
}
