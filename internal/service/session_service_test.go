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

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func setupTestSessionService() (SessionService, *testMocks) {
	m := newTestMocks()
	svc := NewSessionService(m.repo(), zap.NewNop())
	return svc, m
}

func seedTable(m *testMocks, name string, seatsCount int) *model.Table {
	table := &model.Table{Name: name, SeatsCount: seatsCount}
	_ = m.table.Create(context.Background(), table)
	return table
}

func seedStaff(m *testMocks, username, role string, hourlyRate *int) *model.User {
	user := &model.User{
		Username:   username,
		Role:       role,
		IsActive:   true,
		HourlyRate: hourlyRate,
	}
	_ = m.user.Create(context.Background(), user)
	return user
}

// openTestSession 建一张桌并开局，返回牌局 ID
func openTestSession(t *testing.T, svc SessionService, m *testMocks, seatsCount int) string {
	t.Helper()
	table := seedTable(m, "测试桌-"+time.Now().Format("150405.000000000"), seatsCount)
	dealer := seedStaff(m, "荷官-"+table.Name, model.RoleDealer, intPtr(50))

	resp, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID:  table.ID,
		DealerID: dealer.ID,
	}, 1)
	if err != nil {
		t.Fatalf("开局应成功: %v", err)
	}
	return resp.ID
}

// ── Open 测试 ──

func TestOpenSession_Success(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 6)
	dealer := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))

	resp, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID:  table.ID,
		DealerID: dealer.ID,
	}, 1)
	if err != nil {
		t.Fatalf("Open 应成功: %v", err)
	}
	if resp.Status != model.SessionStatusOpen {
		t.Errorf("期望 status=open，实际=%s", resp.Status)
	}
	if resp.DealerID == nil || *resp.DealerID != dealer.ID {
		t.Errorf("期望 dealer_id=%d，实际=%v", dealer.ID, resp.DealerID)
	}

	seats, _ := m.seat.ListBySession(context.Background(), resp.ID)
	if len(seats) != 6 {
		t.Fatalf("期望预建 6 个座位，实际=%d", len(seats))
	}
	for i, seat := range seats {
		if seat.SeatNumber != i+1 {
			t.Errorf("期望座位号 %d，实际=%d", i+1, seat.SeatNumber)
		}
		if seat.CashTotal != 0 || seat.CreditTotal != 0 {
			t.Errorf("新座位余额应为 0，实际 cash=%d credit=%d", seat.CashTotal, seat.CreditTotal)
		}
	}

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), resp.ID)
	if len(assignments) != 1 || !assignments[0].Active() {
		t.Errorf("开局应创建一段在班的荷官值班段，实际=%d", len(assignments))
	}
}

func TestOpenSession_WithWaiter(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 4)
	dealer := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))
	waiter := seedStaff(m, "waiter_a", model.RoleWaiter, intPtr(20))

	resp, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID:  table.ID,
		DealerID: dealer.ID,
		WaiterID: &waiter.ID,
	}, 1)
	if err != nil {
		t.Fatalf("Open 应成功: %v", err)
	}
	if resp.WaiterID == nil || *resp.WaiterID != waiter.ID {
		t.Errorf("期望 waiter_id=%d，实际=%v", waiter.ID, resp.WaiterID)
	}

	assignments, _ := m.staff.ListWaiterAssignmentsBySession(context.Background(), resp.ID)
	if len(assignments) != 1 || !assignments[0].Active() {
		t.Errorf("开局应创建一段在班的服务员值班段，实际=%d", len(assignments))
	}
}

func TestOpenSession_TableAlreadyOpen(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 4)
	dealerA := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))
	dealerB := seedStaff(m, "dealer_b", model.RoleDealer, intPtr(50))

	if _, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: dealerA.ID,
	}, 1); err != nil {
		t.Fatalf("首次开局应成功: %v", err)
	}

	_, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: dealerB.ID,
	}, 1)
	if !errors.Is(err, ErrSessionAlreadyOpen) {
		t.Errorf("期望 ErrSessionAlreadyOpen，实际: %v", err)
	}
}

func TestOpenSession_DealerBusyOnOtherTable(t *testing.T) {
	svc, m := setupTestSessionService()
	tableA := seedTable(m, "一号桌", 4)
	tableB := seedTable(m, "二号桌", 4)
	dealer := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))

	if _, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: tableA.ID, DealerID: dealer.ID,
	}, 1); err != nil {
		t.Fatalf("首次开局应成功: %v", err)
	}

	_, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: tableB.ID, DealerID: dealer.ID,
	}, 1)
	if !errors.Is(err, ErrDealerAlreadyAssigned) {
		t.Errorf("期望 ErrDealerAlreadyAssigned，实际: %v", err)
	}
}

func TestOpenSession_DealerWrongRole(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 4)
	waiter := seedStaff(m, "waiter_a", model.RoleWaiter, intPtr(20))

	_, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: waiter.ID,
	}, 1)
	if !errors.Is(err, ErrDealerNotFound) {
		t.Errorf("期望 ErrDealerNotFound，实际: %v", err)
	}
}

func TestOpenSession_InvalidDate(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 4)
	dealer := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))

	_, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: dealer.ID, Date: "30-08-2026",
	}, 1)
	if !errors.Is(err, ErrDateInvalid) {
		t.Errorf("期望 ErrDateInvalid，实际: %v", err)
	}
}

func TestOpenSession_SeatsCountOverride(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 10)
	dealer := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))

	resp, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: dealer.ID, SeatsCount: intPtr(3),
	}, 1)
	if err != nil {
		t.Fatalf("Open 应成功: %v", err)
	}

	seats, _ := m.seat.ListBySession(context.Background(), resp.ID)
	if len(seats) != 3 {
		t.Errorf("期望 3 个座位，实际=%d", len(seats))
	}
}

// ── GetOpen 测试 ──

func TestGetOpen_NoSession(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 4)

	resp, err := svc.GetOpen(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("没有进行中的牌局时不应报错: %v", err)
	}
	if resp != nil {
		t.Errorf("期望返回 nil，实际=%+v", resp)
	}
}

// ── Close 测试 ──

func TestCloseSession_Success(t *testing.T) {
	svc, m := setupTestSessionService()
	sessionID := openTestSession(t, svc, m, 4)

	// 座位流水：现金买入 1000、信用买入 500、兑出 800
	seat2, _ := m.seat.GetBySessionAndNumber(context.Background(), sessionID, 2)
	cash := model.PaymentTypeCash
	credit := model.PaymentTypeCredit
	_ = m.chip.Create(context.Background(), &model.ChipEntry{SessionID: sessionID, SeatNo: 1, Amount: 1000, PaymentType: &cash})
	_ = m.chip.Create(context.Background(), &model.ChipEntry{SessionID: sessionID, SeatNo: 2, Amount: 500, PaymentType: &credit})
	_ = m.chip.Create(context.Background(), &model.ChipEntry{SessionID: sessionID, SeatNo: 1, Amount: -800})
	seat2.CreditTotal = 500
	_ = m.seat.Update(context.Background(), seat2)

	assignments, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	resp, err := svc.Close(context.Background(), sessionID, &dto.CloseSessionRequest{
		DealerRakes: []dto.DealerRakeItem{{AssignmentID: assignments[0].ID, Rake: 120}},
	}, 1)
	if err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}

	if resp.Status != model.SessionStatusClosed {
		t.Errorf("期望 status=closed，实际=%s", resp.Status)
	}
	if resp.ClosedAt == nil {
		t.Error("ClosedAt 不应为空")
	}
	if resp.TotalBuyins != 1500 {
		t.Errorf("期望 total_buyins=1500，实际=%d", resp.TotalBuyins)
	}
	if resp.TotalCashouts != -800 {
		t.Errorf("期望 total_cashouts=-800，实际=%d", resp.TotalCashouts)
	}
	if resp.TableRake != 700 {
		t.Errorf("期望 table_rake=700，实际=%d", resp.TableRake)
	}
	if len(resp.SeatCredits) != 1 || resp.SeatCredits[0].OutstandingCredit != 500 {
		t.Errorf("期望 1 条未结信用 500，实际=%+v", resp.SeatCredits)
	}

	// 收班抽水应记入原值班段，且所有值班段已结束
	rakes, _ := m.staff.ListRakeEntriesBySession(context.Background(), sessionID)
	if len(rakes) != 1 || rakes[0].Amount != 120 {
		t.Errorf("期望 1 笔收班抽水 120，实际=%+v", rakes)
	}
	if rakes[0].CreatedByUserID == nil || *rakes[0].CreatedByUserID != 1 {
		t.Errorf("期望收班抽水归属用户 1，实际=%v", rakes[0].CreatedByUserID)
	}
	ended, _ := m.staff.ListDealerAssignmentsBySession(context.Background(), sessionID)
	for _, a := range ended {
		if a.Active() {
			t.Error("结束牌局后不应存在在班的值班段")
		}
	}
}

func TestCloseSession_AlreadyClosed(t *testing.T) {
	svc, m := setupTestSessionService()
	sessionID := openTestSession(t, svc, m, 4)

	if _, err := svc.Close(context.Background(), sessionID, &dto.CloseSessionRequest{}, 1); err != nil {
		t.Fatalf("首次 Close 应成功: %v", err)
	}

	_, err := svc.Close(context.Background(), sessionID, &dto.CloseSessionRequest{}, 1)
	if !errors.Is(err, ErrSessionAlreadyClosed) {
		t.Errorf("期望 ErrSessionAlreadyClosed，实际: %v", err)
	}
}

func TestCloseSession_NotFound(t *testing.T) {
	svc, _ := setupTestSessionService()

	_, err := svc.Close(context.Background(), "missing-session", &dto.CloseSessionRequest{}, 1)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

// ── NonCashExposure 测试 ──

func TestNonCashExposure(t *testing.T) {
	svc, m := setupTestSessionService()
	sessionID := openTestSession(t, svc, m, 4)

	seat1, _ := m.seat.GetBySessionAndNumber(context.Background(), sessionID, 1)
	seat3, _ := m.seat.GetBySessionAndNumber(context.Background(), sessionID, 3)
	seat1.CreditTotal = 300
	seat1.PlayerName = strPtr("张三")
	seat3.CreditTotal = 450
	_ = m.seat.Update(context.Background(), seat1)
	_ = m.seat.Update(context.Background(), seat3)

	resp, err := svc.NonCashExposure(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("NonCashExposure 应成功: %v", err)
	}
	if len(resp.Seats) != 2 {
		t.Fatalf("期望 2 个未结信用座位，实际=%d", len(resp.Seats))
	}
	if resp.Total != 750 {
		t.Errorf("期望总敞口 750，实际=%d", resp.Total)
	}
	if resp.Seats[0].SeatNumber != 1 || resp.Seats[0].OutstandingCredit != 300 {
		t.Errorf("期望 1 号座 300，实际=%+v", resp.Seats[0])
	}
}

// ── ListClosed 测试 ──

func TestListClosed(t *testing.T) {
	svc, m := setupTestSessionService()
	table := seedTable(m, "一号桌", 4)
	dealer := seedStaff(m, "dealer_a", model.RoleDealer, intPtr(50))

	first, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: dealer.ID,
	}, 1)
	if err != nil {
		t.Fatalf("开局应成功: %v", err)
	}
	if _, err := svc.Close(context.Background(), first.ID, &dto.CloseSessionRequest{}, 1); err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}

	// 第二局保持进行中，不应出现在列表里
	if _, err := svc.Open(context.Background(), &dto.OpenSessionRequest{
		TableID: table.ID, DealerID: dealer.ID,
	}, 1); err != nil {
		t.Fatalf("二次开局应成功: %v", err)
	}

	closed, err := svc.ListClosed(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("ListClosed 应成功: %v", err)
	}
	if len(closed) != 1 {
		t.Fatalf("期望 1 个已结束牌局，实际=%d", len(closed))
	}
	if closed[0].ID != first.ID {
		t.Errorf("期望牌局 %s，实际=%s", first.ID, closed[0].ID)
	}
}
