package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[uint]*model.User
	idCounter uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == 0 {
		m.idCounter++
		user.ID = m.idCounter
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	all := m.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.sorted() {
		if u.Role == role && u.IsActive {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) sorted() []model.User {
	ids := make([]uint, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]model.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.users[id])
	}
	return result
}

// ── Mock TableRepository ──

type mockTableRepo struct {
	tables    map[uint]*model.Table
	idCounter uint
}

func newMockTableRepo() *mockTableRepo {
	return &mockTableRepo{tables: make(map[uint]*model.Table)}
}

func (m *mockTableRepo) Create(_ context.Context, table *model.Table) error {
	if table.ID == 0 {
		m.idCounter++
		table.ID = m.idCounter
	}
	m.tables[table.ID] = table
	return nil
}

func (m *mockTableRepo) GetByID(_ context.Context, id uint) (*model.Table, error) {
	if t, ok := m.tables[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTableRepo) GetByName(_ context.Context, name string) (*model.Table, error) {
	for _, t := range m.tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTableRepo) Update(_ context.Context, table *model.Table) error {
	m.tables[table.ID] = table
	return nil
}

func (m *mockTableRepo) Delete(_ context.Context, id uint) error {
	delete(m.tables, id)
	return nil
}

func (m *mockTableRepo) List(_ context.Context) ([]model.Table, error) {
	ids := make([]uint, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]model.Table, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.tables[id])
	}
	return result, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.Session
	order    []string // 创建顺序，保证遍历稳定
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.Session) error {
	m.sessions[session.ID] = session
	m.order = append(m.order, session.ID)
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetOpenByTable(_ context.Context, tableID uint) (*model.Session, error) {
	for _, id := range m.order {
		s := m.sessions[id]
		if s.TableID == tableID && s.Status == model.SessionStatusOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetOpenByDealer(_ context.Context, dealerID uint) (*model.Session, error) {
	for _, id := range m.order {
		s := m.sessions[id]
		if s.Status == model.SessionStatusOpen && s.DealerID != nil && *s.DealerID == dealerID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) ListOpen(_ context.Context) ([]model.Session, error) {
	var result []model.Session
	for _, id := range m.order {
		if m.sessions[id].Status == model.SessionStatusOpen {
			result = append(result, *m.sessions[id])
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListClosedByTable(_ context.Context, tableID uint) ([]model.Session, error) {
	var result []model.Session
	for _, id := range m.order {
		s := m.sessions[id]
		if s.TableID == tableID && s.Status == model.SessionStatusClosed {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListByCreatedRange(_ context.Context, tableID *uint, from, to time.Time) ([]model.Session, error) {
	var result []model.Session
	for _, id := range m.order {
		s := m.sessions[id]
		if tableID != nil && s.TableID != *tableID {
			continue
		}
		if s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.Session) error {
	if _, ok := m.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	session.Version++
	m.sessions[session.ID] = session
	return nil
}

// ── Mock SeatRepository ──

type mockSeatRepo struct {
	seats     map[uint]*model.Seat
	idCounter uint
}

func newMockSeatRepo() *mockSeatRepo {
	return &mockSeatRepo{seats: make(map[uint]*model.Seat)}
}

func (m *mockSeatRepo) BatchCreate(_ context.Context, seats []model.Seat) error {
	for i := range seats {
		m.idCounter++
		seats[i].ID = m.idCounter
		cp := seats[i]
		m.seats[cp.ID] = &cp
	}
	return nil
}

func (m *mockSeatRepo) GetByID(_ context.Context, id uint) (*model.Seat, error) {
	if s, ok := m.seats[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeatRepo) GetBySessionAndNumber(_ context.Context, sessionID string, seatNumber int) (*model.Seat, error) {
	for _, s := range m.seats {
		if s.SessionID == sessionID && s.SeatNumber == seatNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeatRepo) ListBySession(_ context.Context, sessionID string) ([]model.Seat, error) {
	var result []model.Seat
	for _, s := range m.seats {
		if s.SessionID == sessionID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SeatNumber < result[j].SeatNumber })
	return result, nil
}

func (m *mockSeatRepo) Update(_ context.Context, seat *model.Seat) error {
	m.seats[seat.ID] = seat
	return nil
}

// ── Mock ChipEntryRepository ──

type mockChipRepo struct {
	entries   []model.ChipEntry
	changes   []model.SeatNameChange
	idCounter uint
}

func newMockChipRepo() *mockChipRepo {
	return &mockChipRepo{}
}

func (m *mockChipRepo) Create(_ context.Context, entry *model.ChipEntry) error {
	m.idCounter++
	entry.ID = m.idCounter
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockChipRepo) GetLastBySeat(_ context.Context, sessionID string, seatNo int) (*model.ChipEntry, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].SessionID == sessionID && m.entries[i].SeatNo == seatNo {
			cp := m.entries[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChipRepo) Delete(_ context.Context, id uint) error {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockChipRepo) ListBySeat(_ context.Context, sessionID string, seatNo int) ([]model.ChipEntry, error) {
	var result []model.ChipEntry
	for _, e := range m.entries {
		if e.SessionID == sessionID && e.SeatNo == seatNo {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockChipRepo) ListBySession(_ context.Context, sessionID string) ([]model.ChipEntry, error) {
	var result []model.ChipEntry
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockChipRepo) CreateNameChange(_ context.Context, change *model.SeatNameChange) error {
	m.idCounter++
	change.ID = m.idCounter
	m.changes = append(m.changes, *change)
	return nil
}

func (m *mockChipRepo) ListNameChangesBySeat(_ context.Context, sessionID string, seatNo int) ([]model.SeatNameChange, error) {
	var result []model.SeatNameChange
	for _, c := range m.changes {
		if c.SessionID == sessionID && c.SeatNo == seatNo {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── Mock StaffingRepository ──

// mockStaffRepo 持有用户与牌局仓储引用，模拟 Preload 关联
type mockStaffRepo struct {
	users    *mockUserRepo
	sessions *mockSessionRepo

	dealerAssignments map[uint]*model.DealerAssignment
	waiterAssignments map[uint]*model.WaiterAssignment
	rakes             []model.RakeEntry
	idCounter         uint
}

func newMockStaffRepo(users *mockUserRepo, sessions *mockSessionRepo) *mockStaffRepo {
	return &mockStaffRepo{
		users:             users,
		sessions:          sessions,
		dealerAssignments: make(map[uint]*model.DealerAssignment),
		waiterAssignments: make(map[uint]*model.WaiterAssignment),
	}
}

func (m *mockStaffRepo) CreateDealerAssignment(_ context.Context, assignment *model.DealerAssignment) error {
	m.idCounter++
	assignment.ID = m.idCounter
	m.dealerAssignments[assignment.ID] = assignment
	return nil
}

func (m *mockStaffRepo) GetDealerAssignmentByID(_ context.Context, id uint) (*model.DealerAssignment, error) {
	a, ok := m.dealerAssignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Dealer = m.users.users[a.DealerID]
	cp.Session = m.sessions.sessions[a.SessionID]
	return &cp, nil
}

func (m *mockStaffRepo) ListDealerAssignmentsBySession(_ context.Context, sessionID string) ([]model.DealerAssignment, error) {
	var result []model.DealerAssignment
	for _, id := range m.dealerIDs() {
		a := m.dealerAssignments[id]
		if a.SessionID != sessionID {
			continue
		}
		cp := *a
		cp.Dealer = m.users.users[a.DealerID]
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockStaffRepo) UpdateDealerAssignment(_ context.Context, assignment *model.DealerAssignment) error {
	if _, ok := m.dealerAssignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *assignment
	cp.Dealer = nil
	cp.Session = nil
	m.dealerAssignments[assignment.ID] = &cp
	return nil
}

func (m *mockStaffRepo) CreateRakeEntry(_ context.Context, entry *model.RakeEntry) error {
	m.idCounter++
	entry.ID = m.idCounter
	m.rakes = append(m.rakes, *entry)
	return nil
}

func (m *mockStaffRepo) ListRakeEntriesBySession(_ context.Context, sessionID string) ([]model.RakeEntry, error) {
	var result []model.RakeEntry
	for _, r := range m.rakes {
		if a, ok := m.dealerAssignments[r.AssignmentID]; ok && a.SessionID == sessionID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockStaffRepo) CreateWaiterAssignment(_ context.Context, assignment *model.WaiterAssignment) error {
	m.idCounter++
	assignment.ID = m.idCounter
	m.waiterAssignments[assignment.ID] = assignment
	return nil
}

func (m *mockStaffRepo) GetWaiterAssignmentByID(_ context.Context, id uint) (*model.WaiterAssignment, error) {
	a, ok := m.waiterAssignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Waiter = m.users.users[a.WaiterID]
	cp.Session = m.sessions.sessions[a.SessionID]
	return &cp, nil
}

func (m *mockStaffRepo) GetActiveWaiterAssignment(_ context.Context, sessionID string, waiterID uint) (*model.WaiterAssignment, error) {
	for _, id := range m.waiterIDs() {
		a := m.waiterAssignments[id]
		if a.SessionID == sessionID && a.WaiterID == waiterID && a.EndTime == nil {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) ListWaiterAssignmentsBySession(_ context.Context, sessionID string) ([]model.WaiterAssignment, error) {
	var result []model.WaiterAssignment
	for _, id := range m.waiterIDs() {
		a := m.waiterAssignments[id]
		if a.SessionID != sessionID {
			continue
		}
		cp := *a
		cp.Waiter = m.users.users[a.WaiterID]
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockStaffRepo) ListActiveWaiterIDs(_ context.Context) ([]uint, error) {
	seen := make(map[uint]bool)
	var result []uint
	for _, id := range m.waiterIDs() {
		a := m.waiterAssignments[id]
		if a.EndTime == nil && !seen[a.WaiterID] {
			seen[a.WaiterID] = true
			result = append(result, a.WaiterID)
		}
	}
	return result, nil
}

func (m *mockStaffRepo) UpdateWaiterAssignment(_ context.Context, assignment *model.WaiterAssignment) error {
	if _, ok := m.waiterAssignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *assignment
	cp.Waiter = nil
	cp.Session = nil
	m.waiterAssignments[assignment.ID] = &cp
	return nil
}

func (m *mockStaffRepo) dealerIDs() []uint {
	ids := make([]uint, 0, len(m.dealerAssignments))
	for id := range m.dealerAssignments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *mockStaffRepo) waiterIDs() []uint {
	ids := make([]uint, 0, len(m.waiterAssignments))
	for id := range m.waiterAssignments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── Mock BalanceRepository ──

type mockBalanceRepo struct {
	adjustments []model.BalanceAdjustment
	idCounter   uint
}

func newMockBalanceRepo() *mockBalanceRepo {
	return &mockBalanceRepo{}
}

func (m *mockBalanceRepo) Create(_ context.Context, adjustment *model.BalanceAdjustment) error {
	m.idCounter++
	adjustment.ID = m.idCounter
	m.adjustments = append(m.adjustments, *adjustment)
	return nil
}

func (m *mockBalanceRepo) List(_ context.Context) ([]model.BalanceAdjustment, error) {
	result := make([]model.BalanceAdjustment, len(m.adjustments))
	copy(result, m.adjustments)
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockBalanceRepo) ListByRange(_ context.Context, from, to time.Time) ([]model.BalanceAdjustment, error) {
	var result []model.BalanceAdjustment
	for _, a := range m.adjustments {
		if a.CreatedAt.Before(from) || !a.CreatedAt.Before(to) {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// ── 测试装配 ──

// testMocks 聚合全部 mock 仓储，便于测试直接操纵底层数据
type testMocks struct {
	user    *mockUserRepo
	table   *mockTableRepo
	session *mockSessionRepo
	seat    *mockSeatRepo
	chip    *mockChipRepo
	staff   *mockStaffRepo
	balance *mockBalanceRepo
}

func newTestMocks() *testMocks {
	user := newMockUserRepo()
	table := newMockTableRepo()
	session := newMockSessionRepo()
	seat := newMockSeatRepo()
	return &testMocks{
		user:    user,
		table:   table,
		session: session,
		seat:    seat,
		chip:    newMockChipRepo(),
		staff:   newMockStaffRepo(user, session),
		balance: newMockBalanceRepo(),
	}
}

func (m *testMocks) repo() *repository.Repository {
	return repository.WithMocks(m.user, m.table, m.session, m.seat, m.chip, m.staff, m.balance)
}
