package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"chip-ledger/backend/internal/dto"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 日报导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 所有金额取自 ReportService 汇总与已落库的流水，导出层不做独立计算
type ExportService interface {
	// ExportDayReport 导出指定工作日的经营日报为 Excel
	ExportDayReport(ctx context.Context, date string, tableID *uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	report ReportService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, report ReportService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, report: report, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportDayReport — 导出工作日经营日报
// ═══════════════════════════════════════════════════════════
//
// Sheet 结构：
//   - "日汇总"   — 收支科目与净结果
//   - "座位状态" — 各牌局座位的玩家与余额
//   - "筹码流水" — 买入/兑出时间线（含支付方式）
//   - "员工薪资" — 工时与计薪明细
//   - "余额调整" — 当日调整列表

func (s *exportService) ExportDayReport(ctx context.Context, date string, tableID *uint) (*bytes.Buffer, string, error) {
	summary, err := s.report.DaySummary(ctx, date, tableID)
	if err != nil {
		return nil, "", err
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, "", ErrDateInvalid
	}
	from, to := workingDayBounds(day)

	sessions, err := s.repo.Session.ListByCreatedRange(ctx, tableID, from, to)
	if err != nil {
		s.logger.Error("查询工作日牌局失败", zap.String("date", date), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	s.writeSummarySheet(f, headerStyle, summary)
	if err := s.writeSeatsSheet(ctx, f, headerStyle, sessions); err != nil {
		return nil, "", err
	}
	if err := s.writeChipsSheet(ctx, f, headerStyle, sessions); err != nil {
		return nil, "", err
	}
	s.writeStaffSheet(f, headerStyle, summary.Staff)
	s.writeAdjustmentsSheet(f, headerStyle, summary.Adjustments)

	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("日报_%s.xlsx", date)
	return buf, filename, nil
}

// ── Sheet 构建 ──

func (s *exportService) writeSummarySheet(f *excelize.File, headerStyle int, summary *dto.DaySummaryResponse) {
	const sheet = "日汇总"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 14)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("经营日报 — %s", summary.Date))
	f.MergeCell(sheet, "A1", "B1")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	rows := [][2]interface{}{
		{"现金收入", summary.CashIncome},
		{"信用支出", summary.CreditExpense},
		{"兑出合计", summary.CashoutTotal},
		{"玩家余额", summary.PlayerBalance},
		{"薪资支出", summary.SalaryExpense},
		{"调整营收", summary.AdjustmentProfit},
		{"调整支出", summary.AdjustmentExpense},
		{"净结果", summary.NetResult},
		{"牌局总数", summary.SessionsTotal},
		{"进行中牌局", summary.SessionsOpen},
	}
	for i, r := range rows {
		f.SetCellValue(sheet, cell("A", i+2), r[0])
		f.SetCellValue(sheet, cell("B", i+2), r[1])
	}
}

func (s *exportService) writeSeatsSheet(ctx context.Context, f *excelize.File, headerStyle int, sessions []model.Session) error {
	const sheet = "座位状态"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "B", 16)
	f.SetColWidth(sheet, "C", "C", 18)
	f.SetColWidth(sheet, "D", "F", 12)

	headers := []string{"桌台", "牌局状态", "玩家", "座位号", "现金", "信用"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
		f.SetCellStyle(sheet, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}

	row := 2
	for i := range sessions {
		session := &sessions[i]
		tableName := fmt.Sprintf("桌台 %d", session.TableID)
		if session.Table != nil {
			tableName = session.Table.Name
		}

		seats, err := s.repo.Seat.ListBySession(ctx, session.ID)
		if err != nil {
			s.logger.Error("查询座位失败", zap.String("session_id", session.ID), zap.Error(err))
			return err
		}
		for j := range seats {
			seat := &seats[j]
			if !seat.Occupied() && seat.Total() == 0 {
				continue
			}
			player := "-"
			if seat.PlayerName != nil && *seat.PlayerName != "" {
				player = *seat.PlayerName
			}
			f.SetCellValue(sheet, cell("A", row), tableName)
			f.SetCellValue(sheet, cell("B", row), session.Status)
			f.SetCellValue(sheet, cell("C", row), player)
			f.SetCellValue(sheet, cell("D", row), seat.SeatNumber)
			f.SetCellValue(sheet, cell("E", row), seat.CashTotal)
			f.SetCellValue(sheet, cell("F", row), seat.CreditTotal)
			row++
		}
	}
	return nil
}

func (s *exportService) writeChipsSheet(ctx context.Context, f *excelize.File, headerStyle int, sessions []model.Session) error {
	const sheet = "筹码流水"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "E", 14)

	headers := []string{"时间", "桌台", "玩家", "金额", "支付方式"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
		f.SetCellStyle(sheet, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}

	row := 2
	for i := range sessions {
		session := &sessions[i]
		tableName := fmt.Sprintf("桌台 %d", session.TableID)
		if session.Table != nil {
			tableName = session.Table.Name
		}

		seats, err := s.repo.Seat.ListBySession(ctx, session.ID)
		if err != nil {
			s.logger.Error("查询座位失败", zap.String("session_id", session.ID), zap.Error(err))
			return err
		}
		playerBySeat := make(map[int]string, len(seats))
		for j := range seats {
			if seats[j].Occupied() {
				playerBySeat[seats[j].SeatNumber] = *seats[j].PlayerName
			}
		}

		entries, err := s.repo.Chip.ListBySession(ctx, session.ID)
		if err != nil {
			s.logger.Error("查询牌局流水失败", zap.String("session_id", session.ID), zap.Error(err))
			return err
		}
		for j := range entries {
			e := &entries[j]
			player := "-"
			if name, ok := playerBySeat[e.SeatNo]; ok {
				player = name
			}
			payment := "-"
			if e.PaymentType != nil {
				payment = *e.PaymentType
			}
			f.SetCellValue(sheet, cell("A", row), e.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
			f.SetCellValue(sheet, cell("B", row), tableName)
			f.SetCellValue(sheet, cell("C", row), player)
			f.SetCellValue(sheet, cell("D", row), e.Amount)
			f.SetCellValue(sheet, cell("E", row), payment)
			row++
		}
	}
	return nil
}

func (s *exportService) writeStaffSheet(f *excelize.File, headerStyle int, staff []dto.StaffEarningsItem) {
	const sheet = "员工薪资"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "B", 14)
	f.SetColWidth(sheet, "C", "E", 12)

	headers := []string{"姓名", "角色", "工时", "时薪", "薪资"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
		f.SetCellStyle(sheet, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}

	for i, item := range staff {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), item.StaffName)
		f.SetCellValue(sheet, cell("B", row), item.Role)
		f.SetCellValue(sheet, cell("C", row), fmt.Sprintf("%.2f", item.Hours))
		f.SetCellValue(sheet, cell("D", row), item.HourlyRate)
		f.SetCellValue(sheet, cell("E", row), item.Earnings)
	}
}

func (s *exportService) writeAdjustmentsSheet(f *excelize.File, headerStyle int, adjustments []dto.BalanceAdjustmentItem) {
	const sheet = "余额调整"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 40)

	headers := []string{"时间", "金额", "说明"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
		f.SetCellStyle(sheet, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}

	for i, item := range adjustments {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), item.CreatedAt)
		f.SetCellValue(sheet, cell("B", row), item.Amount)
		f.SetCellValue(sheet, cell("C", row), item.Comment)
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
