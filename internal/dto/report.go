package dto

// ── 日报模块 DTO ──

// DaySummaryRequest 工作日汇总查询参数
type DaySummaryRequest struct {
	Date    string `form:"date"     binding:"required"` // 工作日标签 "2026-08-30"
	TableID *uint  `form:"table_id"`
}

// DaySummaryResponse 单个工作日的经营汇总
// 工作日窗口为 [D 18:00, D+1 18:00) UTC
type DaySummaryResponse struct {
	Date              string                  `json:"date"`
	CashIncome        int                     `json:"cash_income"`        // 现金买入合计
	CreditExpense     int                     `json:"credit_expense"`     // 信用买入合计
	CashoutTotal      int                     `json:"cashout_total"`      // 兑出合计（信息项）
	PlayerBalance     int                     `json:"player_balance"`     // 座位余额合计
	SalaryExpense     int                     `json:"salary_expense"`     // 员工薪资合计
	AdjustmentProfit  int                     `json:"adjustment_profit"`  // 正向调整合计
	AdjustmentExpense int                     `json:"adjustment_expense"` // 负向调整合计（取绝对值）
	NetResult         int                     `json:"net_result"`
	SessionsTotal     int                     `json:"sessions_total"`
	SessionsOpen      int                     `json:"sessions_open"`
	Staff             []StaffEarningsItem     `json:"staff"`
	Adjustments       []BalanceAdjustmentItem `json:"adjustments"`
}

// StaffEarningsItem 员工工时与薪资明细
type StaffEarningsItem struct {
	StaffID    uint    `json:"staff_id"`
	StaffName  string  `json:"staff_name"`
	Role       string  `json:"role"`
	Hours      float64 `json:"hours"`
	HourlyRate int     `json:"hourly_rate"`
	Earnings   int     `json:"earnings"`
}

// WorkingDayGroup 按工作日分组的牌局桶
type WorkingDayGroup struct {
	Date     string            `json:"date"`
	Sessions []SessionResponse `json:"sessions"`
}

// PreselectedDateResponse 报表默认选中的工作日
type PreselectedDateResponse struct {
	Date string `json:"date"`
}
