// Package dto は REST / gRPC / クライアントで共有する JSON 表現を定義します。
package dto

import (
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TimeLog は作業記録の JSON 表現です。
type TimeLog struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Duration   int       `json:"duration"`
	Type       string    `json:"type"`
	Project    *string   `json:"project,omitempty"`
	Task       *string   `json:"task,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Billable   *bool     `json:"billable,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FromTimeLog はドメインの作業記録を変換します。
func FromTimeLog(l *timelog.TimeLog) TimeLog {
	return TimeLog{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		Date:       l.Date,
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		Duration:   l.Duration,
		Type:       string(l.Type),
		Project:    l.Project,
		Task:       l.Task,
		Notes:      l.Notes,
		Billable:   l.Billable,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// FromTimeLogs は一覧を変換します。
func FromTimeLogs(logs []*timelog.TimeLog) []TimeLog {
	out := make([]TimeLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, FromTimeLog(l))
	}
	return out
}

// ToDomain は JSON 表現をドメインの値に戻します。
func (l TimeLog) ToDomain() timelog.TimeLog {
	return timelog.TimeLog{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		Date:       l.Date,
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		Duration:   l.Duration,
		Type:       timelog.Type(l.Type),
		Project:    l.Project,
		Task:       l.Task,
		Notes:      l.Notes,
		Billable:   l.Billable,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// AddTimeLogRequest は作業記録の登録リクエストです。
type AddTimeLogRequest struct {
	ID         *string   `json:"id,omitempty"`
	EmployeeID string    `json:"employee_id" binding:"required"`
	Date       string    `json:"date,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Duration   *int      `json:"duration,omitempty"`
	Type       string    `json:"type" binding:"required"`
	Project    *string   `json:"project,omitempty"`
	Task       *string   `json:"task,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Billable   *bool     `json:"billable,omitempty"`
}

// ToInput はサービス入力に変換します。
func (r AddTimeLogRequest) ToInput() timelog.AddLogInput {
	return timelog.AddLogInput{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Duration:   r.Duration,
		Type:       timelog.Type(r.Type),
		Project:    r.Project,
		Task:       r.Task,
		Notes:      r.Notes,
		Billable:   r.Billable,
	}
}

// UpdateTimeLogRequest は作業記録の部分更新リクエストです。
type UpdateTimeLogRequest struct {
	Date      *string    `json:"date,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Type      *string    `json:"type,omitempty"`
	Project   *string    `json:"project,omitempty"`
	Task      *string    `json:"task,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	Billable  *bool      `json:"billable,omitempty"`
}

// ToInput はサービス入力に変換します。
func (r UpdateTimeLogRequest) ToInput(id string) timelog.UpdateLogInput {
	in := timelog.UpdateLogInput{
		ID:        id,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Project:   r.Project,
		Task:      r.Task,
		Notes:     r.Notes,
		Billable:  r.Billable,
	}
	if r.Type != nil {
		t := timelog.Type(*r.Type)
		in.Type = &t
	}
	return in
}

// TimerSession はタイマーの状態です。
type TimerSession struct {
	EmployeeID  string     `json:"employee_id"`
	State       string     `json:"state"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	CurrentType string     `json:"current_type,omitempty"`
	Project     *string    `json:"project,omitempty"`
	Task        *string    `json:"task,omitempty"`
}

// FromSession はタイマーのセッションを変換します。nil は Idle として扱います。
func FromSession(employeeID string, s *timer.Session) TimerSession {
	if s == nil || s.State != timer.StateRunning {
		return TimerSession{EmployeeID: employeeID, State: string(timer.StateIdle)}
	}
	start := s.StartTime
	return TimerSession{
		EmployeeID:  s.EmployeeID,
		State:       string(s.State),
		StartTime:   &start,
		CurrentType: string(s.CurrentType),
		Project:     s.Project,
		Task:        s.Task,
	}
}

// StartTimerRequest はタイマー開始リクエストです。
type StartTimerRequest struct {
	EmployeeID string  `json:"employee_id"`
	Type       string  `json:"type"`
	Project    *string `json:"project,omitempty"`
	Task       *string `json:"task,omitempty"`
}

// StopTimerRequest はタイマー停止リクエストです。
type StopTimerRequest struct {
	EmployeeID string  `json:"employee_id"`
	Notes      *string `json:"notes,omitempty"`
	Billable   *bool   `json:"billable,omitempty"`
}

// StopTimerResponse は停止結果です。計測中でなかった場合 Log は nil です。
type StopTimerResponse struct {
	Log *TimeLog `json:"log"`
}

// Timesheet はタイムシートの JSON 表現です。
type Timesheet struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	PeriodStart     string     `json:"period_start"`
	PeriodEnd       string     `json:"period_end"`
	Logs            []TimeLog  `json:"logs"`
	TotalMinutes    int        `json:"total_minutes"`
	OvertimeMinutes int        `json:"overtime_minutes"`
	BreakMinutes    int        `json:"break_minutes"`
	TotalHours      float64    `json:"total_hours"`
	OvertimeHours   float64    `json:"overtime_hours"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FromTimesheet はタイムシートを変換します。
func FromTimesheet(ts *timesheet.Timesheet) Timesheet {
	logs := make([]TimeLog, 0, len(ts.Logs))
	for i := range ts.Logs {
		logs = append(logs, FromTimeLog(&ts.Logs[i]))
	}
	return Timesheet{
		ID:              ts.ID,
		EmployeeID:      ts.EmployeeID,
		PeriodStart:     ts.PeriodStart,
		PeriodEnd:       ts.PeriodEnd,
		Logs:            logs,
		TotalMinutes:    ts.TotalMinutes,
		OvertimeMinutes: ts.OvertimeMinutes,
		BreakMinutes:    ts.BreakMinutes,
		TotalHours:      ts.TotalHours,
		OvertimeHours:   ts.OvertimeHours,
		Status:          string(ts.Status),
		SubmittedAt:     ts.SubmittedAt,
		ApprovedBy:      ts.ApprovedBy,
		Notes:           ts.Notes,
		CreatedAt:       ts.CreatedAt,
		UpdatedAt:       ts.UpdatedAt,
	}
}

// FromTimesheets は一覧を変換します。
func FromTimesheets(list []*timesheet.Timesheet) []Timesheet {
	out := make([]Timesheet, 0, len(list))
	for _, ts := range list {
		out = append(out, FromTimesheet(ts))
	}
	return out
}

// GenerateTimesheetRequest はタイムシート作成リクエストです。
type GenerateTimesheetRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// ReviewTimesheetRequest は承認・差し戻しリクエストです。
type ReviewTimesheetRequest struct {
	ReviewerID string  `json:"reviewer_id"`
	Notes      *string `json:"notes,omitempty"`
}

// LeaveRequest は休暇申請の JSON 表現です。
type LeaveRequest struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Type       string     `json:"type"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Days       int        `json:"days"`
	Reason     *string    `json:"reason,omitempty"`
	Status     string     `json:"status"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FromLeaveRequest は休暇申請を変換します。
func FromLeaveRequest(r *leave.Request) LeaveRequest {
	return LeaveRequest{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Type:       string(r.Type),
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Days:       r.Days,
		Reason:     r.Reason,
		Status:     string(r.Status),
		ReviewedBy: r.ReviewedBy,
		ReviewedAt: r.ReviewedAt,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// FromLeaveRequests は一覧を変換します。
func FromLeaveRequests(list []*leave.Request) []LeaveRequest {
	out := make([]LeaveRequest, 0, len(list))
	for _, r := range list {
		out = append(out, FromLeaveRequest(r))
	}
	return out
}

// CreateLeaveRequest は休暇申請リクエストです。EmployeeID を省略するとトークンの社員になります。
type CreateLeaveRequest struct {
	EmployeeID string  `json:"employee_id"`
	Type       string  `json:"type" binding:"required"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	Reason     *string `json:"reason,omitempty"`
}

// ToInput はサービス入力に変換します。
func (r CreateLeaveRequest) ToInput() leave.CreateInput {
	return leave.CreateInput{
		EmployeeID: r.EmployeeID,
		Type:       leave.Type(r.Type),
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Reason:     r.Reason,
	}
}

// ReviewLeaveRequest は承認・却下リクエストです。
type ReviewLeaveRequest struct {
	ReviewerID string  `json:"reviewer_id"`
	Notes      *string `json:"notes,omitempty"`
}

// PayrollItem は給与明細行です。
type PayrollItem struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IsAddition  bool            `json:"is_addition"`
	Category    *string         `json:"category,omitempty"`
}

func fromItems(items []payroll.Item) []PayrollItem {
	out := make([]PayrollItem, 0, len(items))
	for _, it := range items {
		out = append(out, PayrollItem{
			ID:          it.ID,
			Type:        string(it.Type),
			Description: it.Description,
			Amount:      it.Amount,
			IsAddition:  it.IsAddition,
			Category:    it.Category,
		})
	}
	return out
}

// PayrollRecord は給与レコードの JSON 表現です。
type PayrollRecord struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	BasicSalary decimal.Decimal `json:"basic_salary"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	Overtime    decimal.Decimal `json:"overtime"`
	Bonus       decimal.Decimal `json:"bonus"`
	Tax         decimal.Decimal `json:"tax"`
	NetSalary   decimal.Decimal `json:"net_salary"`
	PayDate     string          `json:"pay_date"`
	Status      string          `json:"status"`
	Notes       *string         `json:"notes,omitempty"`
	Items       []PayrollItem   `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FromRecord は給与レコードを変換します。
func FromRecord(r *payroll.Record) PayrollRecord {
	return PayrollRecord{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Month:       r.Month,
		Year:        r.Year,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		BasicSalary: r.BasicSalary,
		Allowances:  r.Allowances,
		Deductions:  r.Deductions,
		Overtime:    r.Overtime,
		Bonus:       r.Bonus,
		Tax:         r.Tax,
		NetSalary:   r.NetSalary,
		PayDate:     r.PayDate,
		Status:      string(r.Status),
		Notes:       r.Notes,
		Items:       fromItems(r.Items),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromRecords は一覧を変換します。
func FromRecords(list []*payroll.Record) []PayrollRecord {
	out := make([]PayrollRecord, 0, len(list))
	for _, r := range list {
		out = append(out, FromRecord(r))
	}
	return out
}

// GeneratePayrollRequest は給与計算リクエストです。Logs を省略すると当月の作業記録を使用します。
type GeneratePayrollRequest struct {
	EmployeeID string    `json:"employee_id" binding:"required"`
	Month      int       `json:"month" binding:"required"`
	Year       int       `json:"year" binding:"required"`
	Logs       []TimeLog `json:"logs,omitempty"`
}

// ToInput はサービス入力に変換します。
func (r GeneratePayrollRequest) ToInput() payroll.GenerateInput {
	in := payroll.GenerateInput{EmployeeID: r.EmployeeID, Month: r.Month, Year: r.Year}
	if r.Logs != nil {
		in.Logs = make([]timelog.TimeLog, 0, len(r.Logs))
		for _, l := range r.Logs {
			in.Logs = append(in.Logs, l.ToDomain())
		}
	}
	return in
}

// UpdatePayrollRecordRequest はレコード更新リクエストです。
type UpdatePayrollRecordRequest struct {
	Status *string          `json:"status,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
	Bonus  *decimal.Decimal `json:"bonus,omitempty"`
}

// ToInput はサービス入力に変換します。
func (r UpdatePayrollRecordRequest) ToInput(id string) payroll.UpdateRecordInput {
	in := payroll.UpdateRecordInput{ID: id, Notes: r.Notes, Bonus: r.Bonus}
	if r.Status != nil {
		s := payroll.Status(*r.Status)
		in.Status = &s
	}
	return in
}

// PayrollPeriod は給与期間の JSON 表現です。
type PayrollPeriod struct {
	ID            string          `json:"id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Status        string          `json:"status"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	ProcessedBy   *string         `json:"processed_by,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	EmployeeCount int             `json:"employee_count"`
}

// FromPeriod は給与期間を変換します。
func FromPeriod(p *payroll.Period) PayrollPeriod {
	return PayrollPeriod{
		ID:            p.ID,
		Month:         p.Month,
		Year:          p.Year,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Status:        string(p.Status),
		ProcessedAt:   p.ProcessedAt,
		ProcessedBy:   p.ProcessedBy,
		TotalAmount:   p.TotalAmount,
		EmployeeCount: p.EmployeeCount,
	}
}

// FromPeriods は一覧を変換します。
func FromPeriods(list []*payroll.Period) []PayrollPeriod {
	out := make([]PayrollPeriod, 0, len(list))
	for _, p := range list {
		out = append(out, FromPeriod(p))
	}
	return out
}

// ProcessPeriodRequest は月次締めリクエストです。
type ProcessPeriodRequest struct {
	Month       int    `json:"month" binding:"required"`
	Year        int    `json:"year" binding:"required"`
	ProcessedBy string `json:"processed_by,omitempty"`
}

// Rule は手当・控除ルールです。
type Rule struct {
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PercentOfBasic decimal.Decimal `json:"percent_of_basic"`
}

func fromRules(rules []payroll.Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Rule{Type: r.Type, Description: r.Description, Amount: r.Amount, PercentOfBasic: r.PercentOfBasic})
	}
	return out
}

func toRules(rules []Rule) []payroll.Rule {
	if rules == nil {
		return nil
	}
	out := make([]payroll.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, payroll.Rule{Type: r.Type, Description: r.Description, Amount: r.Amount, PercentOfBasic: r.PercentOfBasic})
	}
	return out
}

// PayrollSettings は給与設定の JSON 表現です。
type PayrollSettings struct {
	OvertimeRate         decimal.Decimal `json:"overtime_rate"`
	TaxRate              decimal.Decimal `json:"tax_rate"`
	PayDay               int             `json:"pay_day"`
	Currency             string          `json:"currency"`
	TaxYear              int             `json:"tax_year"`
	StandardMonthlyHours decimal.Decimal `json:"standard_monthly_hours"`
	AllowanceTypes       []string        `json:"allowance_types"`
	DeductionTypes       []string        `json:"deduction_types"`
	AllowanceRules       []Rule          `json:"allowance_rules"`
	DeductionRules       []Rule          `json:"deduction_rules"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// FromSettings は給与設定を変換します。
func FromSettings(s *payroll.Settings) PayrollSettings {
	return PayrollSettings{
		OvertimeRate:         s.OvertimeRate,
		TaxRate:              s.TaxRate,
		PayDay:               s.PayDay,
		Currency:             s.Currency,
		TaxYear:              s.TaxYear,
		StandardMonthlyHours: s.StandardMonthlyHours,
		AllowanceTypes:       s.AllowanceTypes,
		DeductionTypes:       s.DeductionTypes,
		AllowanceRules:       fromRules(s.AllowanceRules),
		DeductionRules:       fromRules(s.DeductionRules),
		UpdatedAt:            s.UpdatedAt,
	}
}

// UpdateSettingsRequest は設定の部分更新リクエストです。
type UpdateSettingsRequest struct {
	OvertimeRate         *decimal.Decimal `json:"overtime_rate,omitempty"`
	TaxRate              *decimal.Decimal `json:"tax_rate,omitempty"`
	PayDay               *int             `json:"pay_day,omitempty"`
	Currency             *string          `json:"currency,omitempty"`
	TaxYear              *int             `json:"tax_year,omitempty"`
	StandardMonthlyHours *decimal.Decimal `json:"standard_monthly_hours,omitempty"`
	AllowanceTypes       []string         `json:"allowance_types,omitempty"`
	DeductionTypes       []string         `json:"deduction_types,omitempty"`
	AllowanceRules       []Rule           `json:"allowance_rules,omitempty"`
	DeductionRules       []Rule           `json:"deduction_rules,omitempty"`
}

// ToPatch は設定パッチに変換します。
func (r UpdateSettingsRequest) ToPatch() payroll.SettingsPatch {
	return payroll.SettingsPatch{
		OvertimeRate:         r.OvertimeRate,
		TaxRate:              r.TaxRate,
		PayDay:               r.PayDay,
		Currency:             r.Currency,
		TaxYear:              r.TaxYear,
		StandardMonthlyHours: r.StandardMonthlyHours,
		AllowanceTypes:       r.AllowanceTypes,
		DeductionTypes:       r.DeductionTypes,
		AllowanceRules:       toRules(r.AllowanceRules),
		DeductionRules:       toRules(r.DeductionRules),
	}
}

// Payslip は給与明細の JSON 表現です。
type Payslip struct {
	ID              string          `json:"id"`
	RecordID        string          `json:"record_id"`
	EmployeeID      string          `json:"employee_id"`
	Period          string          `json:"period"`
	IssueDate       string          `json:"issue_date"`
	Items           []PayrollItem   `json:"items"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	Currency        string          `json:"currency"`
	Notes           *string         `json:"notes,omitempty"`
	Status          string          `json:"status"`
	SentAt          *time.Time      `json:"sent_at,omitempty"`
	AcknowledgedAt  *time.Time      `json:"acknowledged_at,omitempty"`
}

// FromPayslip は給与明細を変換します。
func FromPayslip(p *payslip.Payslip) Payslip {
	return Payslip{
		ID:              p.ID,
		RecordID:        p.RecordID,
		EmployeeID:      p.EmployeeID,
		Period:          p.Period,
		IssueDate:       p.IssueDate.Format(dateLayout),
		Items:           fromItems(p.Items),
		GrossPay:        p.GrossPay,
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetPay,
		Currency:        p.Currency,
		Notes:           p.Notes,
		Status:          string(p.Status),
		SentAt:          p.SentAt,
		AcknowledgedAt:  p.AcknowledgedAt,
	}
}

// FromPayslips は一覧を変換します。
func FromPayslips(list []*payslip.Payslip) []Payslip {
	out := make([]Payslip, 0, len(list))
	for _, p := range list {
		out = append(out, FromPayslip(p))
	}
	return out
}

// Employee は社員の JSON 表現です。
type Employee struct {
	ID           string          `json:"id"`
	EmployeeCode string          `json:"employee_code"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Phone        *string         `json:"phone,omitempty"`
	Position     *string         `json:"position,omitempty"`
	DepartmentID *string         `json:"department_id,omitempty"`
	ManagerID    *string         `json:"manager_id,omitempty"`
	Status       string          `json:"status"`
	StartDate    *string         `json:"start_date,omitempty"`
	EndDate      *string         `json:"end_date,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromEmployee は社員を変換します。
func FromEmployee(e *employee.Employee) Employee {
	return Employee{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Email:        e.Email,
		Phone:        e.Phone,
		Position:     e.Position,
		DepartmentID: e.DepartmentID,
		ManagerID:    e.ManagerID,
		Status:       string(e.Status),
		StartDate:    formatDate(e.StartDate),
		EndDate:      formatDate(e.EndDate),
		Salary:       e.Salary,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// FromEmployees は一覧を変換します。
func FromEmployees(list []*employee.Employee) []Employee {
	out := make([]Employee, 0, len(list))
	for _, e := range list {
		out = append(out, FromEmployee(e))
	}
	return out
}

// Department は部署の JSON 表現です。
type Department struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	HeadEmployeeID *string   `json:"head_employee_id,omitempty"`
	ParentID       *string   `json:"parent_id,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromDepartment は部署を変換します。
func FromDepartment(d *department.Department) Department {
	return Department{
		ID:             d.ID,
		Name:           d.Name,
		Code:           d.Code,
		HeadEmployeeID: d.HeadEmployeeID,
		ParentID:       d.ParentID,
		Description:    d.Description,
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// FromDepartments は一覧を変換します。
func FromDepartments(list []*department.Department) []Department {
	out := make([]Department, 0, len(list))
	for _, d := range list {
		out = append(out, FromDepartment(d))
	}
	return out
}

// CreateDepartmentRequest は部署作成リクエストです。
type CreateDepartmentRequest struct {
	Name           string  `json:"name" binding:"required"`
	Code           string  `json:"code" binding:"required"`
	HeadEmployeeID *string `json:"head_employee_id,omitempty"`
	ParentID       *string `json:"parent_id,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// UpdateDepartmentRequest は部署更新リクエストです。parent_id に空文字を渡すと親を外します。
type UpdateDepartmentRequest struct {
	Name           *string `json:"name,omitempty"`
	Code           *string `json:"code,omitempty"`
	Status         *string `json:"status,omitempty"`
	HeadEmployeeID *string `json:"head_employee_id,omitempty"`
	ParentID       *string `json:"parent_id,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// ToInput はサービス入力に変換します。
func (r UpdateDepartmentRequest) ToInput(id string) department.UpdateDepartmentInput {
	in := department.UpdateDepartmentInput{
		ID:             id,
		Name:           r.Name,
		Code:           r.Code,
		HeadEmployeeID: r.HeadEmployeeID,
		Description:    r.Description,
	}
	if r.Status != nil {
		s := department.Status(*r.Status)
		in.Status = &s
	}
	if r.ParentID != nil {
		in.ParentIDSet = true
		if *r.ParentID != "" {
			in.ParentID = r.ParentID
		}
	}
	return in
}

// UpdateEmployeeRequest は社員更新リクエストです。日付は YYYY-MM-DD、空文字でクリアします。
type UpdateEmployeeRequest struct {
	EmployeeCode *string          `json:"employee_code,omitempty"`
	FirstName    *string          `json:"first_name,omitempty"`
	LastName     *string          `json:"last_name,omitempty"`
	Email        *string          `json:"email,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	Position     *string          `json:"position,omitempty"`
	DepartmentID *string          `json:"department_id,omitempty"`
	ManagerID    *string          `json:"manager_id,omitempty"`
	Status       *string          `json:"status,omitempty"`
	StartDate    *string          `json:"start_date,omitempty"`
	EndDate      *string          `json:"end_date,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
}

// ToInput はサービス入力に変換します。日付形式が不正な場合は employee.ErrInvalidDateRange を返します。
func (r UpdateEmployeeRequest) ToInput(id string) (employee.UpdateEmployeeInput, error) {
	in := employee.UpdateEmployeeInput{
		ID:           id,
		EmployeeCode: r.EmployeeCode,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		Position:     r.Position,
		Salary:       r.Salary,
	}
	if r.Status != nil {
		s := employee.Status(*r.Status)
		in.Status = &s
	}
	if r.DepartmentID != nil {
		in.DepartmentIDSet = true
		if *r.DepartmentID != "" {
			in.DepartmentID = r.DepartmentID
		}
	}
	if r.ManagerID != nil {
		in.ManagerIDSet = true
		if *r.ManagerID != "" {
			in.ManagerID = r.ManagerID
		}
	}
	if r.StartDate != nil {
		t, err := parseDate(*r.StartDate)
		if err != nil {
			return employee.UpdateEmployeeInput{}, err
		}
		in.StartDateSet = true
		in.StartDate = t
	}
	if r.EndDate != nil {
		t, err := parseDate(*r.EndDate)
		if err != nil {
			return employee.UpdateEmployeeInput{}, err
		}
		in.EndDateSet = true
		in.EndDate = t
	}
	return in, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, employee.ErrInvalidDateRange
	}
	return &t, nil
}
