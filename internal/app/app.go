// Package app はリポジトリとユースケースを組み立てます。
package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/directory"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
	"github.com/ogurasousui/codex-hr-payroll/internal/platform/config"
	"github.com/shopspring/decimal"
)

// Clock は全ユースケースで共有する時刻取得です。
type Clock interface {
	Now() time.Time
}

// TransactionManager は全ユースケースで共有するトランザクション境界です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Repositories はユースケースが利用する永続化の実装一式です。
type Repositories struct {
	TimeLogs      timelog.Repository
	Timesheets    timesheet.Repository
	Records       payroll.RecordRepository
	Periods       payroll.PeriodRepository
	Settings      payroll.SettingsRepository
	Payslips      payslip.Repository
	Employees     employee.Repository
	Departments   department.Repository
	Leave         leave.Repository
	TimerSessions timer.SessionStore
}

// MemoryRepositories はプロセス内メモリのリポジトリを返します。
func MemoryRepositories() Repositories {
	return Repositories{
		TimeLogs:      memory.NewTimeLogRepository(),
		Timesheets:    memory.NewTimesheetRepository(),
		Records:       memory.NewPayrollRecordRepository(),
		Periods:       memory.NewPayrollPeriodRepository(),
		Settings:      memory.NewPayrollSettingsRepository(),
		Payslips:      memory.NewPayslipRepository(),
		Employees:     memory.NewEmployeeRepository(),
		Departments:   memory.NewDepartmentRepository(),
		Leave:         memory.NewLeaveRepository(),
		TimerSessions: memory.NewTimerSessionStore(),
	}
}

// PostgresRepositories は PostgreSQL のリポジトリを返します。タイマーはメモリ保持です。
func PostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		TimeLogs:      postgres.NewTimeLogRepository(pool),
		Timesheets:    postgres.NewTimesheetRepository(pool),
		Records:       postgres.NewPayrollRecordRepository(pool),
		Periods:       postgres.NewPayrollPeriodRepository(pool),
		Settings:      postgres.NewPayrollSettingsRepository(pool),
		Payslips:      postgres.NewPayslipRepository(pool),
		Employees:     postgres.NewEmployeeRepository(pool),
		Departments:   postgres.NewDepartmentRepository(pool),
		Leave:         postgres.NewLeaveRepository(pool),
		TimerSessions: memory.NewTimerSessionStore(),
	}
}

// Options はユースケースの組み立て設定です。
type Options struct {
	Clock           Clock
	Tx              TransactionManager
	DuplicatePolicy timesheet.DuplicatePolicy
	PayrollDefaults *payroll.Settings
}

// Services は組み立て済みのユースケースです。
type Services struct {
	TimeLogs    *timelog.Service
	Timer       *timer.Service
	Timesheets  *timesheet.Service
	Payroll     *payroll.Service
	Payslips    *payslip.Service
	Employees   *employee.Service
	Departments *department.Service
	Leave       *leave.Service
}

// NewServices はリポジトリからユースケースを組み立てます。
func NewServices(repos Repositories, opts Options) *Services {
	clock, tx := opts.Clock, opts.Tx

	departments := department.NewService(repos.Departments, clock, tx)
	employees := employee.NewService(repos.Employees, clock, tx,
		employee.WithDepartmentChecker(directory.NewDepartmentChecker(departments)))

	logs := timelog.NewService(repos.TimeLogs, clock, tx)
	timers := timer.NewService(repos.TimerSessions, logs, clock)

	policy := opts.DuplicatePolicy
	if policy == "" {
		policy = timesheet.PolicyAppend
	}
	sheets := timesheet.NewService(repos.Timesheets, logs, clock, tx, timesheet.WithDuplicatePolicy(policy))

	var payrollOpts []payroll.Option
	if opts.PayrollDefaults != nil {
		payrollOpts = append(payrollOpts, payroll.WithDefaultSettings(*opts.PayrollDefaults))
	}
	payrolls := payroll.NewService(repos.Records, repos.Periods, repos.Settings,
		directory.NewPayrollDirectory(employees), logs, clock, tx, payrollOpts...)

	slips := payslip.NewService(repos.Payslips, payrolls, payrolls, clock)

	return &Services{
		TimeLogs:    logs,
		Timer:       timers,
		Timesheets:  sheets,
		Payroll:     payrolls,
		Payslips:    slips,
		Employees:   employees,
		Departments: departments,
		Leave:       leave.NewService(repos.Leave, clock, tx),
	}
}

// PayrollDefaults は設定ファイルの値で既定の給与設定を上書きします。
// 率は指定があれば 0 でも使い、その他の 0 や空文字は既定値のままです。
func PayrollDefaults(cfg config.PayrollConfig) payroll.Settings {
	s := payroll.DefaultSettings()
	if cfg.OvertimeRate != nil {
		s.OvertimeRate = decimal.NewFromFloat(*cfg.OvertimeRate)
	}
	if cfg.TaxRate != nil {
		s.TaxRate = decimal.NewFromFloat(*cfg.TaxRate)
	}
	if cfg.PayDay > 0 {
		s.PayDay = cfg.PayDay
	}
	if cfg.Currency != "" {
		s.Currency = cfg.Currency
	}
	if cfg.StandardMonthlyHours > 0 {
		s.StandardMonthlyHours = decimal.NewFromFloat(cfg.StandardMonthlyHours)
	}
	return s
}
