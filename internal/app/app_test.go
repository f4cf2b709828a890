package app

import (
	"context"
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
	"github.com/ogurasousui/codex-hr-payroll/internal/platform/config"
	"github.com/shopspring/decimal"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func TestNewServices_PayrollFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svcs := NewServices(MemoryRepositories(), Options{
		Clock: fixedClock{now: time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)},
	})

	dept, err := svcs.Departments.CreateDepartment(ctx, department.CreateDepartmentInput{Name: "Engineering", Code: "eng"})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}

	emp, err := svcs.Employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		EmployeeCode: "E-001",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		DepartmentID: &dept.ID,
		Salary:       decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	for _, day := range []int{4, 5} {
		_, err := svcs.TimeLogs.AddLog(ctx, timelog.AddLogInput{
			EmployeeID: emp.ID,
			StartTime:  time.Date(2024, 3, day, 13, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2024, 3, day, 18, 0, 0, 0, time.UTC),
			Type:       timelog.TypeOvertime,
		})
		if err != nil {
			t.Fatalf("AddLog returned error: %v", err)
		}
	}

	sheet, err := svcs.Timesheets.Generate(ctx, timesheet.GenerateInput{
		EmployeeID:  emp.ID,
		PeriodStart: "2024-03-01",
		PeriodEnd:   "2024-03-31",
	})
	if err != nil {
		t.Fatalf("Generate timesheet returned error: %v", err)
	}
	if sheet.TotalMinutes != 600 || sheet.OvertimeMinutes != 600 {
		t.Fatalf("unexpected timesheet totals: %+v", sheet)
	}

	record, err := svcs.Payroll.GeneratePayroll(ctx, payroll.GenerateInput{EmployeeID: emp.ID, Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("GeneratePayroll returned error: %v", err)
	}
	if !record.Overtime.Equal(decimal.RequireFromString("468.75")) {
		t.Errorf("expected overtime 468.75, got %s", record.Overtime)
	}
	if !record.Tax.Equal(decimal.RequireFromString("895.31")) {
		t.Errorf("expected tax 895.31, got %s", record.Tax)
	}
	if !record.NetSalary.Equal(decimal.RequireFromString("4873.44")) {
		t.Errorf("expected net 4873.44, got %s", record.NetSalary)
	}

	slip, err := svcs.Payslips.Generate(ctx, record.ID)
	if err != nil {
		t.Fatalf("Generate payslip returned error: %v", err)
	}
	if !slip.NetPay.Equal(record.NetSalary) {
		t.Errorf("payslip net %s does not match record net %s", slip.NetPay, record.NetSalary)
	}
}

func TestNewServices_UnknownEmployee(t *testing.T) {
	t.Parallel()

	svcs := NewServices(MemoryRepositories(), Options{})

	_, err := svcs.Payroll.GeneratePayroll(context.Background(), payroll.GenerateInput{EmployeeID: "missing", Month: 1, Year: 2024})
	if err == nil {
		t.Fatal("expected error for unknown employee")
	}
}

func TestPayrollDefaults(t *testing.T) {
	t.Parallel()

	taxRate := 20.0
	s := PayrollDefaults(config.PayrollConfig{TaxRate: &taxRate, Currency: "JPY"})

	if !s.TaxRate.Equal(decimal.NewFromInt(20)) || s.Currency != "JPY" {
		t.Fatalf("expected overrides applied, got %+v", s)
	}
	if !s.OvertimeRate.Equal(decimal.RequireFromString("1.5")) || s.PayDay != 25 {
		t.Fatalf("expected defaults kept, got %+v", s)
	}
}

func TestPayrollDefaults_ExplicitZero(t *testing.T) {
	t.Parallel()

	zero := 0.0
	s := PayrollDefaults(config.PayrollConfig{TaxRate: &zero, OvertimeRate: &zero})

	if !s.TaxRate.IsZero() || !s.OvertimeRate.IsZero() {
		t.Fatalf("expected explicit zero rates kept, got tax=%s overtime=%s", s.TaxRate, s.OvertimeRate)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected zero rates to be valid settings, got %v", err)
	}
}
