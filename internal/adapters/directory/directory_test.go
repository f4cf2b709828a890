package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/shopspring/decimal"
)

type stubEmployees struct {
	emp *employee.Employee
	err error
}

func (s stubEmployees) GetEmployee(context.Context, employee.GetEmployeeInput) (*employee.Employee, error) {
	return s.emp, s.err
}

type stubDepartments struct {
	err error
}

func (s stubDepartments) EnsureDepartment(context.Context, string) error {
	return s.err
}

func TestPayrollDirectory_LookupEmployee(t *testing.T) {
	t.Parallel()

	dept := "dep-1"
	dir := NewPayrollDirectory(stubEmployees{emp: &employee.Employee{
		ID: "emp-1", FirstName: "Taro", LastName: "Yamada", DepartmentID: &dept, Salary: decimal.NewFromInt(5000),
	}})

	snap, err := dir.LookupEmployee(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("LookupEmployee returned error: %v", err)
	}
	if snap.Name != "Taro Yamada" || snap.DepartmentID != "dep-1" || !snap.Salary.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	missing := NewPayrollDirectory(stubEmployees{err: employee.ErrEmployeeNotFound})
	if _, err := missing.LookupEmployee(context.Background(), "x"); !errors.Is(err, payroll.ErrEmployeeNotFound) {
		t.Fatalf("expected payroll.ErrEmployeeNotFound, got %v", err)
	}

	boom := errors.New("db down")
	failing := NewPayrollDirectory(stubEmployees{err: boom})
	if _, err := failing.LookupEmployee(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
}

func TestDepartmentChecker(t *testing.T) {
	t.Parallel()

	if err := NewDepartmentChecker(stubDepartments{}).EnsureDepartment(context.Background(), "dep-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := NewDepartmentChecker(stubDepartments{err: department.ErrDepartmentNotFound}).EnsureDepartment(context.Background(), "x")
	if !errors.Is(err, employee.ErrDepartmentNotFound) {
		t.Fatalf("expected employee.ErrDepartmentNotFound, got %v", err)
	}
}
