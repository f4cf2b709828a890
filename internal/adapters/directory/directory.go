// Package directory は社員・部署のユースケースを他ドメインが必要とする形に変換します。
package directory

import (
	"context"
	"errors"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
)

// EmployeeFinder は社員を ID で取得します。
type EmployeeFinder interface {
	GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error)
}

// PayrollDirectory は社員ユースケースを給与計算の社員参照として公開します。
type PayrollDirectory struct {
	employees EmployeeFinder
}

// NewPayrollDirectory は PayrollDirectory を生成します。
func NewPayrollDirectory(employees EmployeeFinder) *PayrollDirectory {
	return &PayrollDirectory{employees: employees}
}

// LookupEmployee は社員の給与計算用スナップショットを返します。
func (d *PayrollDirectory) LookupEmployee(ctx context.Context, employeeID string) (*payroll.EmployeeSnapshot, error) {
	e, err := d.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: employeeID})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) || errors.Is(err, employee.ErrInvalidID) {
			return nil, payroll.ErrEmployeeNotFound
		}
		return nil, err
	}

	snapshot := &payroll.EmployeeSnapshot{ID: e.ID, Name: e.FullName(), Salary: e.Salary}
	if e.DepartmentID != nil {
		snapshot.DepartmentID = *e.DepartmentID
	}
	return snapshot, nil
}

// DepartmentFinder は部署の存在確認を行います。
type DepartmentFinder interface {
	EnsureDepartment(ctx context.Context, id string) error
}

// DepartmentChecker は部署ユースケースを社員登録時の存在確認として公開します。
type DepartmentChecker struct {
	departments DepartmentFinder
}

// NewDepartmentChecker は DepartmentChecker を生成します。
func NewDepartmentChecker(departments DepartmentFinder) *DepartmentChecker {
	return &DepartmentChecker{departments: departments}
}

// EnsureDepartment は部署が存在しない場合 employee.ErrDepartmentNotFound を返します。
func (c *DepartmentChecker) EnsureDepartment(ctx context.Context, id string) error {
	err := c.departments.EnsureDepartment(ctx, id)
	if errors.Is(err, department.ErrDepartmentNotFound) || errors.Is(err, department.ErrInvalidID) {
		return employee.ErrDepartmentNotFound
	}
	return err
}
