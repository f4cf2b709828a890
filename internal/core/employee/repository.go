package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByCode(ctx context.Context, employeeCode string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	DepartmentID string
	ManagerID    string
	Status       *Status
	Limit        int
	Offset       int
}

// Matches は社員がフィルタ条件に一致するかを判定します。ページングは含みません。
func (f ListEmployeesFilter) Matches(e *Employee) bool {
	if f.DepartmentID != "" && (e.DepartmentID == nil || *e.DepartmentID != f.DepartmentID) {
		return false
	}
	if f.ManagerID != "" && (e.ManagerID == nil || *e.ManagerID != f.ManagerID) {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	return true
}

// DepartmentChecker は部署の存在確認を行います。存在しない場合は ErrDepartmentNotFound を返します。
type DepartmentChecker interface {
	EnsureDepartment(ctx context.Context, id string) error
}
