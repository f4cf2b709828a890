package department

import "context"

// Repository は部署エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, department *Department) (*Department, error)
	Update(ctx context.Context, department *Department) (*Department, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindByCode(ctx context.Context, code string) (*Department, error)
	List(ctx context.Context, filter ListDepartmentsFilter) ([]*Department, string, error)
}

// ListDepartmentsFilter は一覧取得時の検索条件を表します。
type ListDepartmentsFilter struct {
	Limit    int
	Offset   int
	Status   *Status
	ParentID *string
}

// Matches は部署がフィルタ条件に一致するかを判定します。ページングは含みません。
func (f ListDepartmentsFilter) Matches(d *Department) bool {
	if f.Status != nil && d.Status != *f.Status {
		return false
	}
	if f.ParentID != nil && (d.ParentID == nil || *d.ParentID != *f.ParentID) {
		return false
	}
	return true
}
