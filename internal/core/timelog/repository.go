package timelog

import "context"

// Repository は作業記録の永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, log *TimeLog) (*TimeLog, error)
	Update(ctx context.Context, log *TimeLog) (*TimeLog, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*TimeLog, error)
	List(ctx context.Context, filter ListFilter) ([]*TimeLog, error)
}

// ListFilter は一覧取得用フィルタです。From/To は YYYY-MM-DD で両端を含みます。
type ListFilter struct {
	EmployeeID string
	From       string
	To         string
	Type       *Type
}

// Matches はフィルタ条件に一致するかを返します。
func (f ListFilter) Matches(l *TimeLog) bool {
	if f.EmployeeID != "" && l.EmployeeID != f.EmployeeID {
		return false
	}
	if f.From != "" && l.Date < f.From {
		return false
	}
	if f.To != "" && l.Date > f.To {
		return false
	}
	if f.Type != nil && l.Type != *f.Type {
		return false
	}
	return true
}
