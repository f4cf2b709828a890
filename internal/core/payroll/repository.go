package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// RecordRepository は給与レコード永続化の抽象です。明細行はレコードと一緒に保存します。
type RecordRepository interface {
	Upsert(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter RecordFilter) ([]*Record, error)
}

// RecordFilter は給与レコードの一覧取得用フィルタです。
type RecordFilter struct {
	EmployeeID string
	Month      *int
	Year       *int
	Status     *Status
}

// Matches はレコードがフィルタ条件に一致するかを判定します。
func (f RecordFilter) Matches(r *Record) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Month != nil && r.Month != *f.Month {
		return false
	}
	if f.Year != nil && r.Year != *f.Year {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	return true
}

// PeriodRepository は給与期間永続化の抽象です。
type PeriodRepository interface {
	Upsert(ctx context.Context, period *Period) (*Period, error)
	FindByID(ctx context.Context, id string) (*Period, error)
	List(ctx context.Context, year *int) ([]*Period, error)
}

// SettingsRepository は給与設定永続化の抽象です。未保存の場合 Get は ErrSettingsNotFound を返します。
type SettingsRepository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) (*Settings, error)
}

// EmployeeDirectory は給与計算に必要な社員情報を提供します。
// 該当社員がいない場合は ErrEmployeeNotFound を返します。
type EmployeeDirectory interface {
	LookupEmployee(ctx context.Context, employeeID string) (*EmployeeSnapshot, error)
}

// EmployeeSnapshot は給与計算時点の社員情報です。
type EmployeeSnapshot struct {
	ID           string
	Name         string
	DepartmentID string
	Salary       decimal.Decimal
}
