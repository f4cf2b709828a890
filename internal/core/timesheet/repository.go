package timesheet

import "context"

// Repository はタイムシート永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, sheet *Timesheet) (*Timesheet, error)
	// Upsert は (EmployeeID, PeriodStart, PeriodEnd) が一致する既存レコードを置き換えます。
	Upsert(ctx context.Context, sheet *Timesheet) (*Timesheet, error)
	Update(ctx context.Context, sheet *Timesheet) (*Timesheet, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Timesheet, error)
	List(ctx context.Context, filter ListFilter) ([]*Timesheet, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	EmployeeID string
	Status     *Status
}
