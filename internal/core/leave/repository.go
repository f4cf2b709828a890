package leave

import "context"

// Repository は休暇申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, req *Request) (*Request, error)
	Update(ctx context.Context, req *Request) (*Request, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Request, error)
	// List は開始日の新しい順に返します。
	List(ctx context.Context, filter ListFilter) ([]*Request, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	EmployeeID string
	Status     *Status
	Type       *Type
}
