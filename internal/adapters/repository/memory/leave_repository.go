package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
)

// LeaveRepository はメモリ上の休暇申請リポジトリです。
type LeaveRepository struct {
	mu       sync.RWMutex
	requests map[string]*leave.Request
}

// NewLeaveRepository は LeaveRepository を生成します。
func NewLeaveRepository() *LeaveRepository {
	return &LeaveRepository{requests: make(map[string]*leave.Request)}
}

// Create は申請を追加します。
func (r *LeaveRepository) Create(_ context.Context, req *leave.Request) (*leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[req.ID] = req.Clone()
	return req.Clone(), nil
}

// Update は申請を置き換えます。
func (r *LeaveRepository) Update(_ context.Context, req *leave.Request) (*leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; !ok {
		return nil, leave.ErrRequestNotFound
	}
	r.requests[req.ID] = req.Clone()
	return req.Clone(), nil
}

// Delete は申請を削除します。
func (r *LeaveRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[id]; !ok {
		return leave.ErrRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

// FindByID は ID で申請を取得します。
func (r *LeaveRepository) FindByID(_ context.Context, id string) (*leave.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return req.Clone(), nil
}

// List は条件に一致する申請を開始日の新しい順に返します。
func (r *LeaveRepository) List(_ context.Context, filter leave.ListFilter) ([]*leave.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*leave.Request, 0)
	for _, req := range r.requests {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && req.Type != *filter.Type {
			continue
		}
		out = append(out, req.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate > out[j].StartDate
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
