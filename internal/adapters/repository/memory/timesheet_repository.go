package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
)

// TimesheetRepository はメモリ上のタイムシートリポジトリです。
type TimesheetRepository struct {
	mu     sync.RWMutex
	sheets map[string]*timesheet.Timesheet
}

// NewTimesheetRepository は TimesheetRepository を生成します。
func NewTimesheetRepository() *TimesheetRepository {
	return &TimesheetRepository{sheets: make(map[string]*timesheet.Timesheet)}
}

// Create はタイムシートを追加します。
func (r *TimesheetRepository) Create(_ context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sheets[t.ID] = t.Clone()
	return t.Clone(), nil
}

// Upsert は ID をキーに作成または置き換えます。置き換え時も CreatedAt は保持します。
func (r *TimesheetRepository) Upsert(_ context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := t.Clone()
	if existing, ok := r.sheets[t.ID]; ok {
		next.CreatedAt = existing.CreatedAt
	}
	r.sheets[t.ID] = next
	return next.Clone(), nil
}

// Update はタイムシートを置き換えます。
func (r *TimesheetRepository) Update(_ context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sheets[t.ID]; !ok {
		return nil, timesheet.ErrTimesheetNotFound
	}
	r.sheets[t.ID] = t.Clone()
	return t.Clone(), nil
}

// Delete はタイムシートを削除します。
func (r *TimesheetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sheets[id]; !ok {
		return timesheet.ErrTimesheetNotFound
	}
	delete(r.sheets, id)
	return nil
}

// FindByID は ID でタイムシートを取得します。
func (r *TimesheetRepository) FindByID(_ context.Context, id string) (*timesheet.Timesheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.sheets[id]
	if !ok {
		return nil, timesheet.ErrTimesheetNotFound
	}
	return t.Clone(), nil
}

// List は条件に一致するタイムシートを期間開始日の新しい順に返します。
func (r *TimesheetRepository) List(_ context.Context, filter timesheet.ListFilter) ([]*timesheet.Timesheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*timesheet.Timesheet, 0)
	for _, t := range r.sheets {
		if filter.EmployeeID != "" && t.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PeriodStart != out[j].PeriodStart {
			return out[i].PeriodStart > out[j].PeriodStart
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
