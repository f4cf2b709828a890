package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
)

// DepartmentRepository はメモリ上の部署リポジトリです。
type DepartmentRepository struct {
	mu          sync.RWMutex
	departments map[string]*department.Department
}

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository() *DepartmentRepository {
	return &DepartmentRepository{departments: make(map[string]*department.Department)}
}

// Create は部署を追加します。ID が空の場合は採番します。
func (r *DepartmentRepository) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.departments {
		if existing.Code == d.Code {
			return nil, department.ErrCodeAlreadyExists
		}
	}

	stored := d.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.departments[stored.ID] = stored
	return stored.Clone(), nil
}

// Update は部署を置き換えます。
func (r *DepartmentRepository) Update(_ context.Context, d *department.Department) (*department.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.departments[d.ID]; !ok {
		return nil, department.ErrDepartmentNotFound
	}
	for _, existing := range r.departments {
		if existing.ID != d.ID && existing.Code == d.Code {
			return nil, department.ErrCodeAlreadyExists
		}
	}
	r.departments[d.ID] = d.Clone()
	return d.Clone(), nil
}

// Delete は部署を削除します。
func (r *DepartmentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.departments[id]; !ok {
		return department.ErrDepartmentNotFound
	}
	delete(r.departments, id)
	return nil
}

// FindByID は ID で部署を取得します。
func (r *DepartmentRepository) FindByID(_ context.Context, id string) (*department.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.departments[id]
	if !ok {
		return nil, department.ErrDepartmentNotFound
	}
	return d.Clone(), nil
}

// FindByCode はコードで部署を取得します。
func (r *DepartmentRepository) FindByCode(_ context.Context, code string) (*department.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.departments {
		if d.Code == code {
			return d.Clone(), nil
		}
	}
	return nil, department.ErrDepartmentNotFound
}

// List は条件に一致する部署を名前順に返します。
func (r *DepartmentRepository) List(_ context.Context, filter department.ListDepartmentsFilter) ([]*department.Department, string, error) {
	if filter.Limit <= 0 {
		return nil, "", department.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", department.ErrInvalidPageToken
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*department.Department, 0)
	for _, d := range r.departments {
		if filter.Matches(d) {
			matched = append(matched, d.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}
