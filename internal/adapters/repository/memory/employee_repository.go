package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
)

// EmployeeRepository はメモリ上の社員リポジトリです。
type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*employee.Employee
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{employees: make(map[string]*employee.Employee)}
}

// Create は社員を追加します。ID が空の場合は採番します。
func (r *EmployeeRepository) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(e); err != nil {
		return nil, err
	}

	stored := e.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.employees[stored.ID] = stored
	return stored.Clone(), nil
}

// Update は社員を置き換えます。
func (r *EmployeeRepository) Update(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[e.ID]; !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	if err := r.checkUnique(e); err != nil {
		return nil, err
	}
	r.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

// FindByCode は社員コードで社員を取得します。
func (r *EmployeeRepository) FindByCode(_ context.Context, code string) (*employee.Employee, error) {
	return r.findBy(func(e *employee.Employee) bool { return e.EmployeeCode == code })
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(_ context.Context, email string) (*employee.Employee, error) {
	return r.findBy(func(e *employee.Employee) bool { return e.Email == email })
}

// List は条件に一致する社員を作成日時の新しい順に返します。
func (r *EmployeeRepository) List(_ context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*employee.Employee, 0)
	for _, e := range r.employees {
		if filter.Matches(e) {
			matched = append(matched, e.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	page, next := paginate(matched, filter.Limit, filter.Offset)
	return page, next, nil
}

func (r *EmployeeRepository) findBy(match func(*employee.Employee) bool) (*employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.employees {
		if match(e) {
			return e.Clone(), nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (r *EmployeeRepository) checkUnique(e *employee.Employee) error {
	for _, existing := range r.employees {
		if existing.ID == e.ID {
			continue
		}
		if existing.EmployeeCode == e.EmployeeCode {
			return employee.ErrEmployeeCodeAlreadyExists
		}
		if existing.Email == e.Email {
			return employee.ErrEmailAlreadyExists
		}
	}
	return nil
}
