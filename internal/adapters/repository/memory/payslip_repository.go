package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
)

// PayslipRepository はメモリ上の給与明細リポジトリです。
type PayslipRepository struct {
	mu    sync.RWMutex
	slips map[string]*payslip.Payslip
}

// NewPayslipRepository は PayslipRepository を生成します。
func NewPayslipRepository() *PayslipRepository {
	return &PayslipRepository{slips: make(map[string]*payslip.Payslip)}
}

// Upsert は ID をキーに作成または置き換えます。
func (r *PayslipRepository) Upsert(_ context.Context, p *payslip.Payslip) (*payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slips[p.ID] = p.Clone()
	return p.Clone(), nil
}

// Update は既存の明細を置き換えます。
func (r *PayslipRepository) Update(_ context.Context, p *payslip.Payslip) (*payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slips[p.ID]; !ok {
		return nil, payslip.ErrPayslipNotFound
	}
	r.slips[p.ID] = p.Clone()
	return p.Clone(), nil
}

// FindByID は ID で明細を取得します。
func (r *PayslipRepository) FindByID(_ context.Context, id string) (*payslip.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.slips[id]
	if !ok {
		return nil, payslip.ErrPayslipNotFound
	}
	return p.Clone(), nil
}

// List は明細を発行日の新しい順に返します。
func (r *PayslipRepository) List(_ context.Context, employeeID string) ([]*payslip.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payslip.Payslip, 0)
	for _, p := range r.slips {
		if employeeID != "" && p.EmployeeID != employeeID {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssueDate.Equal(out[j].IssueDate) {
			return out[i].IssueDate.After(out[j].IssueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
