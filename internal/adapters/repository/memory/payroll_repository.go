package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
)

// PayrollRecordRepository はメモリ上の給与レコードリポジトリです。
type PayrollRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*payroll.Record
}

// NewPayrollRecordRepository は PayrollRecordRepository を生成します。
func NewPayrollRecordRepository() *PayrollRecordRepository {
	return &PayrollRecordRepository{records: make(map[string]*payroll.Record)}
}

// Upsert は ID (社員-月-年) をキーに作成または置き換えます。
func (r *PayrollRecordRepository) Upsert(_ context.Context, rec *payroll.Record) (*payroll.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.ID] = rec.Clone()
	return rec.Clone(), nil
}

// Update は既存の給与レコードを置き換えます。
func (r *PayrollRecordRepository) Update(_ context.Context, rec *payroll.Record) (*payroll.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; !ok {
		return nil, payroll.ErrRecordNotFound
	}
	r.records[rec.ID] = rec.Clone()
	return rec.Clone(), nil
}

// Delete は給与レコードを削除します。
func (r *PayrollRecordRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return payroll.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

// FindByID は ID で給与レコードを取得します。
func (r *PayrollRecordRepository) FindByID(_ context.Context, id string) (*payroll.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, payroll.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// List は条件に一致する給与レコードを年月の新しい順・社員 ID 順に返します。
func (r *PayrollRecordRepository) List(_ context.Context, filter payroll.RecordFilter) ([]*payroll.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payroll.Record, 0)
	for _, rec := range r.records {
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// PayrollPeriodRepository はメモリ上の給与期間リポジトリです。
type PayrollPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]*payroll.Period
}

// NewPayrollPeriodRepository は PayrollPeriodRepository を生成します。
func NewPayrollPeriodRepository() *PayrollPeriodRepository {
	return &PayrollPeriodRepository{periods: make(map[string]*payroll.Period)}
}

// Upsert は月-年をキーに作成または置き換えます。
func (r *PayrollPeriodRepository) Upsert(_ context.Context, p *payroll.Period) (*payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.periods[p.ID] = p.Clone()
	return p.Clone(), nil
}

// FindByID は ID で給与期間を取得します。
func (r *PayrollPeriodRepository) FindByID(_ context.Context, id string) (*payroll.Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.periods[id]
	if !ok {
		return nil, payroll.ErrPeriodNotFound
	}
	return p.Clone(), nil
}

// List は給与期間を新しい順に返します。year を指定するとその年に絞り込みます。
func (r *PayrollPeriodRepository) List(_ context.Context, year *int) ([]*payroll.Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payroll.Period, 0)
	for _, p := range r.periods {
		if year != nil && p.Year != *year {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

// PayrollSettingsRepository はメモリ上の給与設定リポジトリです。
type PayrollSettingsRepository struct {
	mu       sync.RWMutex
	settings *payroll.Settings
}

// NewPayrollSettingsRepository は PayrollSettingsRepository を生成します。
func NewPayrollSettingsRepository() *PayrollSettingsRepository {
	return &PayrollSettingsRepository{}
}

// Get は保存済みの設定を返します。
func (r *PayrollSettingsRepository) Get(_ context.Context) (*payroll.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, payroll.ErrSettingsNotFound
	}
	c := r.settings.Clone()
	return &c, nil
}

// Save は設定を保存します。
func (r *PayrollSettingsRepository) Save(_ context.Context, s *payroll.Settings) (*payroll.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := s.Clone()
	r.settings = &stored
	out := stored.Clone()
	return &out, nil
}
