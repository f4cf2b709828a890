// Package memory はプロセス内メモリを使ったリポジトリ実装です。
// 保存・取得のたびに値をコピーし、呼び出し側との参照共有を避けます。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
)

// TimeLogRepository はメモリ上の作業記録リポジトリです。
type TimeLogRepository struct {
	mu   sync.RWMutex
	logs map[string]timelog.TimeLog
}

// NewTimeLogRepository は TimeLogRepository を生成します。
func NewTimeLogRepository() *TimeLogRepository {
	return &TimeLogRepository{logs: make(map[string]timelog.TimeLog)}
}

// Create は作業記録を追加します。
func (r *TimeLogRepository) Create(_ context.Context, l *timelog.TimeLog) (*timelog.TimeLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[l.ID]; ok {
		return nil, timelog.ErrLogAlreadyExists
	}
	r.logs[l.ID] = l.Clone()
	out := l.Clone()
	return &out, nil
}

// Update は作業記録を置き換えます。
func (r *TimeLogRepository) Update(_ context.Context, l *timelog.TimeLog) (*timelog.TimeLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[l.ID]; !ok {
		return nil, timelog.ErrLogNotFound
	}
	r.logs[l.ID] = l.Clone()
	out := l.Clone()
	return &out, nil
}

// Delete は作業記録を削除します。
func (r *TimeLogRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[id]; !ok {
		return timelog.ErrLogNotFound
	}
	delete(r.logs, id)
	return nil
}

// FindByID は ID で作業記録を取得します。
func (r *TimeLogRepository) FindByID(_ context.Context, id string) (*timelog.TimeLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.logs[id]
	if !ok {
		return nil, timelog.ErrLogNotFound
	}
	out := l.Clone()
	return &out, nil
}

// List は条件に一致する作業記録を開始時刻順に返します。
func (r *TimeLogRepository) List(_ context.Context, filter timelog.ListFilter) ([]*timelog.TimeLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*timelog.TimeLog, 0)
	for _, l := range r.logs {
		if !filter.Matches(&l) {
			continue
		}
		c := l.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}
