package restclient

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/dto"
)

// MutationState は楽観的更新の状態です。
type MutationState string

const (
	StatePending   MutationState = "pending"
	StateCommitted MutationState = "committed"
	StateFailed    MutationState = "failed"
)

// MutationKind は変更の種類です。
type MutationKind string

const (
	KindAdd    MutationKind = "add"
	KindUpdate MutationKind = "update"
	KindDelete MutationKind = "delete"
)

// Mutation はミラーに適用した 1 回の変更です。
type Mutation struct {
	ID    string
	Kind  MutationKind
	LogID string
	State MutationState
	Err   error
}

// Entry はミラー上の作業記録です。State が pending の間は未確定です。
type Entry struct {
	Log   dto.TimeLog
	State MutationState
}

// TimeLogAPI はミラーが利用するサーバー操作です。
type TimeLogAPI interface {
	ListTimeLogs(ctx context.Context, employeeID, from, to string) ([]dto.TimeLog, error)
	AddTimeLog(ctx context.Context, req dto.AddTimeLogRequest) (*dto.TimeLog, error)
	UpdateTimeLog(ctx context.Context, id string, req dto.UpdateTimeLogRequest) (*dto.TimeLog, error)
	DeleteTimeLog(ctx context.Context, id string) error
}

// TimeLogMirror は社員 1 人分の作業記録をローカルに保持します。
// 変更は即座にミラーへ pending として反映し、サーバー応答で committed にするか、
// 失敗時は変更前の状態に戻して failed を記録します。失敗した変更は再送しません。
type TimeLogMirror struct {
	api        TimeLogAPI
	employeeID string
	onChange   func(Mutation)

	mu        sync.Mutex
	entries   map[string]Entry
	mutations []Mutation
}

// NewTimeLogMirror は TimeLogMirror を生成します。onChange は nil でも構いません。
func NewTimeLogMirror(api TimeLogAPI, employeeID string, onChange func(Mutation)) *TimeLogMirror {
	return &TimeLogMirror{
		api:        api,
		employeeID: employeeID,
		onChange:   onChange,
		entries:    map[string]Entry{},
	}
}

// Refresh はサーバーの内容でミラーを置き換えます。
func (m *TimeLogMirror) Refresh(ctx context.Context) error {
	logs, err := m.api.ListTimeLogs(ctx, m.employeeID, "", "")
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry, len(logs))
	for _, l := range logs {
		m.entries[l.ID] = Entry{Log: l, State: StateCommitted}
	}
	return nil
}

// Entries は開始時刻順のスナップショットを返します。
func (m *TimeLogMirror) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Log.StartTime.Equal(out[j].Log.StartTime) {
			return out[i].Log.ID < out[j].Log.ID
		}
		return out[i].Log.StartTime.Before(out[j].Log.StartTime)
	})
	return out
}

// Mutations は適用した変更の履歴を返します。
func (m *TimeLogMirror) Mutations() []Mutation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mutation(nil), m.mutations...)
}

// Add は仮 ID で pending の記録を追加し、サーバー応答で置き換えます。
func (m *TimeLogMirror) Add(ctx context.Context, req dto.AddTimeLogRequest) (*dto.TimeLog, error) {
	req.EmployeeID = m.employeeID
	tempID := "pending-" + uuid.NewString()
	mut := m.begin(KindAdd, tempID, func() {
		m.entries[tempID] = Entry{Log: optimisticLog(tempID, req), State: StatePending}
	})

	created, err := m.api.AddTimeLog(ctx, req)

	m.mu.Lock()
	delete(m.entries, tempID)
	if err == nil {
		m.entries[created.ID] = Entry{Log: *created, State: StateCommitted}
		mut.LogID = created.ID
	}
	m.mu.Unlock()

	m.finish(mut, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は部分更新を pending として反映し、失敗時は元の記録に戻します。
func (m *TimeLogMirror) Update(ctx context.Context, id string, req dto.UpdateTimeLogRequest) (*dto.TimeLog, error) {
	var (
		previous Entry
		found    bool
	)
	mut := m.begin(KindUpdate, id, func() {
		previous, found = m.entries[id]
		if found {
			m.entries[id] = Entry{Log: applyPatch(previous.Log, req), State: StatePending}
		}
	})

	updated, err := m.api.UpdateTimeLog(ctx, id, req)

	m.mu.Lock()
	switch {
	case err == nil:
		m.entries[id] = Entry{Log: *updated, State: StateCommitted}
	case found:
		m.entries[id] = previous
	}
	m.mu.Unlock()

	m.finish(mut, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は記録を pending として残したまま削除を送り、成功時に取り除きます。
func (m *TimeLogMirror) Delete(ctx context.Context, id string) error {
	var (
		previous Entry
		found    bool
	)
	mut := m.begin(KindDelete, id, func() {
		previous, found = m.entries[id]
		if found {
			m.entries[id] = Entry{Log: previous.Log, State: StatePending}
		}
	})

	err := m.api.DeleteTimeLog(ctx, id)

	m.mu.Lock()
	switch {
	case err == nil:
		delete(m.entries, id)
	case found:
		m.entries[id] = previous
	}
	m.mu.Unlock()

	m.finish(mut, err)
	return err
}

func (m *TimeLogMirror) begin(kind MutationKind, logID string, apply func()) *Mutation {
	mut := &Mutation{ID: uuid.NewString(), Kind: kind, LogID: logID, State: StatePending}

	m.mu.Lock()
	apply()
	m.mu.Unlock()

	m.notify(*mut)
	return mut
}

func (m *TimeLogMirror) finish(mut *Mutation, err error) {
	mut.State = StateCommitted
	if err != nil {
		mut.State = StateFailed
		mut.Err = err
	}

	m.mu.Lock()
	m.mutations = append(m.mutations, *mut)
	m.mu.Unlock()

	m.notify(*mut)
}

func (m *TimeLogMirror) notify(mut Mutation) {
	if m.onChange != nil {
		m.onChange(mut)
	}
}

func optimisticLog(id string, req dto.AddTimeLogRequest) dto.TimeLog {
	date := req.Date
	if date == "" {
		date = req.StartTime.UTC().Format("2006-01-02")
	}
	duration := int(req.EndTime.Sub(req.StartTime).Round(time.Minute) / time.Minute)
	if req.Duration != nil {
		duration = *req.Duration
	}
	return dto.TimeLog{
		ID:         id,
		EmployeeID: req.EmployeeID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Duration:   duration,
		Type:       req.Type,
		Project:    req.Project,
		Task:       req.Task,
		Notes:      req.Notes,
		Billable:   req.Billable,
	}
}

func applyPatch(l dto.TimeLog, req dto.UpdateTimeLogRequest) dto.TimeLog {
	if req.Date != nil {
		l.Date = *req.Date
	}
	if req.StartTime != nil {
		l.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		l.EndTime = *req.EndTime
	}
	if req.StartTime != nil || req.EndTime != nil {
		l.Duration = int(l.EndTime.Sub(l.StartTime).Round(time.Minute) / time.Minute)
	}
	if req.Type != nil {
		l.Type = *req.Type
	}
	if req.Project != nil {
		l.Project = req.Project
	}
	if req.Task != nil {
		l.Task = req.Task
	}
	if req.Notes != nil {
		l.Notes = req.Notes
	}
	if req.Billable != nil {
		l.Billable = req.Billable
	}
	return l
}
