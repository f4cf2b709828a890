package timer

import (
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
)

// State はタイマーの状態です。
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Session は社員ごとのタイマー状態です。停止後は保持しません。
type Session struct {
	EmployeeID  string
	State       State
	StartTime   time.Time
	CurrentType timelog.Type
	Project     *string
	Task        *string
}

// IsRunning は計測中かを返します。
func (s *Session) IsRunning() bool {
	return s != nil && s.State == StateRunning
}

func idleSession(employeeID string) *Session {
	return &Session{EmployeeID: employeeID, State: StateIdle, CurrentType: timelog.TypeWork}
}
