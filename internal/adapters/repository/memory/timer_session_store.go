package memory

import (
	"context"
	"sync"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
)

// TimerSessionStore はメモリ上のタイマーセッション保存先です。
type TimerSessionStore struct {
	mu       sync.Mutex
	sessions map[string]timer.Session
}

// NewTimerSessionStore は TimerSessionStore を生成します。
func NewTimerSessionStore() *TimerSessionStore {
	return &TimerSessionStore{sessions: make(map[string]timer.Session)}
}

// Get は社員のセッションを返します。
func (s *TimerSessionStore) Get(_ context.Context, employeeID string) (*timer.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[employeeID]
	if !ok {
		return nil, timer.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// Put はセッションを保存します。
func (s *TimerSessionStore) Put(_ context.Context, session *timer.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.EmployeeID] = *cloneSession(*session)
	return nil
}

// Delete はセッションを削除します。
func (s *TimerSessionStore) Delete(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[employeeID]; !ok {
		return timer.ErrSessionNotFound
	}
	delete(s.sessions, employeeID)
	return nil
}

func cloneSession(session timer.Session) *timer.Session {
	c := session
	if session.Project != nil {
		v := *session.Project
		c.Project = &v
	}
	if session.Task != nil {
		v := *session.Task
		c.Task = &v
	}
	return &c
}
