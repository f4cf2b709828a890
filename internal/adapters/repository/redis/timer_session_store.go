// Package redis はタイマーセッションを Redis に保存するアダプタです。
// 複数プロセスから同じ社員のタイマーを参照できるようにします。
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
)

// DefaultKeyPrefix はセッションキーの既定の接頭辞です。
const DefaultKeyPrefix = "timer:session:"

type sessionDocument struct {
	EmployeeID  string    `json:"employee_id"`
	State       string    `json:"state"`
	StartTime   time.Time `json:"start_time"`
	CurrentType string    `json:"current_type"`
	Project     *string   `json:"project,omitempty"`
	Task        *string   `json:"task,omitempty"`
}

// TimerSessionStore は timer.SessionStore の Redis 実装です。
type TimerSessionStore struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewTimerSessionStore は TimerSessionStore を生成します。ttl が 0 の場合は期限なしです。
func NewTimerSessionStore(client goredis.Cmdable, prefix string, ttl time.Duration) *TimerSessionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &TimerSessionStore{client: client, prefix: prefix, ttl: ttl}
}

// Get は社員のセッションを返します。
func (s *TimerSessionStore) Get(ctx context.Context, employeeID string) (*timer.Session, error) {
	raw, err := s.client.Get(ctx, s.key(employeeID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, timer.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get session: %w", err)
	}

	var doc sessionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("redis: decode session: %w", err)
	}
	return &timer.Session{
		EmployeeID:  doc.EmployeeID,
		State:       timer.State(doc.State),
		StartTime:   doc.StartTime,
		CurrentType: timelog.Type(doc.CurrentType),
		Project:     doc.Project,
		Task:        doc.Task,
	}, nil
}

// Put はセッションを保存します。
func (s *TimerSessionStore) Put(ctx context.Context, session *timer.Session) error {
	raw, err := json.Marshal(sessionDocument{
		EmployeeID:  session.EmployeeID,
		State:       string(session.State),
		StartTime:   session.StartTime,
		CurrentType: string(session.CurrentType),
		Project:     session.Project,
		Task:        session.Task,
	})
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.EmployeeID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set session: %w", err)
	}
	return nil
}

// Delete はセッションを削除します。
func (s *TimerSessionStore) Delete(ctx context.Context, employeeID string) error {
	n, err := s.client.Del(ctx, s.key(employeeID)).Result()
	if err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	if n == 0 {
		return timer.ErrSessionNotFound
	}
	return nil
}

func (s *TimerSessionStore) key(employeeID string) string {
	return s.prefix + employeeID
}
