package timer

import (
	"context"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
)

// SessionStore は実行中セッションの保存先です。Idle のセッションは保存しません。
type SessionStore interface {
	Get(ctx context.Context, employeeID string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, employeeID string) error
}

// LogSink は停止時に生成した作業記録の書き込み先です。
type LogSink interface {
	AddLog(ctx context.Context, in timelog.AddLogInput) (*timelog.TimeLog, error)
}
