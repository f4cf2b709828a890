package timer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase はタイマー操作の公開インターフェースです。
type UseCase interface {
	Start(ctx context.Context, in StartInput) (*Session, error)
	Stop(ctx context.Context, in StopInput) (*timelog.TimeLog, error)
	Reset(ctx context.Context, employeeID string) error
	Current(ctx context.Context, employeeID string) (*Session, error)
}

// Service は Idle/Running の二状態を持つタイマーです。
type Service struct {
	store SessionStore
	sink  LogSink
	clock Clock

	mu sync.Mutex
}

// NewService は Service を生成します。
func NewService(store SessionStore, sink LogSink, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{store: store, sink: sink, clock: clock}
}

// StartInput は計測開始時の入力です。
type StartInput struct {
	EmployeeID string
	Type       timelog.Type
	Project    *string
	Task       *string
}

// StopInput は計測停止時の入力です。
type StopInput struct {
	EmployeeID string
	Notes      *string
	Billable   *bool
}

// Start は計測を開始します。すでに Running の場合は何もせず現在のセッションを返します。
func (s *Service) Start(ctx context.Context, in StartInput) (*Session, error) {
	employeeID, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	logType := in.Type
	if logType == "" {
		logType = timelog.TypeWork
	}
	if !timelog.IsValidType(logType) {
		return nil, ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if current.IsRunning() {
		return current, nil
	}

	session := &Session{
		EmployeeID:  employeeID,
		State:       StateRunning,
		StartTime:   s.clock.Now(),
		CurrentType: logType,
		Project:     in.Project,
		Task:        in.Task,
	}
	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("timer: save session: %w", err)
	}
	return session, nil
}

// Stop は計測を終了し、作業記録を追加して Idle に戻ります。
// Idle の状態で呼ばれた場合は記録を作らず nil を返します。
func (s *Service) Stop(ctx context.Context, in StopInput) (*timelog.TimeLog, error) {
	employeeID, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !current.IsRunning() {
		return nil, nil
	}

	// 先にセッションを消し、記録の追加に失敗したら戻します。記録だけが残る状態は作りません。
	if err := s.store.Delete(ctx, employeeID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("timer: clear session: %w", err)
	}

	end := s.clock.Now()
	start := current.StartTime
	duration := timelog.FloorMinutes(start, end)
	id := employeeID + "-" + strconv.FormatInt(end.UnixMilli(), 10)

	created, err := s.sink.AddLog(ctx, timelog.AddLogInput{
		ID:         &id,
		EmployeeID: employeeID,
		Date:       start.UTC().Format(timelog.DateLayout),
		StartTime:  start,
		EndTime:    end,
		Duration:   &duration,
		Type:       current.CurrentType,
		Project:    current.Project,
		Task:       current.Task,
		Notes:      in.Notes,
		Billable:   in.Billable,
		CreatedAt:  &start,
		UpdatedAt:  &end,
	})
	if err != nil {
		if putErr := s.store.Put(ctx, current); putErr != nil {
			return nil, fmt.Errorf("timer: restore session: %v: %w", putErr, err)
		}
		return nil, err
	}
	return created, nil
}

// Reset は記録を作らずに Idle に戻します。
func (s *Service) Reset(ctx context.Context, employeeID string) error {
	id, err := normalizeEmployeeID(employeeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("timer: clear session: %w", err)
	}
	return nil
}

// Current は現在のセッションを返します。未開始の場合は Idle のセッションです。
func (s *Service) Current(ctx context.Context, employeeID string) (*Session, error) {
	id, err := normalizeEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, employeeID string) (*Session, error) {
	session, err := s.store.Get(ctx, employeeID)
	if errors.Is(err, ErrSessionNotFound) {
		return idleSession(employeeID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("timer: load session: %w", err)
	}
	return session, nil
}

func normalizeEmployeeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeID
	}
	return trimmed, nil
}
