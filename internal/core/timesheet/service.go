package timesheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// LogSource は集計対象の作業記録を提供します。
type LogSource interface {
	ListLogs(ctx context.Context, in timelog.ListLogsInput) ([]*timelog.TimeLog, error)
}

// UseCase はタイムシートユースケースの公開インターフェースです。
type UseCase interface {
	Generate(ctx context.Context, in GenerateInput) (*Timesheet, error)
	Get(ctx context.Context, id string) (*Timesheet, error)
	List(ctx context.Context, in ListInput) ([]*Timesheet, error)
	Submit(ctx context.Context, id string) (*Timesheet, error)
	Approve(ctx context.Context, in ReviewInput) (*Timesheet, error)
	Reject(ctx context.Context, in ReviewInput) (*Timesheet, error)
	Delete(ctx context.Context, id string) error
}

// Service はタイムシートの生成と承認フローを扱います。
type Service struct {
	repo   Repository
	logs   LogSource
	clock  Clock
	tx     TransactionManager
	policy DuplicatePolicy
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithDuplicatePolicy は同一期間の再生成ポリシーを指定します。
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// ParseDuplicatePolicy は設定値を DuplicatePolicy に変換します。空文字は append です。
func ParseDuplicatePolicy(raw string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyAppend:
		return PolicyAppend, nil
	case PolicyUpsert:
		return PolicyUpsert, nil
	default:
		return "", fmt.Errorf("%q: %w", raw, ErrUnknownDuplicatePolicy)
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, logs LogSource, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, logs: logs, clock: clock, tx: tx, policy: PolicyAppend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateInput はタイムシート生成時の入力です。期間は YYYY-MM-DD で両端を含みます。
type GenerateInput struct {
	EmployeeID  string
	PeriodStart string
	PeriodEnd   string
}

// ListInput は一覧取得時の入力です。
type ListInput struct {
	EmployeeID string
	Status     *Status
}

// ReviewInput は承認・差し戻し時の入力です。
type ReviewInput struct {
	ID         string
	ReviewerID string
	Notes      *string
}

// Generate は期間内の作業記録を集計してタイムシートを作成します。
// 対象の記録が一件もない場合は ErrNoLogsFound を返します。
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*Timesheet, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	start, end, err := normalizePeriod(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, err
	}

	var created *Timesheet
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, err := s.logs.ListLogs(txCtx, timelog.ListLogsInput{EmployeeID: employeeID, From: start, To: end})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return ErrNoLogsFound
		}

		snapshot := make([]timelog.TimeLog, 0, len(found))
		for _, l := range found {
			snapshot = append(snapshot, l.Clone())
		}
		summary := Summarize(snapshot)

		now := s.clock.Now()
		sheet := &Timesheet{
			EmployeeID:      employeeID,
			PeriodStart:     start,
			PeriodEnd:       end,
			Logs:            snapshot,
			TotalMinutes:    summary.TotalMinutes,
			OvertimeMinutes: summary.OvertimeMinutes,
			BreakMinutes:    summary.BreakMinutes,
			TotalHours:      summary.TotalHours(),
			OvertimeHours:   summary.OvertimeHours(),
			Status:          StatusDraft,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		var result *Timesheet
		switch s.policy {
		case PolicyUpsert:
			sheet.ID = periodKey(employeeID, start, end)
			result, err = s.repo.Upsert(txCtx, sheet)
		default:
			sheet.ID = uuid.NewString()
			result, err = s.repo.Create(txCtx, sheet)
		}
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// Get はタイムシートを取得します。
func (s *Service) Get(ctx context.Context, id string) (*Timesheet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var found *Timesheet
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// List はタイムシートの一覧を返します。
func (s *Service) List(ctx context.Context, in ListInput) ([]*Timesheet, error) {
	var sheets []*Timesheet
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, ListFilter{EmployeeID: strings.TrimSpace(in.EmployeeID), Status: in.Status})
		if err != nil {
			return err
		}
		sheets = result
		return nil
	}); err != nil {
		return nil, err
	}
	return sheets, nil
}

// Submit は下書きまたは差し戻し済みのタイムシートを提出します。
func (s *Service) Submit(ctx context.Context, id string) (*Timesheet, error) {
	return s.transition(ctx, id, StatusSubmitted, func(t *Timesheet, now time.Time) {
		t.SubmittedAt = &now
		t.ApprovedBy = nil
	})
}

// Approve は提出済みのタイムシートを承認します。
func (s *Service) Approve(ctx context.Context, in ReviewInput) (*Timesheet, error) {
	reviewer := strings.TrimSpace(in.ReviewerID)
	if reviewer == "" {
		return nil, ErrInvalidReviewer
	}
	return s.transition(ctx, in.ID, StatusApproved, func(t *Timesheet, _ time.Time) {
		t.ApprovedBy = &reviewer
		if in.Notes != nil {
			notes := *in.Notes
			t.Notes = &notes
		}
	})
}

// Reject は提出済みのタイムシートを差し戻します。
func (s *Service) Reject(ctx context.Context, in ReviewInput) (*Timesheet, error) {
	reviewer := strings.TrimSpace(in.ReviewerID)
	if reviewer == "" {
		return nil, ErrInvalidReviewer
	}
	return s.transition(ctx, in.ID, StatusRejected, func(t *Timesheet, _ time.Time) {
		t.ApprovedBy = nil
		if in.Notes != nil {
			notes := *in.Notes
			t.Notes = &notes
		}
	})
}

// Delete はタイムシートを削除します。
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

func (s *Service) transition(ctx context.Context, id string, to Status, apply func(*Timesheet, time.Time)) (*Timesheet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var updated *Timesheet
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !canTransition(existing.Status, to) {
			return fmt.Errorf("%s -> %s: %w", existing.Status, to, ErrInvalidTransition)
		}

		now := s.clock.Now()
		existing.Status = to
		apply(existing, now)
		existing.UpdatedAt = now

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func normalizePeriod(rawStart, rawEnd string) (string, string, error) {
	start := strings.TrimSpace(rawStart)
	end := strings.TrimSpace(rawEnd)
	if _, err := time.Parse(timelog.DateLayout, start); err != nil {
		return "", "", fmt.Errorf("period_start: %w", ErrInvalidPeriod)
	}
	if _, err := time.Parse(timelog.DateLayout, end); err != nil {
		return "", "", fmt.Errorf("period_end: %w", ErrInvalidPeriod)
	}
	if start > end {
		return "", "", fmt.Errorf("period_start after period_end: %w", ErrInvalidPeriod)
	}
	return start, end, nil
}

func periodKey(employeeID, start, end string) string {
	return employeeID + "-" + start + "-" + end
}
