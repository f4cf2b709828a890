package timelog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Service は作業記録に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	newID func() string
}

// UseCase は作業記録ユースケースの公開インターフェースです。
type UseCase interface {
	AddLog(ctx context.Context, in AddLogInput) (*TimeLog, error)
	UpdateLog(ctx context.Context, in UpdateLogInput) (*TimeLog, error)
	DeleteLog(ctx context.Context, id string) error
	GetLog(ctx context.Context, id string) (*TimeLog, error)
	ListLogs(ctx context.Context, in ListLogsInput) ([]*TimeLog, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, newID: uuid.NewString}
}

// AddLogInput は作業記録追加時の入力です。
// ID と Duration はタイマーからの記録時のみ指定され、省略時はそれぞれ採番・四捨五入計算されます。
type AddLogInput struct {
	ID         *string
	EmployeeID string
	Date       string
	StartTime  time.Time
	EndTime    time.Time
	Duration   *int
	Type       Type
	Project    *string
	Task       *string
	Notes      *string
	Billable   *bool
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
}

// UpdateLogInput は部分更新の入力です。nil のフィールドは変更しません。
type UpdateLogInput struct {
	ID        string
	Date      *string
	StartTime *time.Time
	EndTime   *time.Time
	Type      *Type
	Project   *string
	Task      *string
	Notes     *string
	Billable  *bool
}

// ListLogsInput は一覧取得時の入力です。
type ListLogsInput struct {
	EmployeeID string
	From       string
	To         string
	Type       *Type
}

// AddLog は作業記録を追加します。
func (s *Service) AddLog(ctx context.Context, in AddLogInput) (*TimeLog, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}

	date := strings.TrimSpace(in.Date)
	if date == "" && !in.StartTime.IsZero() {
		date = in.StartTime.UTC().Format(DateLayout)
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}

	if err := validateTimes(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	logType := in.Type
	if logType == "" {
		logType = TypeWork
	}
	if !IsValidType(logType) {
		return nil, ErrInvalidType
	}

	duration := RoundedMinutes(in.StartTime, in.EndTime)
	if in.Duration != nil {
		if *in.Duration < 0 {
			return nil, ErrInvalidDuration
		}
		duration = *in.Duration
	}

	id := s.newID()
	if in.ID != nil {
		id = strings.TrimSpace(*in.ID)
		if id == "" {
			return nil, fmt.Errorf("id: %w", ErrInvalidID)
		}
	}

	now := s.clock.Now()
	createdAt, updatedAt := now, now
	if in.CreatedAt != nil {
		createdAt = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		updatedAt = *in.UpdatedAt
	}

	log := &TimeLog{
		ID:         id,
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Duration:   duration,
		Type:       logType,
		Project:    normalizeOptional(in.Project),
		Task:       normalizeOptional(in.Task),
		Notes:      normalizeOptional(in.Notes),
		Billable:   in.Billable,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	var created *TimeLog
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, log)
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

// UpdateLog は作業記録を部分更新し、UpdatedAt を更新します。
func (s *Service) UpdateLog(ctx context.Context, in UpdateLogInput) (*TimeLog, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *TimeLog
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Date != nil {
			date := strings.TrimSpace(*in.Date)
			if err := validateDate(date); err != nil {
				return err
			}
			existing.Date = date
		}

		timesChanged := false
		if in.StartTime != nil {
			existing.StartTime = *in.StartTime
			timesChanged = true
		}
		if in.EndTime != nil {
			existing.EndTime = *in.EndTime
			timesChanged = true
		}
		if timesChanged {
			if err := validateTimes(existing.StartTime, existing.EndTime); err != nil {
				return err
			}
			existing.Duration = RoundedMinutes(existing.StartTime, existing.EndTime)
		}

		if in.Type != nil {
			if !IsValidType(*in.Type) {
				return ErrInvalidType
			}
			existing.Type = *in.Type
		}
		if in.Project != nil {
			existing.Project = normalizeOptional(in.Project)
		}
		if in.Task != nil {
			existing.Task = normalizeOptional(in.Task)
		}
		if in.Notes != nil {
			existing.Notes = normalizeOptional(in.Notes)
		}
		if in.Billable != nil {
			b := *in.Billable
			existing.Billable = &b
		}

		existing.UpdatedAt = s.clock.Now()

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

// DeleteLog は作業記録を削除します。
func (s *Service) DeleteLog(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetLog は作業記録を取得します。
func (s *Service) GetLog(ctx context.Context, id string) (*TimeLog, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *TimeLog
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

// ListLogs は社員の作業記録を取得します。期間指定は両端を含みます。
func (s *Service) ListLogs(ctx context.Context, in ListLogsInput) ([]*TimeLog, error) {
	filter := ListFilter{
		EmployeeID: strings.TrimSpace(in.EmployeeID),
		From:       strings.TrimSpace(in.From),
		To:         strings.TrimSpace(in.To),
		Type:       in.Type,
	}
	if filter.From != "" {
		if err := validateDate(filter.From); err != nil {
			return nil, err
		}
	}
	if filter.To != "" {
		if err := validateDate(filter.To); err != nil {
			return nil, err
		}
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return nil, ErrInvalidDateRange
	}
	if filter.Type != nil && !IsValidType(*filter.Type) {
		return nil, ErrInvalidType
	}

	var logs []*TimeLog
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		logs = result
		return nil
	}); err != nil {
		return nil, err
	}
	return logs, nil
}

func validateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date: %w", ErrInvalidDate)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("date %q: %w", date, ErrInvalidDate)
	}
	return nil
}

func validateTimes(start, end time.Time) error {
	if start.IsZero() {
		return ErrInvalidStartTime
	}
	if end.IsZero() {
		return ErrInvalidEndTime
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	return nil
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
