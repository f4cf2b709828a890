package leave

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

// UseCase は休暇申請ユースケースの公開インターフェースです。
type UseCase interface {
	Create(ctx context.Context, in CreateInput) (*Request, error)
	Get(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, in ListInput) ([]*Request, error)
	Approve(ctx context.Context, in ReviewInput) (*Request, error)
	Deny(ctx context.Context, in ReviewInput) (*Request, error)
	Cancel(ctx context.Context, id string) error
}

// Service は休暇申請と審査を扱います。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateInput は申請時の入力です。日付は YYYY-MM-DD です。
type CreateInput struct {
	EmployeeID string
	Type       Type
	StartDate  string
	EndDate    string
	Reason     *string
}

// ListInput は一覧取得時の入力です。
type ListInput struct {
	EmployeeID string
	Status     *Status
	Type       *Type
}

// ReviewInput は承認・却下時の入力です。
type ReviewInput struct {
	ID         string
	ReviewerID string
	Notes      *string
}

// Create は審査待ちの申請を登録します。
// 同じ社員の審査待ち・承認済み申請と期間が重なる場合は ErrOverlapping を返します。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Request, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	typ := Type(strings.ToLower(strings.TrimSpace(string(in.Type))))
	if !IsValidType(typ) {
		return nil, fmt.Errorf("%q: %w", in.Type, ErrInvalidType)
	}
	start, end, days, err := normalizeRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var created *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.List(txCtx, ListFilter{EmployeeID: employeeID})
		if err != nil {
			return err
		}
		for _, r := range existing {
			if r.Blocking() && r.Overlaps(start, end) {
				return fmt.Errorf("%s (%s..%s): %w", r.ID, r.StartDate, r.EndDate, ErrOverlapping)
			}
		}

		now := s.clock.Now()
		req := &Request{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Type:       typ,
			StartDate:  start,
			EndDate:    end,
			Days:       days,
			Reason:     trimmed(in.Reason),
			Status:     StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		result, err := s.repo.Create(txCtx, req)
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

// Get は申請を取得します。
func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var found *Request
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

// List は申請の一覧を返します。
func (s *Service) List(ctx context.Context, in ListInput) ([]*Request, error) {
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return nil, fmt.Errorf("%q: %w", *in.Status, ErrInvalidStatus)
	}
	if in.Type != nil && !IsValidType(*in.Type) {
		return nil, fmt.Errorf("%q: %w", *in.Type, ErrInvalidType)
	}

	var list []*Request
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, ListFilter{EmployeeID: strings.TrimSpace(in.EmployeeID), Status: in.Status, Type: in.Type})
		if err != nil {
			return err
		}
		list = result
		return nil
	}); err != nil {
		return nil, err
	}
	return list, nil
}

// Approve は審査待ちの申請を承認します。
func (s *Service) Approve(ctx context.Context, in ReviewInput) (*Request, error) {
	return s.review(ctx, in, StatusApproved)
}

// Deny は審査待ちの申請を却下します。
func (s *Service) Deny(ctx context.Context, in ReviewInput) (*Request, error) {
	return s.review(ctx, in, StatusDenied)
}

// Cancel は審査待ちの申請を取り下げます。審査済みの申請は取り下げられません。
func (s *Service) Cancel(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status != StatusPending {
			return fmt.Errorf("cancel %s request: %w", existing.Status, ErrInvalidTransition)
		}
		return s.repo.Delete(txCtx, id)
	})
}

func (s *Service) review(ctx context.Context, in ReviewInput, to Status) (*Request, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}
	reviewer := strings.TrimSpace(in.ReviewerID)
	if reviewer == "" {
		return nil, ErrInvalidReviewer
	}

	var updated *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if existing.Status != StatusPending {
			return fmt.Errorf("%s -> %s: %w", existing.Status, to, ErrInvalidTransition)
		}

		now := s.clock.Now()
		existing.Status = to
		existing.ReviewedBy = &reviewer
		existing.ReviewedAt = &now
		existing.Notes = trimmed(in.Notes)
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

func normalizeRange(rawStart, rawEnd string) (string, string, int, error) {
	start := strings.TrimSpace(rawStart)
	end := strings.TrimSpace(rawEnd)
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return "", "", 0, fmt.Errorf("start_date: %w", ErrInvalidDateRange)
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return "", "", 0, fmt.Errorf("end_date: %w", ErrInvalidDateRange)
	}
	if to.Before(from) {
		return "", "", 0, fmt.Errorf("start_date after end_date: %w", ErrInvalidDateRange)
	}
	return start, end, CountDays(from, to), nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
