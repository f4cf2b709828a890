package department

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxHierarchyDepth   = 64
)

var codePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Service は部署に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は部署ユースケースの公開インターフェースです。
type UseCase interface {
	CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error)
	GetDepartment(ctx context.Context, in GetDepartmentInput) (*Department, error)
	ListDepartments(ctx context.Context, in ListDepartmentsInput) (*ListDepartmentsResult, error)
	UpdateDepartment(ctx context.Context, in UpdateDepartmentInput) (*Department, error)
	DeleteDepartment(ctx context.Context, in DeleteDepartmentInput) error
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

// CreateDepartmentInput は部署作成時の入力です。
type CreateDepartmentInput struct {
	Name           string
	Code           string
	HeadEmployeeID *string
	ParentID       *string
	Description    *string
}

// UpdateDepartmentInput は部署更新時の入力です。ParentIDSet が true の場合 nil で親を外します。
type UpdateDepartmentInput struct {
	ID             string
	Name           *string
	Code           *string
	Status         *Status
	HeadEmployeeID *string
	ParentID       *string
	ParentIDSet    bool
	Description    *string
}

// DeleteDepartmentInput は部署削除時の入力です。
type DeleteDepartmentInput struct {
	ID string
}

// GetDepartmentInput は部署取得時の入力です。
type GetDepartmentInput struct {
	ID string
}

// ListDepartmentsInput は一覧取得時の入力です。
type ListDepartmentsInput struct {
	PageSize  int
	PageToken string
	Status    *Status
	ParentID  *string
}

// ListDepartmentsResult は一覧取得結果を表します。
type ListDepartmentsResult struct {
	Departments   []*Department
	NextPageToken string
}

// CreateDepartment は新しい部署を作成します。
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	code, err := normalizeCode(in.Code)
	if err != nil {
		return nil, err
	}

	parentID := normalizeOptional(in.ParentID)

	var created *Department
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureCodeNotExists(txCtx, code); err != nil {
			return err
		}
		if err := s.ensureParent(txCtx, "", parentID); err != nil {
			return err
		}

		now := s.clock.Now()
		dept := &Department{
			Name:           name,
			Code:           code,
			HeadEmployeeID: normalizeOptional(in.HeadEmployeeID),
			ParentID:       parentID,
			Status:         StatusActive,
			Description:    normalizeOptional(in.Description),
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		result, err := s.repo.Create(txCtx, dept)
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

// UpdateDepartment は部署情報を更新します。
func (s *Service) UpdateDepartment(ctx context.Context, in UpdateDepartmentInput) (*Department, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Department
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.Code != nil {
			code, err := normalizeCode(*in.Code)
			if err != nil {
				return err
			}
			if code != existing.Code {
				if err := s.ensureCodeNotExists(txCtx, code); err != nil {
					return err
				}
				existing.Code = code
			}
		}

		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.HeadEmployeeID != nil {
			existing.HeadEmployeeID = normalizeOptional(in.HeadEmployeeID)
		}

		if in.ParentIDSet {
			parentID := normalizeOptional(in.ParentID)
			if err := s.ensureParent(txCtx, existing.ID, parentID); err != nil {
				return err
			}
			existing.ParentID = parentID
		}

		if in.Description != nil {
			existing.Description = normalizeOptional(in.Description)
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

// DeleteDepartment は部署を削除します。子部署がある場合は削除できません。
func (s *Service) DeleteDepartment(ctx context.Context, in DeleteDepartmentInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		id := in.ID
		children, _, err := s.repo.List(txCtx, ListDepartmentsFilter{Limit: 1, ParentID: &id})
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return ErrHasChildren
		}
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetDepartment は ID で部署を取得します。
func (s *Service) GetDepartment(ctx context.Context, in GetDepartmentInput) (*Department, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var dept *Department
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		dept = result
		return nil
	}); err != nil {
		return nil, err
	}

	return dept, nil
}

// EnsureDepartment は部署が存在するかを確認します。
func (s *Service) EnsureDepartment(ctx context.Context, id string) error {
	_, err := s.GetDepartment(ctx, GetDepartmentInput{ID: id})
	return err
}

// ListDepartments は部署の一覧を取得します。
func (s *Service) ListDepartments(ctx context.Context, in ListDepartmentsInput) (*ListDepartmentsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		departments []*Department
		nextToken   string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListDepartmentsFilter{
			Limit:    limit,
			Offset:   offset,
			Status:   statusPtr,
			ParentID: normalizeOptional(in.ParentID),
		})
		if err != nil {
			return err
		}
		departments = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListDepartmentsResult{
		Departments:   departments,
		NextPageToken: nextToken,
	}, nil
}

func (s *Service) ensureCodeNotExists(ctx context.Context, code string) error {
	dept, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrDepartmentNotFound) {
		return err
	}
	if dept != nil {
		return ErrCodeAlreadyExists
	}
	return nil
}

// ensureParent は親部署の存在と、selfID から親をたどって自分自身に戻らないことを確認します。
func (s *Service) ensureParent(ctx context.Context, selfID string, parentID *string) error {
	if parentID == nil {
		return nil
	}

	current := *parentID
	for depth := 0; current != ""; depth++ {
		if selfID != "" && current == selfID {
			return ErrHierarchyCycle
		}
		if depth >= maxHierarchyDepth {
			return ErrHierarchyCycle
		}

		dept, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, ErrDepartmentNotFound) {
				if depth == 0 {
					return fmt.Errorf("parent %s: %w", current, ErrInvalidParent)
				}
				return nil
			}
			return err
		}

		if dept.ParentID == nil {
			return nil
		}
		current = *dept.ParentID
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidCode
	}

	lower := strings.ToLower(trimmed)
	if !codePattern.MatchString(lower) {
		return "", ErrInvalidCode
	}

	return lower, nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
