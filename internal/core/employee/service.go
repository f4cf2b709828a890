package employee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
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
)

var employeeCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	departments DepartmentChecker
	clock       Clock
	tx          TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithDepartmentChecker は部署の存在確認を有効にします。
func WithDepartmentChecker(c DepartmentChecker) Option {
	return func(s *Service) {
		s.departments = c
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	EmployeeCode string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Position     *string
	DepartmentID *string
	ManagerID    *string
	Status       *Status
	StartDate    *time.Time
	EndDate      *time.Time
	Salary       decimal.Decimal
}

// UpdateEmployeeInput は社員更新時の入力です。*Set が true のフィールドは nil でクリアします。
type UpdateEmployeeInput struct {
	ID              string
	EmployeeCode    *string
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	Position        *string
	DepartmentID    *string
	DepartmentIDSet bool
	ManagerID       *string
	ManagerIDSet    bool
	Status          *Status
	StartDate       *time.Time
	StartDateSet    bool
	EndDate         *time.Time
	EndDateSet      bool
	Salary          *decimal.Decimal
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	DepartmentID string
	ManagerID    string
	PageSize     int
	PageToken    string
	Status       *Status
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	code, err := normalizeEmployeeCode(in.EmployeeCode)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" {
		return nil, ErrInvalidFirstName
	}
	lastName := strings.TrimSpace(in.LastName)
	if lastName == "" {
		return nil, ErrInvalidLastName
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	if in.Salary.IsNegative() {
		return nil, ErrInvalidSalary
	}

	startDate := normalizeDate(in.StartDate)
	endDate := normalizeDate(in.EndDate)
	if err := validateEmploymentPeriod(startDate, endDate); err != nil {
		return nil, err
	}

	status := StatusActive
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	departmentID := normalizeOptional(in.DepartmentID)
	managerID := normalizeOptional(in.ManagerID)

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmployeeCodeNotExists(txCtx, code); err != nil {
			return err
		}
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}
		if err := s.ensureDepartment(txCtx, departmentID); err != nil {
			return err
		}
		if err := s.ensureManager(txCtx, "", managerID); err != nil {
			return err
		}

		now := s.clock.Now()
		emp := &Employee{
			EmployeeCode: code,
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			Phone:        normalizeOptional(in.Phone),
			Position:     normalizeOptional(in.Position),
			DepartmentID: departmentID,
			ManagerID:    managerID,
			Status:       status,
			StartDate:    cloneTime(startDate),
			EndDate:      cloneTime(endDate),
			Salary:       in.Salary,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		result, err := s.repo.Create(txCtx, emp)
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

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.EmployeeCode != nil {
			code, err := normalizeEmployeeCode(*in.EmployeeCode)
			if err != nil {
				return err
			}
			if code != existing.EmployeeCode {
				if err := s.ensureEmployeeCodeNotExists(txCtx, code); err != nil {
					return err
				}
				existing.EmployeeCode = code
			}
		}

		if in.FirstName != nil {
			v := strings.TrimSpace(*in.FirstName)
			if v == "" {
				return ErrInvalidFirstName
			}
			existing.FirstName = v
		}

		if in.LastName != nil {
			v := strings.TrimSpace(*in.LastName)
			if v == "" {
				return ErrInvalidLastName
			}
			existing.LastName = v
		}

		if in.Email != nil {
			email, err := normalizeEmail(*in.Email)
			if err != nil {
				return err
			}
			if email != existing.Email {
				if err := s.ensureEmailNotExists(txCtx, email); err != nil {
					return err
				}
				existing.Email = email
			}
		}

		if in.Phone != nil {
			existing.Phone = normalizeOptional(in.Phone)
		}
		if in.Position != nil {
			existing.Position = normalizeOptional(in.Position)
		}

		if in.DepartmentIDSet {
			departmentID := normalizeOptional(in.DepartmentID)
			if err := s.ensureDepartment(txCtx, departmentID); err != nil {
				return err
			}
			existing.DepartmentID = departmentID
		}

		if in.ManagerIDSet {
			managerID := normalizeOptional(in.ManagerID)
			if err := s.ensureManager(txCtx, existing.ID, managerID); err != nil {
				return err
			}
			existing.ManagerID = managerID
		}

		if in.Status != nil {
			if !IsValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.Salary != nil {
			if in.Salary.IsNegative() {
				return ErrInvalidSalary
			}
			existing.Salary = *in.Salary
		}

		if in.StartDateSet {
			existing.StartDate = cloneTime(normalizeDate(in.StartDate))
		}

		if in.EndDateSet {
			existing.EndDate = cloneTime(normalizeDate(in.EndDate))
		}

		if err := validateEmploymentPeriod(existing.StartDate, existing.EndDate); err != nil {
			return err
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

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
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
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			DepartmentID: strings.TrimSpace(in.DepartmentID),
			ManagerID:    strings.TrimSpace(in.ManagerID),
			Status:       statusPtr,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) ensureEmployeeCodeNotExists(ctx context.Context, code string) error {
	emp, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmployeeCodeAlreadyExists
	}
	return nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) ensureDepartment(ctx context.Context, departmentID *string) error {
	if departmentID == nil || s.departments == nil {
		return nil
	}
	return s.departments.EnsureDepartment(ctx, *departmentID)
}

func (s *Service) ensureManager(ctx context.Context, selfID string, managerID *string) error {
	if managerID == nil {
		return nil
	}
	if *managerID == selfID {
		return fmt.Errorf("self reference: %w", ErrInvalidManager)
	}
	if _, err := s.repo.FindByID(ctx, *managerID); err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return fmt.Errorf("manager %s: %w", *managerID, ErrInvalidManager)
		}
		return err
	}
	return nil
}

// IsValidStatus は有効な在籍状態かを判定します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusProbation, StatusSuspended, StatusTerminated:
		return true
	default:
		return false
	}
}

func normalizeEmployeeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeCode
	}

	lower := strings.ToLower(trimmed)
	if !employeeCodePattern.MatchString(lower) {
		return "", ErrInvalidEmployeeCode
	}
	return lower, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
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

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

func validateEmploymentPeriod(startDate, endDate *time.Time) error {
	if startDate == nil || endDate == nil {
		return nil
	}
	if endDate.Before(*startDate) {
		return ErrInvalidDateRange
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
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
