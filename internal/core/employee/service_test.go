package employee

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	sequence  int
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	for _, existing := range r.employees {
		if existing.EmployeeCode == e.EmployeeCode {
			return nil, ErrEmployeeCodeAlreadyExists
		}
	}

	clone := e.Clone()
	r.sequence++
	id := fmt.Sprintf("emp-%d", r.sequence)
	clone.ID = id
	r.employees[id] = clone
	r.order = append(r.order, id)
	return clone.Clone(), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return emp.Clone(), nil
}

func (r *fakeEmployeeRepo) FindByCode(_ context.Context, code string) (*Employee, error) {
	for _, emp := range r.employees {
		if emp.EmployeeCode == code {
			return emp.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) FindByEmail(_ context.Context, email string) (*Employee, error) {
	for _, emp := range r.employees {
		if emp.Email == email {
			return emp.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	var filtered []*Employee
	for _, id := range r.order {
		emp := r.employees[id]
		if filter.Matches(emp) {
			filtered = append(filtered, emp.Clone())
		}
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, "", nil
	}

	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := filtered[filter.Offset:end]

	nextToken := ""
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return page, nextToken, nil
}

type fakeDepartments map[string]bool

func (f fakeDepartments) EnsureDepartment(_ context.Context, id string) error {
	if !f[id] {
		return ErrDepartmentNotFound
	}
	return nil
}

func seedInput(code string) CreateEmployeeInput {
	return CreateEmployeeInput{
		EmployeeCode: code,
		FirstName:    "Seed",
		LastName:     "User",
		Email:        code + "@example.com",
		Salary:       decimal.NewFromInt(4000),
	}
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil, WithDepartmentChecker(fakeDepartments{"dep-1": true}))

	start := time.Date(2024, 12, 1, 15, 30, 0, 0, time.UTC)
	dept := " dep-1 "
	position := "  "

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		EmployeeCode: " Emp-001 ",
		Email:        "Example@Example.com",
		LastName:     "  Yamada  ",
		FirstName:    " Taro ",
		Position:     &position,
		DepartmentID: &dept,
		StartDate:    &start,
		Salary:       decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.EmployeeCode != "emp-001" {
		t.Fatalf("expected normalized employee code, got %s", created.EmployeeCode)
	}
	if created.Email != "example@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if created.FullName() != "Taro Yamada" {
		t.Fatalf("expected trimmed names, got %q", created.FullName())
	}
	if created.DepartmentID == nil || *created.DepartmentID != "dep-1" || created.Position != nil {
		t.Fatalf("unexpected optional fields: %+v", created)
	}
	if created.Status != StatusActive {
		t.Fatalf("expected default status active, got %s", created.Status)
	}
	if created.StartDate == nil || !created.StartDate.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %+v", created.StartDate)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_Conflicts(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateEmployee(context.Background(), seedInput("emp-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dupCode := seedInput("EMP-1")
	dupCode.Email = "other@example.com"
	if _, err := svc.CreateEmployee(context.Background(), dupCode); !errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected ErrEmployeeCodeAlreadyExists, got %v", err)
	}

	dupEmail := seedInput("emp-2")
	dupEmail.Email = "EMP-1@example.com"
	if _, err := svc.CreateEmployee(context.Background(), dupEmail); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_CreateEmployee_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil, WithDepartmentChecker(fakeDepartments{}))

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ghost := "ghost"
	unknown := Status("retired")

	cases := []struct {
		name   string
		modify func(*CreateEmployeeInput)
		want   error
	}{
		{"code", func(in *CreateEmployeeInput) { in.EmployeeCode = "!bad" }, ErrInvalidEmployeeCode},
		{"first name", func(in *CreateEmployeeInput) { in.FirstName = " " }, ErrInvalidFirstName},
		{"last name", func(in *CreateEmployeeInput) { in.LastName = "" }, ErrInvalidLastName},
		{"email", func(in *CreateEmployeeInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		{"salary", func(in *CreateEmployeeInput) { in.Salary = decimal.NewFromInt(-1) }, ErrInvalidSalary},
		{"period", func(in *CreateEmployeeInput) { in.StartDate, in.EndDate = &start, &end }, ErrInvalidDateRange},
		{"status", func(in *CreateEmployeeInput) { in.Status = &unknown }, ErrInvalidStatus},
		{"department", func(in *CreateEmployeeInput) { in.DepartmentID = &ghost }, ErrDepartmentNotFound},
		{"manager", func(in *CreateEmployeeInput) { in.ManagerID = &ghost }, ErrInvalidManager},
	}

	for _, tc := range cases {
		in := seedInput("emp-x")
		tc.modify(&in)
		if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestService_UpdateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	manager, err := svc.CreateEmployee(context.Background(), seedInput("mgr-1"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	created, err := svc.CreateEmployee(context.Background(), seedInput("emp-3"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)

	newCode := "EMP-999"
	newEmail := "ichiro+update@example.com"
	newLast := "  Sato  "
	newStatus := StatusProbation
	salary := decimal.RequireFromString("5250.50")
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:           created.ID,
		EmployeeCode: &newCode,
		Email:        &newEmail,
		LastName:     &newLast,
		Status:       &newStatus,
		Salary:       &salary,
		ManagerID:    &manager.ID,
		ManagerIDSet: true,
		StartDate:    &start,
		StartDateSet: true,
		EndDate:      &end,
		EndDateSet:   true,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.EmployeeCode != "emp-999" || updated.Email != newEmail || updated.LastName != "Sato" {
		t.Fatalf("unexpected updated fields: %+v", updated)
	}
	if updated.Status != StatusProbation || !updated.Salary.Equal(salary) {
		t.Fatalf("unexpected status/salary: %s %s", updated.Status, updated.Salary)
	}
	if updated.ManagerID == nil || *updated.ManagerID != manager.ID {
		t.Fatalf("expected manager to be set")
	}
	if updated.EndDate == nil || !updated.EndDate.Equal(end) {
		t.Fatalf("expected end date to update, got %+v", updated.EndDate)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}

	cleared, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, ManagerIDSet: true})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if cleared.ManagerID != nil {
		t.Fatalf("expected manager to be cleared")
	}
}

func TestService_UpdateEmployee_Errors(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.CreateEmployee(context.Background(), seedInput("emp-4"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	invalidStatus := Status("unknown")
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, Status: &invalidStatus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, ManagerID: &created.ID, ManagerIDSet: true}); !errors.Is(err, ErrInvalidManager) {
		t.Fatalf("expected ErrInvalidManager for self reference, got %v", err)
	}

	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: "missing"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_ListEmployees_FilterAndPagination(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	statuses := []Status{StatusActive, StatusSuspended, StatusActive}
	for i := 0; i < 3; i++ {
		status := statuses[i]
		in := seedInput(fmt.Sprintf("emp-%d", i))
		in.Status = &status
		if _, err := svc.CreateEmployee(context.Background(), in); err != nil {
			t.Fatalf("unexpected seed error: %v", err)
		}
	}

	suspended := StatusSuspended
	result, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: 2, Status: &suspended})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(result.Employees) != 1 {
		t.Fatalf("expected 1 suspended employee, got %d", len(result.Employees))
	}

	active := StatusActive
	page1, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: 1, Status: &active})
	if err != nil {
		t.Fatalf("ListEmployees active returned error: %v", err)
	}
	if len(page1.Employees) != 1 || page1.NextPageToken == "" {
		t.Fatalf("expected first page with next token, got %+v", page1)
	}

	page2, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: 1, PageToken: page1.NextPageToken, Status: &active})
	if err != nil {
		t.Fatalf("ListEmployees page2 returned error: %v", err)
	}
	if len(page2.Employees) != 1 || page2.NextPageToken != "" {
		t.Fatalf("expected last page, got %+v", page2)
	}

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)
	created, err := svc.CreateEmployee(context.Background(), seedInput("emp-5"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}
