package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
)

var employeeMockColumns = []string{"id", "employee_code", "first_name", "last_name", "email", "phone", "position", "department_id", "manager_id", "status", "start_date", "end_date", "salary", "created_at", "updated_at"}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 15 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "E001"
		*(dest[2].(*string)) = "Taro"
		*(dest[3].(*string)) = "Yamada"
		*(dest[4].(*string)) = "taro@example.com"

		dept := dest[7].(*sql.NullString)
		dept.String = "dept-1"
		dept.Valid = true

		*(dest[9].(*string)) = string(employee.StatusActive)

		startDest := dest[10].(*sql.NullTime)
		startDest.Time = start
		startDest.Valid = true

		endDest := dest[11].(*sql.NullTime)
		endDest.Time = end
		endDest.Valid = true

		*(dest[12].(*decimal.Decimal)) = decimal.RequireFromString("5000.00")
		*(dest[13].(*time.Time)) = createdAt
		*(dest[14].(*time.Time)) = updatedAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.DepartmentID == nil || *emp.DepartmentID != "dept-1" {
		t.Fatalf("expected department id, got %+v", emp.DepartmentID)
	}
	if emp.Phone != nil || emp.ManagerID != nil {
		t.Fatalf("expected nil optional fields, got %+v %+v", emp.Phone, emp.ManagerID)
	}
	if emp.StartDate == nil || !emp.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected start date truncated to day, got %+v", emp.StartDate)
	}
	if emp.EndDate == nil || !emp.EndDate.Equal(end) {
		t.Fatalf("expected end date, got %+v", emp.EndDate)
	}
	if !emp.Salary.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected salary 5000, got %s", emp.Salary)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_employee_code_key"}
	if !errors.Is(translateEmployeePgError(uniqueErr), employee.ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrEmployeeCodeAlreadyExists")
	}

	emailErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_email_key"}
	if !errors.Is(translateEmployeePgError(emailErr), employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected email unique violation to map to ErrEmailAlreadyExists")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "employees_department_id_fkey"}
	if !errors.Is(translateEmployeePgError(fkErr), employee.ErrDepartmentNotFound) {
		t.Fatalf("expected fk violation to map to ErrDepartmentNotFound")
	}

	managerErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "employees_manager_id_fkey"}
	if !errors.Is(translateEmployeePgError(managerErr), employee.ErrInvalidManager) {
		t.Fatalf("expected fk violation to map to ErrInvalidManager")
	}

	checkErr := &pgconn.PgError{Code: checkViolationCode, ConstraintName: "employees_period_check"}
	if !errors.Is(translateEmployeePgError(checkErr), employee.ErrInvalidDateRange) {
		t.Fatalf("expected check violation to map to ErrInvalidDateRange")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_List_WithFilters(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	status := employee.StatusActive

	query := regexp.QuoteMeta(`
        SELECT id, employee_code, first_name, last_name, email, phone, position, department_id, manager_id, status, start_date, end_date, salary, created_at, updated_at
          FROM employees WHERE department_id = $1 AND status = $2
         ORDER BY created_at DESC, id DESC
         LIMIT $3
        OFFSET $4
    `)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(employeeMockColumns).
		AddRow("emp-1", "E001", "Taro", "Yamada", "taro@example.com", nil, nil, "dept-1", nil, string(employee.StatusActive), nil, nil, "5000.00", now, now).
		AddRow("emp-2", "E002", "Hanako", "Sato", "hanako@example.com", nil, nil, "dept-1", nil, string(employee.StatusActive), nil, nil, "4200.50", now, now).
		AddRow("emp-3", "E003", "Ichiro", "Suzuki", "ichiro@example.com", nil, nil, "dept-1", nil, string(employee.StatusActive), nil, nil, "3900", now, now)

	mock.ExpectQuery(query).
		WithArgs("dept-1", string(status), 3, 0).
		WillReturnRows(rows)

	employees, nextToken, err := repo.List(context.Background(), employee.ListEmployeesFilter{
		DepartmentID: "dept-1",
		Status:       &status,
		Limit:        2,
		Offset:       0,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	if nextToken != "2" {
		t.Fatalf("expected next token '2', got %s", nextToken)
	}
	if !employees[1].Salary.Equal(decimal.RequireFromString("4200.5")) {
		t.Fatalf("expected salary 4200.5, got %s", employees[1].Salary)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_FindByEmail_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM employees WHERE email = $1 LIMIT 1`)).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
