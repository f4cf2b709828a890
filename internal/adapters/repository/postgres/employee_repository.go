package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const employeeColumns = `id, employee_code, first_name, last_name, email, phone, position, department_id, manager_id, status, start_date, end_date, salary, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (employee_code, first_name, last_name, email, phone, position, department_id, manager_id, status, start_date, end_date, salary, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING `+employeeColumns+`
    `,
		e.EmployeeCode,
		e.FirstName,
		e.LastName,
		e.Email,
		nullableString(e.Phone),
		nullableString(e.Position),
		nullableString(e.DepartmentID),
		nullableString(e.ManagerID),
		string(e.Status),
		nullableTime(e.StartDate),
		nullableTime(e.EndDate),
		e.Salary,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET employee_code = $1,
               first_name = $2,
               last_name = $3,
               email = $4,
               phone = $5,
               position = $6,
               department_id = $7,
               manager_id = $8,
               status = $9,
               start_date = $10,
               end_date = $11,
               salary = $12,
               updated_at = $13
         WHERE id = $14
        RETURNING `+employeeColumns+`
    `,
		e.EmployeeCode,
		e.FirstName,
		e.LastName,
		e.Email,
		nullableString(e.Phone),
		nullableString(e.Position),
		nullableString(e.DepartmentID),
		nullableString(e.ManagerID),
		string(e.Status),
		nullableTime(e.StartDate),
		nullableTime(e.EndDate),
		e.Salary,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, "id", id)
}

// FindByCode は社員コードで検索します。
func (r *EmployeeRepository) FindByCode(ctx context.Context, employeeCode string) (*employee.Employee, error) {
	return r.findOne(ctx, "employee_code", employeeCode)
}

// FindByEmail はメールアドレスで検索します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findOne(ctx, "email", email)
}

func (r *EmployeeRepository) findOne(ctx context.Context, column, value string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE `+column+` = $1
         LIMIT 1
    `, value)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.DepartmentID != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "department_id = "+placeholder)
		args = append(args, filter.DepartmentID)
	}

	if filter.ManagerID != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "manager_id = "+placeholder)
		args = append(args, filter.ManagerID)
	}

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id           string
		code         string
		firstName    string
		lastName     string
		email        string
		phone        sql.NullString
		position     sql.NullString
		departmentID sql.NullString
		managerID    sql.NullString
		status       string
		startDate    sql.NullTime
		endDate      sql.NullTime
		salary       decimal.Decimal
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(
		&id,
		&code,
		&firstName,
		&lastName,
		&email,
		&phone,
		&position,
		&departmentID,
		&managerID,
		&status,
		&startDate,
		&endDate,
		&salary,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		ID:           id,
		EmployeeCode: code,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        stringPtr(phone),
		Position:     stringPtr(position),
		DepartmentID: stringPtr(departmentID),
		ManagerID:    stringPtr(managerID),
		Status:       employee.Status(status),
		StartDate:    datePtr(startDate),
		EndDate:      datePtr(endDate),
		Salary:       salary,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == "employees_email_key" {
				return employee.ErrEmailAlreadyExists
			}
			return employee.ErrEmployeeCodeAlreadyExists
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "employees_department_id_fkey":
				return employee.ErrDepartmentNotFound
			case "employees_manager_id_fkey":
				return employee.ErrInvalidManager
			default:
				return err
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "employees_status_check":
				return employee.ErrInvalidStatus
			case "employees_salary_check":
				return employee.ErrInvalidSalary
			default:
				return employee.ErrInvalidDateRange
			}
		}
	}

	return err
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}
