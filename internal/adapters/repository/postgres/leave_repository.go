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
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
	pgdb "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
)

const leaveColumns = `id, employee_id, type, start_date, end_date, days, reason, status, reviewed_by, reviewed_at, notes, created_at, updated_at`

// LeaveRepository は PostgreSQL を利用した休暇申請永続化の実装です。
type LeaveRepository struct {
	pool pgdb.Queryer
}

// NewLeaveRepository は LeaveRepository を生成します。
func NewLeaveRepository(pool pgdb.Queryer) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

// Create は申請を追加します。
func (r *LeaveRepository) Create(ctx context.Context, req *leave.Request) (*leave.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO leave_requests (`+leaveColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+leaveColumns+`
    `,
		req.ID,
		req.EmployeeID,
		string(req.Type),
		req.StartDate,
		req.EndDate,
		req.Days,
		nullableString(req.Reason),
		string(req.Status),
		nullableString(req.ReviewedBy),
		nullableTimestamp(req.ReviewedAt),
		nullableString(req.Notes),
		req.CreatedAt,
		req.UpdatedAt,
	)

	created, err := scanLeaveRequest(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return created, nil
}

// Update は審査結果を更新します。
func (r *LeaveRepository) Update(ctx context.Context, req *leave.Request) (*leave.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE leave_requests
           SET status = $1,
               reviewed_by = $2,
               reviewed_at = $3,
               notes = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING `+leaveColumns+`
    `,
		string(req.Status),
		nullableString(req.ReviewedBy),
		nullableTimestamp(req.ReviewedAt),
		nullableString(req.Notes),
		req.UpdatedAt,
		req.ID,
	)

	updated, err := scanLeaveRequest(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return updated, nil
}

// Delete は申請を削除します。
func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return translateLeavePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRequestNotFound
	}
	return nil
}

// FindByID は ID で申請を取得します。
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*leave.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+leaveColumns+`
          FROM leave_requests
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanLeaveRequest(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return found, nil
}

// List は申請を開始日の新しい順に返します。
func (r *LeaveRepository) List(ctx context.Context, filter leave.ListFilter) ([]*leave.Request, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}
	if filter.EmployeeID != "" {
		add("employee_id", filter.EmployeeID)
	}
	if filter.Status != nil {
		add("status", string(*filter.Status))
	}
	if filter.Type != nil {
		add("type", string(*filter.Type))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + leaveColumns + `
          FROM leave_requests` + whereClause + `
         ORDER BY start_date DESC, created_at DESC, id ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	defer rows.Close()

	list := make([]*leave.Request, 0)
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, translateLeavePgError(err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, translateLeavePgError(err)
	}
	return list, nil
}

func scanLeaveRequest(row pgx.Row) (*leave.Request, error) {
	var (
		id         string
		employeeID string
		typ        string
		startDate  time.Time
		endDate    time.Time
		days       int
		reason     sql.NullString
		status     string
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
		notes      sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&typ,
		&startDate,
		&endDate,
		&days,
		&reason,
		&status,
		&reviewedBy,
		&reviewedAt,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrRequestNotFound
		}
		return nil, err
	}

	return &leave.Request{
		ID:         id,
		EmployeeID: employeeID,
		Type:       leave.Type(typ),
		StartDate:  startDate.Format(leave.DateLayout),
		EndDate:    endDate.Format(leave.DateLayout),
		Days:       days,
		Reason:     stringPtr(reason),
		Status:     leave.Status(status),
		ReviewedBy: stringPtr(reviewedBy),
		ReviewedAt: timePtr(reviewedAt),
		Notes:      stringPtr(notes),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateLeavePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == checkViolationCode {
		switch pgErr.ConstraintName {
		case "leave_requests_range_check":
			return leave.ErrInvalidDateRange
		case "leave_requests_type_check":
			return leave.ErrInvalidType
		default:
			return leave.ErrInvalidStatus
		}
	}
	return err
}
