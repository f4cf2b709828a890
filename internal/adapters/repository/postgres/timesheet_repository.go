package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
	pgdb "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
)

const timesheetColumns = `id, employee_id, period_start, period_end, logs, total_minutes, overtime_minutes, break_minutes, total_hours, overtime_hours, status, submitted_at, approved_by, notes, created_at, updated_at`

// TimesheetRepository は PostgreSQL を利用したタイムシート永続化の実装です。
// 集計元の作業記録は生成時点のスナップショットとして JSONB で保持します。
type TimesheetRepository struct {
	pool pgdb.Queryer
}

// NewTimesheetRepository は TimesheetRepository を生成します。
func NewTimesheetRepository(pool pgdb.Queryer) *TimesheetRepository {
	return &TimesheetRepository{pool: pool}
}

// Create はタイムシートを追加します。
func (r *TimesheetRepository) Create(ctx context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	return r.write(ctx, `
        INSERT INTO timesheets (`+timesheetColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING `+timesheetColumns+`
    `, t)
}

// Upsert は同一 ID のタイムシートを置き換えます。作成日時は既存のものを残します。
func (r *TimesheetRepository) Upsert(ctx context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	return r.write(ctx, `
        INSERT INTO timesheets (`+timesheetColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (id) DO UPDATE
           SET logs = EXCLUDED.logs,
               total_minutes = EXCLUDED.total_minutes,
               overtime_minutes = EXCLUDED.overtime_minutes,
               break_minutes = EXCLUDED.break_minutes,
               total_hours = EXCLUDED.total_hours,
               overtime_hours = EXCLUDED.overtime_hours,
               status = EXCLUDED.status,
               submitted_at = EXCLUDED.submitted_at,
               approved_by = EXCLUDED.approved_by,
               notes = EXCLUDED.notes,
               updated_at = EXCLUDED.updated_at
        RETURNING `+timesheetColumns+`
    `, t)
}

// Update は承認状態などを更新します。
func (r *TimesheetRepository) Update(ctx context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE timesheets
           SET status = $1,
               submitted_at = $2,
               approved_by = $3,
               notes = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING `+timesheetColumns+`
    `,
		string(t.Status),
		nullableTimestamp(t.SubmittedAt),
		nullableString(t.ApprovedBy),
		nullableString(t.Notes),
		t.UpdatedAt,
		t.ID,
	)

	updated, err := scanTimesheet(row)
	if err != nil {
		return nil, translateTimesheetPgError(err)
	}
	return updated, nil
}

// Delete はタイムシートを削除します。
func (r *TimesheetRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM timesheets WHERE id = $1`, id)
	if err != nil {
		return translateTimesheetPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}
	return nil
}

// FindByID は ID でタイムシートを取得します。
func (r *TimesheetRepository) FindByID(ctx context.Context, id string) (*timesheet.Timesheet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+timesheetColumns+`
          FROM timesheets
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanTimesheet(row)
	if err != nil {
		return nil, translateTimesheetPgError(err)
	}
	return found, nil
}

// List はタイムシートを期間の新しい順に返します。
func (r *TimesheetRepository) List(ctx context.Context, filter timesheet.ListFilter) ([]*timesheet.Timesheet, error) {
	args := make([]any, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.EmployeeID != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "employee_id = "+placeholder)
		args = append(args, filter.EmployeeID)
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

	query := `
        SELECT ` + timesheetColumns + `
          FROM timesheets` + whereClause + `
         ORDER BY period_start DESC, created_at DESC, id DESC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateTimesheetPgError(err)
	}
	defer rows.Close()

	sheets := make([]*timesheet.Timesheet, 0)
	for rows.Next() {
		sheet, err := scanTimesheet(rows)
		if err != nil {
			return nil, translateTimesheetPgError(err)
		}
		sheets = append(sheets, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, translateTimesheetPgError(err)
	}
	return sheets, nil
}

func (r *TimesheetRepository) write(ctx context.Context, query string, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	logs, err := encodeTimeLogs(t.Logs)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode timesheet logs: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, query,
		t.ID,
		t.EmployeeID,
		t.PeriodStart,
		t.PeriodEnd,
		logs,
		t.TotalMinutes,
		t.OvertimeMinutes,
		t.BreakMinutes,
		t.TotalHours,
		t.OvertimeHours,
		string(t.Status),
		nullableTimestamp(t.SubmittedAt),
		nullableString(t.ApprovedBy),
		nullableString(t.Notes),
		t.CreatedAt,
		t.UpdatedAt,
	)

	saved, err := scanTimesheet(row)
	if err != nil {
		return nil, translateTimesheetPgError(err)
	}
	return saved, nil
}

func scanTimesheet(row pgx.Row) (*timesheet.Timesheet, error) {
	var (
		id              string
		employeeID      string
		periodStart     time.Time
		periodEnd       time.Time
		rawLogs         []byte
		totalMinutes    int
		overtimeMinutes int
		breakMinutes    int
		totalHours      float64
		overtimeHours   float64
		status          string
		submittedAt     sql.NullTime
		approvedBy      sql.NullString
		notes           sql.NullString
		createdAt       time.Time
		updatedAt       time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&periodStart,
		&periodEnd,
		&rawLogs,
		&totalMinutes,
		&overtimeMinutes,
		&breakMinutes,
		&totalHours,
		&overtimeHours,
		&status,
		&submittedAt,
		&approvedBy,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timesheet.ErrTimesheetNotFound
		}
		return nil, err
	}

	logs, err := decodeTimeLogs(rawLogs)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode timesheet logs: %w", err)
	}

	return &timesheet.Timesheet{
		ID:              id,
		EmployeeID:      employeeID,
		PeriodStart:     periodStart.Format(timelog.DateLayout),
		PeriodEnd:       periodEnd.Format(timelog.DateLayout),
		Logs:            logs,
		TotalMinutes:    totalMinutes,
		OvertimeMinutes: overtimeMinutes,
		BreakMinutes:    breakMinutes,
		TotalHours:      totalHours,
		OvertimeHours:   overtimeHours,
		Status:          timesheet.Status(status),
		SubmittedAt:     timePtr(submittedAt),
		ApprovedBy:      stringPtr(approvedBy),
		Notes:           stringPtr(notes),
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func translateTimesheetPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode:
			if pgErr.ConstraintName == "timesheets_period_check" {
				return timesheet.ErrInvalidPeriod
			}
			return timesheet.ErrInvalidTransition
		}
	}
	return err
}
