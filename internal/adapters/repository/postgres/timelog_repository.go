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
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	pgdb "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
)

const timeLogColumns = `id, employee_id, log_date, start_time, end_time, duration_minutes, type, project, task, notes, billable, created_at, updated_at`

// TimeLogRepository は PostgreSQL を利用した作業記録永続化の実装です。
type TimeLogRepository struct {
	pool pgdb.Queryer
}

// NewTimeLogRepository は TimeLogRepository を生成します。
func NewTimeLogRepository(pool pgdb.Queryer) *TimeLogRepository {
	return &TimeLogRepository{pool: pool}
}

// Create は作業記録を追加します。
func (r *TimeLogRepository) Create(ctx context.Context, l *timelog.TimeLog) (*timelog.TimeLog, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO time_logs (id, employee_id, log_date, start_time, end_time, duration_minutes, type, project, task, notes, billable, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+timeLogColumns+`
    `,
		l.ID,
		l.EmployeeID,
		l.Date,
		l.StartTime,
		l.EndTime,
		l.Duration,
		string(l.Type),
		nullableString(l.Project),
		nullableString(l.Task),
		nullableString(l.Notes),
		nullableBool(l.Billable),
		l.CreatedAt,
		l.UpdatedAt,
	)

	created, err := scanTimeLog(row)
	if err != nil {
		return nil, translateTimeLogPgError(err)
	}
	return created, nil
}

// Update は作業記録を置き換えます。
func (r *TimeLogRepository) Update(ctx context.Context, l *timelog.TimeLog) (*timelog.TimeLog, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE time_logs
           SET log_date = $1,
               start_time = $2,
               end_time = $3,
               duration_minutes = $4,
               type = $5,
               project = $6,
               task = $7,
               notes = $8,
               billable = $9,
               updated_at = $10
         WHERE id = $11
        RETURNING `+timeLogColumns+`
    `,
		l.Date,
		l.StartTime,
		l.EndTime,
		l.Duration,
		string(l.Type),
		nullableString(l.Project),
		nullableString(l.Task),
		nullableString(l.Notes),
		nullableBool(l.Billable),
		l.UpdatedAt,
		l.ID,
	)

	updated, err := scanTimeLog(row)
	if err != nil {
		return nil, translateTimeLogPgError(err)
	}
	return updated, nil
}

// Delete は作業記録を削除します。
func (r *TimeLogRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM time_logs WHERE id = $1`, id)
	if err != nil {
		return translateTimeLogPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return timelog.ErrLogNotFound
	}
	return nil
}

// FindByID は ID で作業記録を取得します。
func (r *TimeLogRepository) FindByID(ctx context.Context, id string) (*timelog.TimeLog, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+timeLogColumns+`
          FROM time_logs
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanTimeLog(row)
	if err != nil {
		return nil, translateTimeLogPgError(err)
	}
	return found, nil
}

// List は条件に一致する作業記録を開始時刻順に返します。
func (r *TimeLogRepository) List(ctx context.Context, filter timelog.ListFilter) ([]*timelog.TimeLog, error) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.EmployeeID != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "employee_id = "+placeholder)
		args = append(args, filter.EmployeeID)
	}
	if filter.From != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "log_date >= "+placeholder)
		args = append(args, filter.From)
	}
	if filter.To != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "log_date <= "+placeholder)
		args = append(args, filter.To)
	}
	if filter.Type != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "type = "+placeholder)
		args = append(args, string(*filter.Type))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + timeLogColumns + `
          FROM time_logs` + whereClause + `
         ORDER BY start_time ASC, id ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateTimeLogPgError(err)
	}
	defer rows.Close()

	logs := make([]*timelog.TimeLog, 0)
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, translateTimeLogPgError(err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, translateTimeLogPgError(err)
	}
	return logs, nil
}

func scanTimeLog(row pgx.Row) (*timelog.TimeLog, error) {
	var (
		id         string
		employeeID string
		date       time.Time
		start      time.Time
		end        time.Time
		duration   int
		logType    string
		project    sql.NullString
		task       sql.NullString
		notes      sql.NullString
		billable   sql.NullBool
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(&id, &employeeID, &date, &start, &end, &duration, &logType, &project, &task, &notes, &billable, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timelog.ErrLogNotFound
		}
		return nil, err
	}

	var billablePtr *bool
	if billable.Valid {
		b := billable.Bool
		billablePtr = &b
	}

	return &timelog.TimeLog{
		ID:         id,
		EmployeeID: employeeID,
		Date:       date.Format(timelog.DateLayout),
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Duration:   duration,
		Type:       timelog.Type(logType),
		Project:    stringPtr(project),
		Task:       stringPtr(task),
		Notes:      stringPtr(notes),
		Billable:   billablePtr,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateTimeLogPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return timelog.ErrLogAlreadyExists
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "time_logs_type_check":
				return timelog.ErrInvalidType
			case "time_logs_range_check":
				return timelog.ErrInvalidTimeRange
			default:
				return timelog.ErrInvalidDuration
			}
		}
	}
	return err
}

func nullableBool(value *bool) any {
	if value == nil {
		return nil
	}
	return *value
}
