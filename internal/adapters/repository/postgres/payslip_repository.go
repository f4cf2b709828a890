package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	pgdb "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
)

const payslipColumns = `id, record_id, employee_id, period, month, year, issue_date, items, gross_pay, total_deductions, net_pay, currency, notes, status, sent_at, acknowledged_at`

// PayslipRepository は PostgreSQL を利用した給与明細永続化の実装です。
type PayslipRepository struct {
	pool pgdb.Queryer
}

// NewPayslipRepository は PayslipRepository を生成します。
func NewPayslipRepository(pool pgdb.Queryer) *PayslipRepository {
	return &PayslipRepository{pool: pool}
}

// Upsert は給与明細を作成または置き換えます。
func (r *PayslipRepository) Upsert(ctx context.Context, p *payslip.Payslip) (*payslip.Payslip, error) {
	return r.write(ctx, `
        INSERT INTO payslips (`+payslipColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (id) DO UPDATE
           SET period = EXCLUDED.period,
               month = EXCLUDED.month,
               year = EXCLUDED.year,
               issue_date = EXCLUDED.issue_date,
               items = EXCLUDED.items,
               gross_pay = EXCLUDED.gross_pay,
               total_deductions = EXCLUDED.total_deductions,
               net_pay = EXCLUDED.net_pay,
               currency = EXCLUDED.currency,
               notes = EXCLUDED.notes,
               status = EXCLUDED.status,
               sent_at = EXCLUDED.sent_at,
               acknowledged_at = EXCLUDED.acknowledged_at
        RETURNING `+payslipColumns+`
    `, p)
}

// Update は配布状態を更新します。
func (r *PayslipRepository) Update(ctx context.Context, p *payslip.Payslip) (*payslip.Payslip, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE payslips
           SET status = $1,
               notes = $2,
               sent_at = $3,
               acknowledged_at = $4
         WHERE id = $5
        RETURNING `+payslipColumns+`
    `,
		string(p.Status),
		nullableString(p.Notes),
		nullableTimestamp(p.SentAt),
		nullableTimestamp(p.AcknowledgedAt),
		p.ID,
	)

	updated, err := scanPayslip(row)
	if err != nil {
		return nil, translatePayslipPgError(err)
	}
	return updated, nil
}

// FindByID は ID で給与明細を取得します。
func (r *PayslipRepository) FindByID(ctx context.Context, id string) (*payslip.Payslip, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+payslipColumns+`
          FROM payslips
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanPayslip(row)
	if err != nil {
		return nil, translatePayslipPgError(err)
	}
	return found, nil
}

// List は給与明細を年月の新しい順に返します。employeeID が空の場合は全件です。
func (r *PayslipRepository) List(ctx context.Context, employeeID string) ([]*payslip.Payslip, error) {
	args := make([]any, 0, 1)
	whereClause := ""
	if employeeID != "" {
		whereClause = " WHERE employee_id = $1"
		args = append(args, employeeID)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+payslipColumns+`
          FROM payslips`+whereClause+`
         ORDER BY year DESC, month DESC, employee_id ASC
    `, args...)
	if err != nil {
		return nil, translatePayslipPgError(err)
	}
	defer rows.Close()

	slips := make([]*payslip.Payslip, 0)
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, translatePayslipPgError(err)
		}
		slips = append(slips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePayslipPgError(err)
	}
	return slips, nil
}

func (r *PayslipRepository) write(ctx context.Context, query string, p *payslip.Payslip) (*payslip.Payslip, error) {
	items, err := encodeItems(p.Items)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode payslip items: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, query,
		p.ID,
		p.RecordID,
		p.EmployeeID,
		p.Period,
		p.Month,
		p.Year,
		p.IssueDate,
		items,
		p.GrossPay,
		p.TotalDeductions,
		p.NetPay,
		p.Currency,
		nullableString(p.Notes),
		string(p.Status),
		nullableTimestamp(p.SentAt),
		nullableTimestamp(p.AcknowledgedAt),
	)

	saved, err := scanPayslip(row)
	if err != nil {
		return nil, translatePayslipPgError(err)
	}
	return saved, nil
}

func scanPayslip(row pgx.Row) (*payslip.Payslip, error) {
	var (
		p              payslip.Payslip
		rawItems       []byte
		notes          sql.NullString
		status         string
		sentAt         sql.NullTime
		acknowledgedAt sql.NullTime
	)

	if err := row.Scan(
		&p.ID,
		&p.RecordID,
		&p.EmployeeID,
		&p.Period,
		&p.Month,
		&p.Year,
		&p.IssueDate,
		&rawItems,
		&p.GrossPay,
		&p.TotalDeductions,
		&p.NetPay,
		&p.Currency,
		&notes,
		&status,
		&sentAt,
		&acknowledgedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payslip.ErrPayslipNotFound
		}
		return nil, err
	}

	items, err := decodeItems(rawItems)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode payslip items: %w", err)
	}

	p.Items = items
	p.Notes = stringPtr(notes)
	p.Status = payslip.Status(status)
	p.SentAt = timePtr(sentAt)
	p.AcknowledgedAt = timePtr(acknowledgedAt)
	return &p, nil
}

func translatePayslipPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return payslip.ErrRecordNotFound
		case checkViolationCode:
			return payslip.ErrInvalidTransition
		}
	}
	return err
}
