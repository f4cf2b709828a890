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
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	pgdb "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const payrollRecordColumns = `id, employee_id, month, year, period_start, period_end, basic_salary, allowances, deductions, overtime, bonus, tax, net_salary, pay_date, status, notes, created_at, updated_at`

// PayrollRecordRepository は PostgreSQL を利用した給与レコード永続化の実装です。
// 明細行は payroll_items に保存し、レコードと同じトランザクションで書き換えます。
type PayrollRecordRepository struct {
	pool pgdb.Queryer
}

// NewPayrollRecordRepository は PayrollRecordRepository を生成します。
func NewPayrollRecordRepository(pool pgdb.Queryer) *PayrollRecordRepository {
	return &PayrollRecordRepository{pool: pool}
}

// Upsert は (社員, 月, 年) の給与レコードを作成または置き換えます。
func (r *PayrollRecordRepository) Upsert(ctx context.Context, rec *payroll.Record) (*payroll.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO payroll_records (`+payrollRecordColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        ON CONFLICT (id) DO UPDATE
           SET period_start = EXCLUDED.period_start,
               period_end = EXCLUDED.period_end,
               basic_salary = EXCLUDED.basic_salary,
               allowances = EXCLUDED.allowances,
               deductions = EXCLUDED.deductions,
               overtime = EXCLUDED.overtime,
               bonus = EXCLUDED.bonus,
               tax = EXCLUDED.tax,
               net_salary = EXCLUDED.net_salary,
               pay_date = EXCLUDED.pay_date,
               status = EXCLUDED.status,
               notes = EXCLUDED.notes,
               updated_at = EXCLUDED.updated_at
        RETURNING `+payrollRecordColumns+`
    `,
		rec.ID,
		rec.EmployeeID,
		rec.Month,
		rec.Year,
		rec.PeriodStart,
		rec.PeriodEnd,
		rec.BasicSalary,
		rec.Allowances,
		rec.Deductions,
		rec.Overtime,
		rec.Bonus,
		rec.Tax,
		rec.NetSalary,
		rec.PayDate,
		string(rec.Status),
		nullableString(rec.Notes),
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	saved, err := scanPayrollRecord(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	if err := r.replaceItems(ctx, exec, saved.ID, rec.Items); err != nil {
		return nil, err
	}
	saved.Items = payroll.CloneItems(rec.Items)
	return saved, nil
}

// Update は既存の給与レコードを更新します。
func (r *PayrollRecordRepository) Update(ctx context.Context, rec *payroll.Record) (*payroll.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE payroll_records
           SET basic_salary = $1,
               allowances = $2,
               deductions = $3,
               overtime = $4,
               bonus = $5,
               tax = $6,
               net_salary = $7,
               pay_date = $8,
               status = $9,
               notes = $10,
               updated_at = $11
         WHERE id = $12
        RETURNING `+payrollRecordColumns+`
    `,
		rec.BasicSalary,
		rec.Allowances,
		rec.Deductions,
		rec.Overtime,
		rec.Bonus,
		rec.Tax,
		rec.NetSalary,
		rec.PayDate,
		string(rec.Status),
		nullableString(rec.Notes),
		rec.UpdatedAt,
		rec.ID,
	)

	saved, err := scanPayrollRecord(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	if err := r.replaceItems(ctx, exec, saved.ID, rec.Items); err != nil {
		return nil, err
	}
	saved.Items = payroll.CloneItems(rec.Items)
	return saved, nil
}

// Delete は給与レコードを削除します。明細行は外部キーで連鎖削除されます。
func (r *PayrollRecordRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1`, id)
	if err != nil {
		return translatePayrollPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRecordNotFound
	}
	return nil
}

// FindByID は ID で給与レコードを明細行付きで取得します。
func (r *PayrollRecordRepository) FindByID(ctx context.Context, id string) (*payroll.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+payrollRecordColumns+`
          FROM payroll_records
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanPayrollRecord(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}

	items, err := r.loadItems(ctx, exec, []string{found.ID})
	if err != nil {
		return nil, err
	}
	found.Items = items[found.ID]
	return found, nil
}

// List は条件に一致する給与レコードを年月の新しい順・社員 ID 順に返します。
func (r *PayrollRecordRepository) List(ctx context.Context, filter payroll.RecordFilter) ([]*payroll.Record, error) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.EmployeeID != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "employee_id = "+placeholder)
		args = append(args, filter.EmployeeID)
	}
	if filter.Month != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "month = "+placeholder)
		args = append(args, *filter.Month)
	}
	if filter.Year != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "year = "+placeholder)
		args = append(args, *filter.Year)
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
        SELECT ` + payrollRecordColumns + `
          FROM payroll_records` + whereClause + `
         ORDER BY year DESC, month DESC, employee_id ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}

	records := make([]*payroll.Record, 0)
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			rows.Close()
			return nil, translatePayrollPgError(err)
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, translatePayrollPgError(err)
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	items, err := r.loadItems(ctx, exec, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Items = items[rec.ID]
	}
	return records, nil
}

func (r *PayrollRecordRepository) replaceItems(ctx context.Context, exec pgdb.Queryer, recordID string, items []payroll.Item) error {
	if _, err := exec.Exec(ctx, `DELETE FROM payroll_items WHERE record_id = $1`, recordID); err != nil {
		return fmt.Errorf("postgres: clear payroll items: %w", err)
	}
	for i, it := range items {
		if _, err := exec.Exec(ctx, `
            INSERT INTO payroll_items (record_id, id, position, type, description, amount, is_addition, category)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        `, recordID, it.ID, i, string(it.Type), it.Description, it.Amount, it.IsAddition, nullableString(it.Category)); err != nil {
			return fmt.Errorf("postgres: insert payroll item: %w", err)
		}
	}
	return nil
}

func (r *PayrollRecordRepository) loadItems(ctx context.Context, exec pgdb.Queryer, recordIDs []string) (map[string][]payroll.Item, error) {
	rows, err := exec.Query(ctx, `
        SELECT record_id, id, type, description, amount, is_addition, category
          FROM payroll_items
         WHERE record_id = ANY($1)
         ORDER BY record_id, position
    `, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres: load payroll items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]payroll.Item, len(recordIDs))
	for _, id := range recordIDs {
		out[id] = []payroll.Item{}
	}
	for rows.Next() {
		var (
			it       payroll.Item
			itemType string
			category sql.NullString
		)
		if err := rows.Scan(&it.RecordID, &it.ID, &itemType, &it.Description, &it.Amount, &it.IsAddition, &category); err != nil {
			return nil, fmt.Errorf("postgres: scan payroll item: %w", err)
		}
		it.Type = payroll.ItemType(itemType)
		it.Category = stringPtr(category)
		out[it.RecordID] = append(out[it.RecordID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load payroll items: %w", err)
	}
	return out, nil
}

func scanPayrollRecord(row pgx.Row) (*payroll.Record, error) {
	var (
		rec         payroll.Record
		periodStart time.Time
		periodEnd   time.Time
		payDate     time.Time
		status      string
		notes       sql.NullString
	)

	if err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.Month,
		&rec.Year,
		&periodStart,
		&periodEnd,
		&rec.BasicSalary,
		&rec.Allowances,
		&rec.Deductions,
		&rec.Overtime,
		&rec.Bonus,
		&rec.Tax,
		&rec.NetSalary,
		&payDate,
		&status,
		&notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, err
	}

	rec.PeriodStart = periodStart.Format(timelog.DateLayout)
	rec.PeriodEnd = periodEnd.Format(timelog.DateLayout)
	rec.PayDate = payDate.Format(timelog.DateLayout)
	rec.Status = payroll.Status(status)
	rec.Notes = stringPtr(notes)
	rec.Items = []payroll.Item{}
	return &rec, nil
}

func translatePayrollPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "payroll_records_month_check":
				return payroll.ErrInvalidMonth
			case "payroll_records_status_check", "payroll_periods_status_check":
				return payroll.ErrInvalidStatus
			default:
				return payroll.ErrInvalidSettings
			}
		}
	}
	return err
}

const payrollPeriodColumns = `id, month, year, start_date, end_date, status, processed_at, processed_by, total_amount, employee_count`

// PayrollPeriodRepository は PostgreSQL を利用した給与期間永続化の実装です。
type PayrollPeriodRepository struct {
	pool pgdb.Queryer
}

// NewPayrollPeriodRepository は PayrollPeriodRepository を生成します。
func NewPayrollPeriodRepository(pool pgdb.Queryer) *PayrollPeriodRepository {
	return &PayrollPeriodRepository{pool: pool}
}

// Upsert は給与期間を作成または置き換えます。
func (r *PayrollPeriodRepository) Upsert(ctx context.Context, p *payroll.Period) (*payroll.Period, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO payroll_periods (`+payrollPeriodColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE
           SET status = EXCLUDED.status,
               processed_at = EXCLUDED.processed_at,
               processed_by = EXCLUDED.processed_by,
               total_amount = EXCLUDED.total_amount,
               employee_count = EXCLUDED.employee_count
        RETURNING `+payrollPeriodColumns+`
    `,
		p.ID,
		p.Month,
		p.Year,
		p.StartDate,
		p.EndDate,
		string(p.Status),
		nullableTimestamp(p.ProcessedAt),
		nullableString(p.ProcessedBy),
		p.TotalAmount,
		p.EmployeeCount,
	)

	saved, err := scanPayrollPeriod(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	return saved, nil
}

// FindByID は ID で給与期間を取得します。
func (r *PayrollPeriodRepository) FindByID(ctx context.Context, id string) (*payroll.Period, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+payrollPeriodColumns+`
          FROM payroll_periods
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanPayrollPeriod(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	return found, nil
}

// List は給与期間を新しい順に返します。year が nil の場合は全件です。
func (r *PayrollPeriodRepository) List(ctx context.Context, year *int) ([]*payroll.Period, error) {
	args := make([]any, 0, 1)
	whereClause := ""
	if year != nil {
		whereClause = " WHERE year = $1"
		args = append(args, *year)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+payrollPeriodColumns+`
          FROM payroll_periods`+whereClause+`
         ORDER BY year DESC, month DESC
    `, args...)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	defer rows.Close()

	periods := make([]*payroll.Period, 0)
	for rows.Next() {
		p, err := scanPayrollPeriod(rows)
		if err != nil {
			return nil, translatePayrollPgError(err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePayrollPgError(err)
	}
	return periods, nil
}

func scanPayrollPeriod(row pgx.Row) (*payroll.Period, error) {
	var (
		p           payroll.Period
		start       time.Time
		end         time.Time
		status      string
		processedAt sql.NullTime
		processedBy sql.NullString
		total       decimal.Decimal
	)

	if err := row.Scan(&p.ID, &p.Month, &p.Year, &start, &end, &status, &processedAt, &processedBy, &total, &p.EmployeeCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrPeriodNotFound
		}
		return nil, err
	}

	p.StartDate = start.Format(timelog.DateLayout)
	p.EndDate = end.Format(timelog.DateLayout)
	p.Status = payroll.PeriodStatus(status)
	p.ProcessedAt = timePtr(processedAt)
	p.ProcessedBy = stringPtr(processedBy)
	p.TotalAmount = total
	return &p, nil
}

const payrollSettingsColumns = `id, overtime_rate, tax_rate, pay_day, currency, tax_year, standard_monthly_hours, allowance_types, deduction_types, allowance_rules, deduction_rules, updated_at`

// PayrollSettingsRepository は給与設定を一行で保持します。
type PayrollSettingsRepository struct {
	pool pgdb.Queryer
}

// NewPayrollSettingsRepository は PayrollSettingsRepository を生成します。
func NewPayrollSettingsRepository(pool pgdb.Queryer) *PayrollSettingsRepository {
	return &PayrollSettingsRepository{pool: pool}
}

// Get は保存済みの給与設定を返します。未保存の場合は ErrSettingsNotFound です。
func (r *PayrollSettingsRepository) Get(ctx context.Context) (*payroll.Settings, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+payrollSettingsColumns+`
          FROM payroll_settings
         WHERE id = $1
         LIMIT 1
    `, payroll.SettingsID)

	found, err := scanPayrollSettings(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	return found, nil
}

// Save は給与設定を保存します。
func (r *PayrollSettingsRepository) Save(ctx context.Context, s *payroll.Settings) (*payroll.Settings, error) {
	allowanceTypes, err := encodeStrings(s.AllowanceTypes)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode allowance types: %w", err)
	}
	deductionTypes, err := encodeStrings(s.DeductionTypes)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode deduction types: %w", err)
	}
	allowanceRules, err := encodeRules(s.AllowanceRules)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode allowance rules: %w", err)
	}
	deductionRules, err := encodeRules(s.DeductionRules)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode deduction rules: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO payroll_settings (`+payrollSettingsColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (id) DO UPDATE
           SET overtime_rate = EXCLUDED.overtime_rate,
               tax_rate = EXCLUDED.tax_rate,
               pay_day = EXCLUDED.pay_day,
               currency = EXCLUDED.currency,
               tax_year = EXCLUDED.tax_year,
               standard_monthly_hours = EXCLUDED.standard_monthly_hours,
               allowance_types = EXCLUDED.allowance_types,
               deduction_types = EXCLUDED.deduction_types,
               allowance_rules = EXCLUDED.allowance_rules,
               deduction_rules = EXCLUDED.deduction_rules,
               updated_at = EXCLUDED.updated_at
        RETURNING `+payrollSettingsColumns+`
    `,
		payroll.SettingsID,
		s.OvertimeRate,
		s.TaxRate,
		s.PayDay,
		s.Currency,
		s.TaxYear,
		s.StandardMonthlyHours,
		allowanceTypes,
		deductionTypes,
		allowanceRules,
		deductionRules,
		s.UpdatedAt,
	)

	saved, err := scanPayrollSettings(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	return saved, nil
}

func scanPayrollSettings(row pgx.Row) (*payroll.Settings, error) {
	var (
		s                 payroll.Settings
		rawAllowanceTypes []byte
		rawDeductionTypes []byte
		rawAllowanceRules []byte
		rawDeductionRules []byte
	)

	if err := row.Scan(
		&s.ID,
		&s.OvertimeRate,
		&s.TaxRate,
		&s.PayDay,
		&s.Currency,
		&s.TaxYear,
		&s.StandardMonthlyHours,
		&rawAllowanceTypes,
		&rawDeductionTypes,
		&rawAllowanceRules,
		&rawDeductionRules,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrSettingsNotFound
		}
		return nil, err
	}

	var err error
	if s.AllowanceTypes, err = decodeStrings(rawAllowanceTypes); err != nil {
		return nil, fmt.Errorf("postgres: decode allowance types: %w", err)
	}
	if s.DeductionTypes, err = decodeStrings(rawDeductionTypes); err != nil {
		return nil, fmt.Errorf("postgres: decode deduction types: %w", err)
	}
	if s.AllowanceRules, err = decodeRules(rawAllowanceRules); err != nil {
		return nil, fmt.Errorf("postgres: decode allowance rules: %w", err)
	}
	if s.DeductionRules, err = decodeRules(rawDeductionRules); err != nil {
		return nil, fmt.Errorf("postgres: decode deduction rules: %w", err)
	}
	return &s, nil
}
