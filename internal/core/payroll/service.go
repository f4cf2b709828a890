package payroll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
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

// LogSource は月次の作業記録を提供します。
type LogSource interface {
	ListLogs(ctx context.Context, in timelog.ListLogsInput) ([]*timelog.TimeLog, error)
}

// UseCase は給与計算ユースケースの公開インターフェースです。
type UseCase interface {
	CalculateTax(ctx context.Context, gross decimal.Decimal) (decimal.Decimal, error)
	CalculateOvertime(ctx context.Context, logs []timelog.TimeLog, hourlyRate decimal.Decimal) (decimal.Decimal, error)
	GeneratePayroll(ctx context.Context, in GenerateInput) (*Record, error)
	GetRecord(ctx context.Context, id string) (*Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)
	UpdateRecord(ctx context.Context, in UpdateRecordInput) (*Record, error)
	DeleteRecord(ctx context.Context, id string) error
	ProcessPeriod(ctx context.Context, in ProcessPeriodInput) (*Period, error)
	GetPeriod(ctx context.Context, month, year int) (*Period, error)
	ListPeriods(ctx context.Context, year *int) ([]*Period, error)
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (*Settings, error)
}

// Service は給与計算と給与期間の処理を扱います。
type Service struct {
	records   RecordRepository
	periods   PeriodRepository
	settings  SettingsRepository
	employees EmployeeDirectory
	logs      LogSource
	clock     Clock
	tx        TransactionManager
	defaults  Settings
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithDefaultSettings は保存済み設定がない場合に使う設定を指定します。
func WithDefaultSettings(s Settings) Option {
	return func(svc *Service) {
		svc.defaults = s.Clone()
	}
}

// NewService は Service を生成します。
func NewService(records RecordRepository, periods PeriodRepository, settings SettingsRepository, employees EmployeeDirectory, logs LogSource, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		records:   records,
		periods:   periods,
		settings:  settings,
		employees: employees,
		logs:      logs,
		clock:     clock,
		tx:        tx,
		defaults:  DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateInput は給与計算時の入力です。Logs が nil の場合は対象月の作業記録を読み込みます。
type GenerateInput struct {
	EmployeeID string
	Month      int
	Year       int
	Logs       []timelog.TimeLog
}

// UpdateRecordInput は給与レコード更新時の入力です。
type UpdateRecordInput struct {
	ID     string
	Status *Status
	Notes  *string
	Bonus  *decimal.Decimal
}

// ProcessPeriodInput は給与期間の締め処理の入力です。
type ProcessPeriodInput struct {
	Month       int
	Year        int
	ProcessedBy string
}

// CalculateTax は現在の設定で税額を計算します。
func (s *Service) CalculateTax(ctx context.Context, gross decimal.Decimal) (decimal.Decimal, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return CalculateTax(gross, *settings), nil
}

// CalculateOvertime は現在の設定で残業代を計算します。
func (s *Service) CalculateOvertime(ctx context.Context, logs []timelog.TimeLog, hourlyRate decimal.Decimal) (decimal.Decimal, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return CalculateOvertime(logs, hourlyRate, *settings), nil
}

// GeneratePayroll は給与を計算し、(社員, 月, 年) をキーにレコードを作成または置き換えます。
// 既存レコードが draft 以外の場合は ErrRecordLocked を返します。
func (s *Service) GeneratePayroll(ctx context.Context, in GenerateInput) (*Record, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if err := validateMonthYear(in.Month, in.Year); err != nil {
		return nil, err
	}

	var saved *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.LookupEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}

		settings, err := s.loadSettings(txCtx)
		if err != nil {
			return err
		}

		start, end := MonthBounds(in.Month, in.Year)
		logs := in.Logs
		if logs == nil {
			found, err := s.logs.ListLogs(txCtx, timelog.ListLogsInput{EmployeeID: employeeID, From: start, To: end})
			if err != nil {
				return err
			}
			for _, l := range found {
				logs = append(logs, l.Clone())
			}
		}

		id := RecordID(employeeID, in.Month, in.Year)
		now := s.clock.Now()
		createdAt := now
		bonus := decimal.Zero
		var notes *string

		existing, err := s.records.FindByID(txCtx, id)
		switch {
		case err == nil:
			if existing.Status != StatusDraft {
				return fmt.Errorf("%s is %s: %w", id, existing.Status, ErrRecordLocked)
			}
			createdAt = existing.CreatedAt
			bonus = existing.Bonus
			notes = existing.Notes
		case errors.Is(err, ErrRecordNotFound):
		default:
			return err
		}

		b := Calculate(emp.Salary, logs, bonus, settings)
		record := &Record{
			ID:          id,
			EmployeeID:  employeeID,
			Month:       in.Month,
			Year:        in.Year,
			PeriodStart: start,
			PeriodEnd:   end,
			BasicSalary: b.BasicSalary,
			Allowances:  b.Allowances,
			Deductions:  b.Deductions,
			Overtime:    b.Overtime,
			Bonus:       b.Bonus,
			Tax:         b.Tax,
			NetSalary:   b.Net,
			PayDate:     PayDate(in.Month, in.Year, settings.PayDay),
			Status:      StatusDraft,
			Notes:       notes,
			Items:       stampItems(b.Items, id),
			CreatedAt:   createdAt,
			UpdatedAt:   now,
		}

		result, err := s.records.Upsert(txCtx, record)
		if err != nil {
			return err
		}
		saved = result
		return nil
	}); err != nil {
		return nil, err
	}

	return saved, nil
}

// GetRecord は給与レコードを取得します。
func (s *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var found *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.records.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// ListRecords は給与レコードの一覧を返します。
func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error) {
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return nil, ErrInvalidMonth
	}
	if filter.Status != nil && !IsValidStatus(*filter.Status) {
		return nil, ErrInvalidStatus
	}
	filter.EmployeeID = strings.TrimSpace(filter.EmployeeID)

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.records.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = result
		return nil
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateRecord は状態・備考・賞与を更新します。状態は draft → processed → paid の順にのみ進みます。
// 賞与の変更は draft のレコードに限り、税額と差引支給額を再計算します。
func (s *Service) UpdateRecord(ctx context.Context, in UpdateRecordInput) (*Record, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}
	if in.Bonus != nil && in.Bonus.IsNegative() {
		return nil, fmt.Errorf("bonus: %w", ErrInvalidAmount)
	}

	var updated *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.records.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Bonus != nil {
			if existing.Status != StatusDraft {
				return fmt.Errorf("%s is %s: %w", existing.ID, existing.Status, ErrRecordLocked)
			}
			settings, err := s.loadSettings(txCtx)
			if err != nil {
				return err
			}
			applyBonus(existing, *in.Bonus, settings)
		}
		if in.Status != nil {
			if !canTransition(existing.Status, *in.Status) {
				return fmt.Errorf("%s -> %s: %w", existing.Status, *in.Status, ErrInvalidTransition)
			}
			existing.Status = *in.Status
		}
		if in.Notes != nil {
			notes := *in.Notes
			existing.Notes = &notes
		}
		existing.UpdatedAt = s.clock.Now()

		result, err := s.records.Update(txCtx, existing)
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

// DeleteRecord は給与レコードを削除します。
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.records.Delete(txCtx, id)
	})
}

// ProcessPeriod は対象月の給与レコードを集計し、完了済みの給与期間として保存します。
func (s *Service) ProcessPeriod(ctx context.Context, in ProcessPeriodInput) (*Period, error) {
	if err := validateMonthYear(in.Month, in.Year); err != nil {
		return nil, err
	}
	processedBy := strings.TrimSpace(in.ProcessedBy)
	if processedBy == "" {
		processedBy = "System"
	}

	var saved *Period
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		month, year := in.Month, in.Year
		records, err := s.records.List(txCtx, RecordFilter{Month: &month, Year: &year})
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, r := range records {
			total = total.Add(r.NetSalary)
		}

		start, end := MonthBounds(month, year)
		now := s.clock.Now()
		period := &Period{
			ID:            PeriodID(month, year),
			Month:         month,
			Year:          year,
			StartDate:     start,
			EndDate:       end,
			Status:        PeriodCompleted,
			ProcessedAt:   &now,
			ProcessedBy:   &processedBy,
			TotalAmount:   total,
			EmployeeCount: len(records),
		}

		result, err := s.periods.Upsert(txCtx, period)
		if err != nil {
			return err
		}
		saved = result
		return nil
	}); err != nil {
		return nil, err
	}
	return saved, nil
}

// GetPeriod は給与期間を取得します。
func (s *Service) GetPeriod(ctx context.Context, month, year int) (*Period, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}

	var found *Period
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.periods.FindByID(txCtx, PeriodID(month, year))
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// ListPeriods は給与期間の一覧を返します。
func (s *Service) ListPeriods(ctx context.Context, year *int) ([]*Period, error) {
	var periods []*Period
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.periods.List(txCtx, year)
		if err != nil {
			return err
		}
		periods = result
		return nil
	}); err != nil {
		return nil, err
	}
	return periods, nil
}

// GetSettings は現在の給与設定を返します。
func (s *Service) GetSettings(ctx context.Context) (*Settings, error) {
	var current Settings
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		loaded, err := s.loadSettings(txCtx)
		if err != nil {
			return err
		}
		current = loaded
		return nil
	}); err != nil {
		return nil, err
	}
	return &current, nil
}

// UpdateSettings は給与設定を部分更新します。
func (s *Service) UpdateSettings(ctx context.Context, patch SettingsPatch) (*Settings, error) {
	var saved *Settings
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		current, err := s.loadSettings(txCtx)
		if err != nil {
			return err
		}

		next := patch.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		next.ID = SettingsID
		next.UpdatedAt = s.clock.Now()

		result, err := s.settings.Save(txCtx, &next)
		if err != nil {
			return err
		}
		saved = result
		return nil
	}); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Service) loadSettings(ctx context.Context) (Settings, error) {
	stored, err := s.settings.Get(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		return s.defaults.Clone(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return stored.Clone(), nil
}

func applyBonus(r *Record, bonus decimal.Decimal, settings Settings) {
	r.Bonus = bonus.Round(currencyPlaces)
	r.Tax = CalculateTax(r.GrossPay(), settings).Round(currencyPlaces)
	r.NetSalary = r.GrossPay().Sub(r.Deductions).Sub(r.Tax)

	items := make([]Item, 0, len(r.Items)+1)
	var deductions []Item
	for _, it := range r.Items {
		switch {
		case it.Type == ItemBonus || it.Type == ItemTax:
		case it.IsAddition:
			items = append(items, it)
		default:
			deductions = append(deductions, it)
		}
	}
	if !r.Bonus.IsZero() {
		items = append(items, Item{Type: ItemBonus, Description: "Bonus", Amount: r.Bonus, IsAddition: true})
	}
	items = append(items, deductions...)
	items = append(items, Item{Type: ItemTax, Description: "Income Tax", Amount: r.Tax, IsAddition: false})
	r.Items = stampItems(items, r.ID)
}

func stampItems(items []Item, recordID string) []Item {
	out := CloneItems(items)
	for i := range out {
		out[i].ID = strconv.Itoa(i + 1)
		out[i].RecordID = recordID
	}
	return out
}

func validateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if year < 1900 || year > 9999 {
		return ErrInvalidYear
	}
	return nil
}
