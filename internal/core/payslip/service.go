package payslip

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase は給与明細ユースケースの公開インターフェースです。
type UseCase interface {
	Generate(ctx context.Context, recordID string) (*Payslip, error)
	Get(ctx context.Context, id string) (*Payslip, error)
	List(ctx context.Context, employeeID string) ([]*Payslip, error)
	MarkSent(ctx context.Context, id string) (*Payslip, error)
	Acknowledge(ctx context.Context, id string) (*Payslip, error)
}

// Service は給与レコードから明細を作成します。
type Service struct {
	repo     Repository
	records  RecordSource
	settings SettingsSource
	clock    Clock
}

// NewService は Service を生成します。settings が nil の場合は通貨を空のままにします。
func NewService(repo Repository, records RecordSource, settings SettingsSource, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, records: records, settings: settings, clock: clock}
}

// Generate は給与レコードから明細を作成します。同じレコードに対する再作成は置き換えになりますが、
// 送付済み・受領済みの明細は置き換えず ErrAlreadyDelivered を返します。
// 支給額・控除額をレコードの各項目から計算し直し、差引支給額と一致しない場合は ErrInconsistentTotals を返します。
func (s *Service) Generate(ctx context.Context, recordID string) (*Payslip, error) {
	id := strings.TrimSpace(recordID)
	if id == "" {
		return nil, ErrInvalidRecordID
	}

	record, err := s.records.GetRecord(ctx, id)
	if errors.Is(err, payroll.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}

	gross := record.BasicSalary.Add(record.Overtime).Add(record.Allowances).Add(record.Bonus)
	deductions := record.Deductions.Add(record.Tax)
	if !gross.Sub(deductions).Equal(record.NetSalary) {
		return nil, fmt.Errorf("%s: gross %s - deductions %s != net %s: %w", id, gross, deductions, record.NetSalary, ErrInconsistentTotals)
	}

	existing, err := s.repo.FindByID(ctx, IDFor(record.ID))
	switch {
	case errors.Is(err, ErrPayslipNotFound):
	case err != nil:
		return nil, err
	case existing.Status == StatusSent || existing.Status == StatusAcknowledged:
		return nil, fmt.Errorf("%s is %s: %w", existing.ID, existing.Status, ErrAlreadyDelivered)
	}

	var currency string
	if s.settings != nil {
		settings, err := s.settings.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		currency = settings.Currency
	}

	var notes *string
	if record.Notes != nil {
		v := *record.Notes
		notes = &v
	}

	slip := &Payslip{
		ID:              IDFor(record.ID),
		RecordID:        record.ID,
		EmployeeID:      record.EmployeeID,
		Period:          strconv.Itoa(record.Month) + "/" + strconv.Itoa(record.Year),
		Month:           record.Month,
		Year:            record.Year,
		IssueDate:       s.clock.Now(),
		Items:           payroll.CloneItems(record.Items),
		GrossPay:        gross,
		TotalDeductions: deductions,
		NetPay:          record.NetSalary,
		Currency:        currency,
		Notes:           notes,
		Status:          StatusGenerated,
	}

	return s.repo.Upsert(ctx, slip)
}

// Get は明細を取得します。
func (s *Service) Get(ctx context.Context, id string) (*Payslip, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// List は明細の一覧を返します。employeeID が空の場合は全件です。
func (s *Service) List(ctx context.Context, employeeID string) ([]*Payslip, error) {
	return s.repo.List(ctx, strings.TrimSpace(employeeID))
}

// MarkSent は明細を送付済みにします。
func (s *Service) MarkSent(ctx context.Context, id string) (*Payslip, error) {
	return s.transition(ctx, id, StatusSent, func(p *Payslip, now time.Time) {
		p.SentAt = &now
	})
}

// Acknowledge は明細を受領済みにします。
func (s *Service) Acknowledge(ctx context.Context, id string) (*Payslip, error) {
	return s.transition(ctx, id, StatusAcknowledged, func(p *Payslip, now time.Time) {
		p.AcknowledgedAt = &now
	})
}

func (s *Service) transition(ctx context.Context, id string, to Status, apply func(*Payslip, time.Time)) (*Payslip, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(existing.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", existing.Status, to, ErrInvalidTransition)
	}

	existing.Status = to
	apply(existing, s.clock.Now())
	return s.repo.Update(ctx, existing)
}
