package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
)

var payslipMockColumns = []string{"id", "record_id", "employee_id", "period", "month", "year", "issue_date", "items", "gross_pay", "total_deductions", "net_pay", "currency", "notes", "status", "sent_at", "acknowledged_at"}

func TestPayslipRepository_FindByID_DecodesItems(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPayslipRepository(mock)
	issued := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	items, err := encodeItems([]payroll.Item{
		{ID: "1", RecordID: "emp-1-3-2025", Type: payroll.ItemBasicSalary, Description: "Basic Salary", Amount: decimal.NewFromInt(5000), IsAddition: true},
	})
	if err != nil {
		t.Fatalf("encodeItems returned error: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM payslips WHERE id = $1 LIMIT 1`)).
		WithArgs("payslip-emp-1-3-2025").
		WillReturnRows(pgxmock.NewRows(payslipMockColumns).
			AddRow("payslip-emp-1-3-2025", "emp-1-3-2025", "emp-1", "3/2025", 3, 2025, issued, items, "5968.75", "1095.31", "4873.44", "USD", nil, "sent", issued, nil))

	found, err := repo.FindByID(context.Background(), "payslip-emp-1-3-2025")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}

	if found.Status != payslip.StatusSent || found.SentAt == nil || found.AcknowledgedAt != nil {
		t.Fatalf("unexpected status fields: %+v", found)
	}
	if len(found.Items) != 1 || !found.Items[0].Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected items: %+v", found.Items)
	}
	if !found.GrossPay.Sub(found.TotalDeductions).Equal(found.NetPay) {
		t.Fatalf("expected totals to reconcile: %s - %s != %s", found.GrossPay, found.TotalDeductions, found.NetPay)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPayslipRepository_List_ByEmployee(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPayslipRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM payslips WHERE employee_id = $1 ORDER BY year DESC, month DESC, employee_id ASC`)).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows(payslipMockColumns))

	slips, err := repo.List(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(slips) != 0 {
		t.Fatalf("expected no payslips, got %d", len(slips))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslatePayslipPgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translatePayslipPgError(&pgconn.PgError{Code: foreignKeyViolationCode}), payslip.ErrRecordNotFound) {
		t.Fatalf("expected fk violation to map to ErrRecordNotFound")
	}
	other := errors.New("boom")
	if translatePayslipPgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}
