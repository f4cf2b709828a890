package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleRecord(id, employeeID, net string) *payroll.Record {
	return &payroll.Record{
		ID:          id,
		EmployeeID:  employeeID,
		Month:       3,
		Year:        2024,
		PeriodStart: "2024-03-01",
		PeriodEnd:   "2024-03-31",
		BasicSalary: decimal.NewFromInt(5000),
		Allowances:  decimal.NewFromInt(500),
		Deductions:  decimal.NewFromInt(200),
		Tax:         decimal.NewFromInt(825),
		NetSalary:   decimal.RequireFromString(net),
		PayDate:     "2024-03-25",
		Status:      payroll.StatusDraft,
	}
}

func TestPayslipPDF_RenderPayslip(t *testing.T) {
	t.Parallel()

	p := &payslip.Payslip{
		ID:         "payslip-emp-1-3-2024",
		RecordID:   "emp-1-3-2024",
		EmployeeID: "emp-1",
		Period:     "3/2024",
		IssueDate:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Items: []payroll.Item{
			{ID: "1", Type: payroll.ItemBasicSalary, Description: "Basic Salary", Amount: decimal.NewFromInt(5000), IsAddition: true},
			{ID: "2", Type: payroll.ItemTax, Description: "Income Tax", Amount: decimal.NewFromInt(750), IsAddition: false},
		},
		GrossPay:        decimal.NewFromInt(5000),
		TotalDeductions: decimal.NewFromInt(750),
		NetPay:          decimal.NewFromInt(4250),
		Currency:        "USD",
		Status:          payslip.StatusGenerated,
	}

	data, err := NewPayslipPDF("Acme").RenderPayslip(p)
	if err != nil {
		t.Fatalf("RenderPayslip returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", data[:min(len(data), 8)])
	}
}

func TestRegister_RenderRegister(t *testing.T) {
	t.Parallel()

	records := []*payroll.Record{
		sampleRecord("a-3-2024", "a", "4475"),
		sampleRecord("b-3-2024", "b", "1000.5"),
	}

	data, err := NewRegister().RenderRegister(3, 2024, records)
	if err != nil {
		t.Fatalf("RenderRegister returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader returned error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header, two records and total, got %d rows", len(rows))
	}
	if rows[0][0] != "Record" || rows[1][0] != "a-3-2024" || rows[2][1] != "b" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[3][9] != "Total 03/2024" || rows[3][10] != "5475.5" {
		t.Fatalf("unexpected total row: %v", rows[3])
	}
}

func TestRegister_Empty(t *testing.T) {
	t.Parallel()

	data, err := NewRegister().RenderRegister(1, 2024, nil)
	if err != nil {
		t.Fatalf("RenderRegister returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected workbook bytes")
	}
}
