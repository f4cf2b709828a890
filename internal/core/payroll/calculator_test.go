package payroll

import (
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func overtimeLog(minutes int) timelog.TimeLog {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	return timelog.TimeLog{
		EmployeeID: "emp-1",
		Date:       "2025-03-10",
		StartTime:  start,
		EndTime:    start.Add(time.Duration(minutes) * time.Minute),
		Duration:   minutes,
		Type:       timelog.TypeOvertime,
	}
}

func TestCalculateTax(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	if !CalculateTax(decimal.Zero, s).IsZero() {
		t.Fatal("expected zero tax for zero gross")
	}

	for _, gross := range []string{"1", "5968.75", "0.01", "123456.789"} {
		want := d(gross).Mul(d("15")).Div(d("100"))
		if got := CalculateTax(d(gross), s); !got.Equal(want) {
			t.Fatalf("gross %s: got %s, want %s", gross, got, want)
		}
	}
}

func TestCalculateOvertime_OnlyOvertimeLogs(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	work := overtimeLog(120)
	work.Type = timelog.TypeWork
	logs := []timelog.TimeLog{overtimeLog(300), overtimeLog(300), work}

	got := CalculateOvertime(logs, d("31.25"), s)
	if !got.Equal(d("468.75")) {
		t.Fatalf("expected 468.75, got %s", got)
	}
}

func TestCalculate_WorkedExample(t *testing.T) {
	t.Parallel()

	b := Calculate(d("5000"), []timelog.TimeLog{overtimeLog(600)}, decimal.Zero, DefaultSettings())

	checks := map[string][2]decimal.Decimal{
		"overtime":   {b.Overtime, d("468.75")},
		"allowances": {b.Allowances, d("500")},
		"deductions": {b.Deductions, d("200")},
		"gross":      {b.Gross, d("5968.75")},
		"tax":        {b.Tax, d("895.31")},
		"net":        {b.Net, d("4873.44")},
	}
	for name, pair := range checks {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s: got %s, want %s", name, pair[0], pair[1])
		}
	}

	if len(b.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(b.Items))
	}
	wantTypes := []ItemType{ItemBasicSalary, ItemOvertime, ItemAllowance, ItemDeduction, ItemTax}
	for i, typ := range wantTypes {
		if b.Items[i].Type != typ {
			t.Fatalf("item %d: expected %s, got %s", i, typ, b.Items[i].Type)
		}
	}

	additions, subtractions := decimal.Zero, decimal.Zero
	for _, it := range b.Items {
		if it.IsAddition {
			additions = additions.Add(it.Amount)
		} else {
			subtractions = subtractions.Add(it.Amount)
		}
	}
	if !additions.Sub(subtractions).Equal(b.Net) {
		t.Fatalf("items do not add up to net: %s - %s != %s", additions, subtractions, b.Net)
	}
}

func TestCalculate_PercentRulesAndBonus(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.AllowanceRules = []Rule{{Type: "Transport", Amount: d("50"), PercentOfBasic: d("10")}}
	s.DeductionRules = nil
	s.TaxRate = d("10")

	b := Calculate(d("3000"), nil, d("100"), s)

	if !b.Allowances.Equal(d("350")) {
		t.Fatalf("expected allowance 350, got %s", b.Allowances)
	}
	if !b.Gross.Equal(d("3450")) {
		t.Fatalf("expected gross 3450, got %s", b.Gross)
	}
	if !b.Tax.Equal(d("345")) || !b.Net.Equal(d("3105")) {
		t.Fatalf("unexpected tax/net: %s/%s", b.Tax, b.Net)
	}
	if b.Items[2].Description != "Transport" || b.Items[3].Type != ItemBonus {
		t.Fatalf("unexpected items: %+v", b.Items)
	}
}

func TestPayDateAndMonthBounds(t *testing.T) {
	t.Parallel()

	if got := PayDate(2, 2025, 31); got != "2025-02-28" {
		t.Fatalf("expected clamped pay date, got %s", got)
	}
	if got := PayDate(2, 2024, 29); got != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}
	if got := PayDate(3, 2025, 25); got != "2025-03-25" {
		t.Fatalf("unexpected pay date %s", got)
	}

	start, end := MonthBounds(4, 2025)
	if start != "2025-04-01" || end != "2025-04-30" {
		t.Fatalf("unexpected bounds %s..%s", start, end)
	}
}

func TestSettings_ValidateAndPatch(t *testing.T) {
	t.Parallel()

	base := DefaultSettings()
	if err := base.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}

	rate := d("20")
	cur := " eur "
	next := SettingsPatch{TaxRate: &rate, Currency: &cur}.Apply(base)
	if !next.TaxRate.Equal(rate) || next.Currency != "EUR" {
		t.Fatalf("patch not applied: %+v", next)
	}
	if !base.TaxRate.Equal(d("15")) {
		t.Fatal("patch must not modify base settings")
	}

	day := 0
	if err := (SettingsPatch{PayDay: &day}).Apply(base).Validate(); err == nil {
		t.Fatal("expected invalid pay day")
	}
	bad := d("101")
	if err := (SettingsPatch{TaxRate: &bad}).Apply(base).Validate(); err == nil {
		t.Fatal("expected invalid tax rate")
	}
}
