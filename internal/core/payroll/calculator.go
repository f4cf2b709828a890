package payroll

import (
	"strconv"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/shopspring/decimal"
)

const currencyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	sixty   = decimal.NewFromInt(60)
)

// CalculateTax は gross × taxRate / 100 を丸めずに返します。
func CalculateTax(gross decimal.Decimal, s Settings) decimal.Decimal {
	return gross.Mul(s.TaxRate).Div(hundred)
}

// CalculateOvertime は残業記録の合計分数 / 60 × 時給 × 残業倍率を丸めずに返します。
func CalculateOvertime(logs []timelog.TimeLog, hourlyRate decimal.Decimal, s Settings) decimal.Decimal {
	minutes := timelog.SumDuration(logs, timelog.OfType(timelog.TypeOvertime))
	return decimal.NewFromInt(int64(minutes)).Mul(hourlyRate).Mul(s.OvertimeRate).Div(sixty)
}

// HourlyRate は月給を標準労働時間で割った時給です。
func HourlyRate(salary decimal.Decimal, s Settings) decimal.Decimal {
	hours := s.StandardMonthlyHours
	if !hours.IsPositive() {
		hours = decimal.NewFromInt(160)
	}
	return salary.Div(hours)
}

// Breakdown は給与計算の内訳です。金額はすべて通貨精度に丸め済みです。
type Breakdown struct {
	BasicSalary decimal.Decimal
	Overtime    decimal.Decimal
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	Bonus       decimal.Decimal
	Gross       decimal.Decimal
	Tax         decimal.Decimal
	Net         decimal.Decimal
	Items       []Item
}

// Calculate は基本給・作業記録・設定から給与を計算します。
// 税額は丸めた支給総額に対して計算し、差引支給額は丸めた値から求めます。
func Calculate(salary decimal.Decimal, logs []timelog.TimeLog, bonus decimal.Decimal, s Settings) Breakdown {
	basic := salary.Round(currencyPlaces)
	overtime := CalculateOvertime(logs, HourlyRate(salary, s), s).Round(currencyPlaces)
	bonus = bonus.Round(currencyPlaces)

	b := Breakdown{BasicSalary: basic, Overtime: overtime, Bonus: bonus}
	b.Items = append(b.Items,
		Item{Type: ItemBasicSalary, Description: "Basic Salary", Amount: basic, IsAddition: true},
		Item{Type: ItemOvertime, Description: "Overtime Pay", Amount: overtime, IsAddition: true},
	)

	allowances := decimal.Zero
	for _, r := range s.AllowanceRules {
		amount := r.Apply(salary)
		allowances = allowances.Add(amount)
		category := r.Type
		b.Items = append(b.Items, Item{Type: ItemAllowance, Description: r.label(), Amount: amount, IsAddition: true, Category: &category})
	}
	if !bonus.IsZero() {
		b.Items = append(b.Items, Item{Type: ItemBonus, Description: "Bonus", Amount: bonus, IsAddition: true})
	}

	deductions := decimal.Zero
	for _, r := range s.DeductionRules {
		amount := r.Apply(salary)
		deductions = deductions.Add(amount)
		category := r.Type
		b.Items = append(b.Items, Item{Type: ItemDeduction, Description: r.label(), Amount: amount, IsAddition: false, Category: &category})
	}

	b.Allowances = allowances
	b.Deductions = deductions
	b.Gross = basic.Add(overtime).Add(allowances).Add(bonus)
	b.Tax = CalculateTax(b.Gross, s).Round(currencyPlaces)
	b.Net = b.Gross.Sub(deductions).Sub(b.Tax)
	b.Items = append(b.Items, Item{Type: ItemTax, Description: "Income Tax", Amount: b.Tax, IsAddition: false})

	for i := range b.Items {
		b.Items[i].ID = strconv.Itoa(i + 1)
	}
	return b
}
