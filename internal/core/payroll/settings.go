package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID は単一の給与設定レコードの ID です。
const SettingsID = "default"

// Rule は手当・控除の算出ルールです。金額は Amount + 基本給 × PercentOfBasic / 100 です。
type Rule struct {
	Type           string
	Description    string
	Amount         decimal.Decimal
	PercentOfBasic decimal.Decimal
}

// Apply は基本給に対するルールの金額を返します。
func (r Rule) Apply(basic decimal.Decimal) decimal.Decimal {
	amount := r.Amount
	if !r.PercentOfBasic.IsZero() {
		amount = amount.Add(basic.Mul(r.PercentOfBasic).Div(hundred))
	}
	return amount.Round(currencyPlaces)
}

func (r Rule) label() string {
	if strings.TrimSpace(r.Description) != "" {
		return r.Description
	}
	return r.Type
}

// Settings はプロセス全体で共有する給与計算の設定です。
type Settings struct {
	ID                   string
	OvertimeRate         decimal.Decimal
	TaxRate              decimal.Decimal
	PayDay               int
	Currency             string
	TaxYear              int
	StandardMonthlyHours decimal.Decimal
	AllowanceTypes       []string
	DeductionTypes       []string
	AllowanceRules       []Rule
	DeductionRules       []Rule
	UpdatedAt            time.Time
}

// DefaultSettings は初期設定を返します。
func DefaultSettings() Settings {
	return Settings{
		ID:                   SettingsID,
		OvertimeRate:         decimal.RequireFromString("1.5"),
		TaxRate:              decimal.NewFromInt(15),
		PayDay:               25,
		Currency:             "USD",
		TaxYear:              2024,
		StandardMonthlyHours: decimal.NewFromInt(160),
		AllowanceTypes:       []string{"Housing", "Transport", "Meal", "Medical"},
		DeductionTypes:       []string{"Insurance", "Loan", "Advance", "Tax"},
		AllowanceRules: []Rule{
			{Type: "Housing", Description: "Housing Allowance", Amount: decimal.NewFromInt(500)},
		},
		DeductionRules: []Rule{
			{Type: "Insurance", Description: "Insurance", Amount: decimal.NewFromInt(200)},
		},
	}
}

// Clone はスライスを含めてコピーします。
func (s Settings) Clone() Settings {
	c := s
	c.AllowanceTypes = append([]string(nil), s.AllowanceTypes...)
	c.DeductionTypes = append([]string(nil), s.DeductionTypes...)
	c.AllowanceRules = append([]Rule(nil), s.AllowanceRules...)
	c.DeductionRules = append([]Rule(nil), s.DeductionRules...)
	return c
}

// Validate は設定値を検証します。
func (s Settings) Validate() error {
	if s.OvertimeRate.IsNegative() {
		return fmt.Errorf("overtime_rate: %w", ErrInvalidSettings)
	}
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(hundred) {
		return fmt.Errorf("tax_rate: %w", ErrInvalidSettings)
	}
	if s.PayDay < 1 || s.PayDay > 31 {
		return fmt.Errorf("pay_day: %w", ErrInvalidSettings)
	}
	if strings.TrimSpace(s.Currency) == "" {
		return fmt.Errorf("currency: %w", ErrInvalidSettings)
	}
	if !s.StandardMonthlyHours.IsPositive() {
		return fmt.Errorf("standard_monthly_hours: %w", ErrInvalidSettings)
	}
	for _, r := range append(append([]Rule(nil), s.AllowanceRules...), s.DeductionRules...) {
		if strings.TrimSpace(r.Type) == "" {
			return fmt.Errorf("rule type: %w", ErrInvalidSettings)
		}
		if r.Amount.IsNegative() || r.PercentOfBasic.IsNegative() {
			return fmt.Errorf("rule %s: %w", r.Type, ErrInvalidSettings)
		}
	}
	return nil
}

// SettingsPatch は設定の部分更新です。nil のフィールドは変更しません。
type SettingsPatch struct {
	OvertimeRate         *decimal.Decimal
	TaxRate              *decimal.Decimal
	PayDay               *int
	Currency             *string
	TaxYear              *int
	StandardMonthlyHours *decimal.Decimal
	AllowanceTypes       []string
	DeductionTypes       []string
	AllowanceRules       []Rule
	DeductionRules       []Rule
}

// Apply はパッチを適用した新しい設定を返します。
func (p SettingsPatch) Apply(base Settings) Settings {
	next := base.Clone()
	if p.OvertimeRate != nil {
		next.OvertimeRate = *p.OvertimeRate
	}
	if p.TaxRate != nil {
		next.TaxRate = *p.TaxRate
	}
	if p.PayDay != nil {
		next.PayDay = *p.PayDay
	}
	if p.Currency != nil {
		next.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.TaxYear != nil {
		next.TaxYear = *p.TaxYear
	}
	if p.StandardMonthlyHours != nil {
		next.StandardMonthlyHours = *p.StandardMonthlyHours
	}
	if p.AllowanceTypes != nil {
		next.AllowanceTypes = append([]string(nil), p.AllowanceTypes...)
	}
	if p.DeductionTypes != nil {
		next.DeductionTypes = append([]string(nil), p.DeductionTypes...)
	}
	if p.AllowanceRules != nil {
		next.AllowanceRules = append([]Rule(nil), p.AllowanceRules...)
	}
	if p.DeductionRules != nil {
		next.DeductionRules = append([]Rule(nil), p.DeductionRules...)
	}
	return next
}
