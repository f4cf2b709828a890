package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status は給与明細レコードの状態です。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
)

// ItemType は明細行の種別です。
type ItemType string

const (
	ItemBasicSalary ItemType = "basic_salary"
	ItemOvertime    ItemType = "overtime"
	ItemAllowance   ItemType = "allowance"
	ItemBonus       ItemType = "bonus"
	ItemDeduction   ItemType = "deduction"
	ItemTax         ItemType = "tax"
	ItemOther       ItemType = "other"
)

// Item は給与レコードに属する明細行です。
type Item struct {
	ID          string
	RecordID    string
	Type        ItemType
	Description string
	Amount      decimal.Decimal
	IsAddition  bool
	Category    *string
}

// Record は社員一人・一か月分の給与計算結果です。
type Record struct {
	ID          string
	EmployeeID  string
	Month       int
	Year        int
	PeriodStart string
	PeriodEnd   string
	BasicSalary decimal.Decimal
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	Overtime    decimal.Decimal
	Bonus       decimal.Decimal
	Tax         decimal.Decimal
	NetSalary   decimal.Decimal
	PayDate     string
	Status      Status
	Notes       *string
	Items       []Item
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GrossPay は支給額の合計です。
func (r *Record) GrossPay() decimal.Decimal {
	return r.BasicSalary.Add(r.Overtime).Add(r.Allowances).Add(r.Bonus)
}

// TotalDeductions は控除と税額の合計です。
func (r *Record) TotalDeductions() decimal.Decimal {
	return r.Deductions.Add(r.Tax)
}

// Clone は明細行を含めてコピーします。
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = CloneItems(r.Items)
	if r.Notes != nil {
		v := *r.Notes
		c.Notes = &v
	}
	return &c
}

// CloneItems は明細行のスライスを複製します。
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.Category != nil {
			v := *it.Category
			out[i].Category = &v
		}
	}
	return out
}

// RecordID は (社員, 月, 年) から決まるレコード ID です。
func RecordID(employeeID string, month, year int) string {
	return fmt.Sprintf("%s-%d-%d", employeeID, month, year)
}

// PeriodStatus は給与期間の状態です。
type PeriodStatus string

const (
	PeriodDraft      PeriodStatus = "draft"
	PeriodProcessing PeriodStatus = "processing"
	PeriodCompleted  PeriodStatus = "completed"
	PeriodPaid       PeriodStatus = "paid"
)

// Period はひと月分の給与処理の集計です。
type Period struct {
	ID            string
	Month         int
	Year          int
	StartDate     string
	EndDate       string
	Status        PeriodStatus
	ProcessedAt   *time.Time
	ProcessedBy   *string
	TotalAmount   decimal.Decimal
	EmployeeCount int
}

// Clone はコピーを返します。
func (p *Period) Clone() *Period {
	if p == nil {
		return nil
	}
	c := *p
	if p.ProcessedAt != nil {
		v := *p.ProcessedAt
		c.ProcessedAt = &v
	}
	if p.ProcessedBy != nil {
		v := *p.ProcessedBy
		c.ProcessedBy = &v
	}
	return &c
}

// PeriodID は月・年から決まる期間 ID です。
func PeriodID(month, year int) string {
	return fmt.Sprintf("%d-%d", month, year)
}

// MonthBounds は月初日と月末日を YYYY-MM-DD で返します。
func MonthBounds(month, year int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

// PayDate は支給日を返します。月の日数を超える支給日は月末に丸めます。
func PayDate(month, year, payDay int) string {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	if payDay > days {
		payDay = days
	}
	if payDay < 1 {
		payDay = 1
	}
	return first.AddDate(0, 0, payDay-1).Format("2006-01-02")
}

func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusDraft:
		return to == StatusProcessed
	case StatusProcessed:
		return to == StatusPaid
	default:
		return false
	}
}

// IsValidStatus は有効な状態かを判定します。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusProcessed, StatusPaid:
		return true
	default:
		return false
	}
}
