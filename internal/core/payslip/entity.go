package payslip

import (
	"time"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/shopspring/decimal"
)

// Status は給与明細の配布状態です。
type Status string

const (
	StatusDraft        Status = "draft"
	StatusGenerated    Status = "generated"
	StatusSent         Status = "sent"
	StatusAcknowledged Status = "acknowledged"
)

// Payslip は給与レコードを表示・出力用に再構成したものです。Items はレコードのコピーです。
type Payslip struct {
	ID              string
	RecordID        string
	EmployeeID      string
	Period          string
	Month           int
	Year            int
	IssueDate       time.Time
	Items           []payroll.Item
	GrossPay        decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	Currency        string
	Notes           *string
	Status          Status
	SentAt          *time.Time
	AcknowledgedAt  *time.Time
}

// Clone は明細行を含めてコピーします。
func (p *Payslip) Clone() *Payslip {
	if p == nil {
		return nil
	}
	c := *p
	c.Items = payroll.CloneItems(p.Items)
	if p.Notes != nil {
		v := *p.Notes
		c.Notes = &v
	}
	if p.SentAt != nil {
		v := *p.SentAt
		c.SentAt = &v
	}
	if p.AcknowledgedAt != nil {
		v := *p.AcknowledgedAt
		c.AcknowledgedAt = &v
	}
	return &c
}

// IDFor は給与レコード ID から明細 ID を返します。
func IDFor(recordID string) string {
	return "payslip-" + recordID
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusGenerated
	case StatusGenerated:
		return to == StatusSent
	case StatusSent:
		return to == StatusAcknowledged
	default:
		return false
	}
}
