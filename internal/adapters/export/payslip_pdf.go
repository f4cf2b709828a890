// Package export は給与明細と給与台帳をファイル形式で出力します。
package export

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/shopspring/decimal"
)

// PayslipPDF は給与明細を A4 縦の PDF に出力します。
type PayslipPDF struct {
	Organization string
}

// NewPayslipPDF は PayslipPDF を生成します。
func NewPayslipPDF(organization string) *PayslipPDF {
	return &PayslipPDF{Organization: organization}
}

var itemGrid = []uint{6, 3, 3}

// RenderPayslip は明細行と合計を表にした PDF を返します。
func (r *PayslipPDF) RenderPayslip(p *payslip.Payslip) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	title := "Payslip"
	if r.Organization != "" {
		title = r.Organization + " " + title
	}

	m.Row(12, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{
				Top:   3,
				Style: consts.Bold,
				Align: consts.Center,
				Size:  16,
			})
		})
	})
	m.Row(8, func() {
		m.Col(6, func() {
			m.Text("Employee: "+p.EmployeeID, props.Text{Size: 10})
		})
		m.Col(6, func() {
			m.Text("Period: "+p.Period, props.Text{Size: 10, Align: consts.Right})
		})
	})
	m.Row(8, func() {
		m.Col(6, func() {
			m.Text("Payslip: "+p.ID, props.Text{Size: 9})
		})
		m.Col(6, func() {
			m.Text("Issued: "+p.IssueDate.Format("2006-01-02"), props.Text{Size: 9, Align: consts.Right})
		})
	})

	rows := make([][]string, 0, len(p.Items))
	for _, it := range p.Items {
		earning, deduction := "", ""
		if it.IsAddition {
			earning = money(it.Amount, p.Currency)
		} else {
			deduction = money(it.Amount, p.Currency)
		}
		rows = append(rows, []string{it.Description, earning, deduction})
	}

	m.TableList([]string{"Description", "Earnings", "Deductions"}, rows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: itemGrid,
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: itemGrid,
		},
		Align:                consts.Left,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
	})

	totals := [][2]string{
		{"Gross Pay", money(p.GrossPay, p.Currency)},
		{"Total Deductions", money(p.TotalDeductions, p.Currency)},
		{"Net Pay", money(p.NetPay, p.Currency)},
	}
	for _, total := range totals {
		label, value := total[0], total[1]
		m.Row(8, func() {
			m.Col(9, func() {
				m.Text(label, props.Text{Style: consts.Bold, Align: consts.Right, Size: 10})
			})
			m.Col(3, func() {
				m.Text(value, props.Text{Style: consts.Bold, Align: consts.Right, Size: 10})
			})
		})
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render payslip %s: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}

func money(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}
