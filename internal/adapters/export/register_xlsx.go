package export

import (
	"fmt"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var registerHeader = []interface{}{
	"Record", "Employee", "Period Start", "Period End", "Basic Salary", "Overtime",
	"Allowances", "Bonus", "Deductions", "Tax", "Net Salary", "Status", "Pay Date",
}

// Register は月次の給与台帳を XLSX に出力します。
type Register struct{}

// NewRegister は Register を生成します。
func NewRegister() *Register {
	return &Register{}
}

// RenderRegister は 1 行目を見出し、以降をレコード 1 件 1 行とし、最終行に合計を置いたブックを返します。
func (Register) RenderRegister(month, year int, records []*payroll.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &registerHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(registerHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	total := decimal.Zero
	for i, r := range records {
		row := []interface{}{
			r.ID,
			r.EmployeeID,
			r.PeriodStart,
			r.PeriodEnd,
			r.BasicSalary.InexactFloat64(),
			r.Overtime.InexactFloat64(),
			r.Allowances.InexactFloat64(),
			r.Bonus.InexactFloat64(),
			r.Deductions.InexactFloat64(),
			r.Tax.InexactFloat64(),
			r.NetSalary.InexactFloat64(),
			string(r.Status),
			r.PayDate,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write record %s: %w", r.ID, err)
		}
		total = total.Add(r.NetSalary)
	}

	totalRow := len(records) + 2
	labelCell, _ := excelize.CoordinatesToCellName(10, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(11, totalRow)
	if err := f.SetCellValue(sheet, labelCell, fmt.Sprintf("Total %02d/%04d", month, year)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, totalCell, total.InexactFloat64()); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, labelCell, totalCell, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
