package payslip

import "errors"

var (
	ErrInvalidID          = errors.New("payslip: invalid id")
	ErrInvalidRecordID    = errors.New("payslip: invalid payroll record id")
	ErrPayslipNotFound    = errors.New("payslip: not found")
	ErrRecordNotFound     = errors.New("payslip: payroll record not found")
	ErrInvalidTransition  = errors.New("payslip: invalid status transition")
	ErrInconsistentTotals = errors.New("payslip: totals do not match payroll record")
	ErrAlreadyDelivered   = errors.New("payslip: already sent to the employee")
)
