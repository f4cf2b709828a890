package payroll

import "errors"

var (
	ErrInvalidID         = errors.New("payroll: invalid id")
	ErrInvalidEmployeeID = errors.New("payroll: invalid employee id")
	ErrInvalidMonth      = errors.New("payroll: invalid month")
	ErrInvalidYear       = errors.New("payroll: invalid year")
	ErrInvalidStatus     = errors.New("payroll: invalid status")
	ErrInvalidTransition = errors.New("payroll: invalid status transition")
	ErrInvalidAmount     = errors.New("payroll: invalid amount")
	ErrInvalidSettings   = errors.New("payroll: invalid settings")
	ErrEmployeeNotFound  = errors.New("payroll: employee not found")
	ErrRecordNotFound    = errors.New("payroll: record not found")
	ErrPeriodNotFound    = errors.New("payroll: period not found")
	ErrSettingsNotFound  = errors.New("payroll: settings not found")
	ErrRecordLocked      = errors.New("payroll: record is not draft")
)

// IsValidation は入力値エラーかどうかを判定します。
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidID, ErrInvalidEmployeeID, ErrInvalidMonth, ErrInvalidYear,
		ErrInvalidStatus, ErrInvalidAmount, ErrInvalidSettings,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
