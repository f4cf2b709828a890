// Package faults はドメインエラーをアダプタ共通の種別に分類します。
package faults

import (
	"errors"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/department"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/employee"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/leave"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/payslip"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timelog"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timer"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
)

// Kind はエラーの分類です。
type Kind int

const (
	// KindInternal は分類できないエラー（ストレージや通信の失敗を含む）です。
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	default:
		return "internal"
	}
}

var invalid = []error{
	timelog.ErrInvalidID, timelog.ErrInvalidEmployeeID, timelog.ErrInvalidDate,
	timelog.ErrInvalidStartTime, timelog.ErrInvalidEndTime, timelog.ErrInvalidTimeRange,
	timelog.ErrInvalidType, timelog.ErrInvalidDuration, timelog.ErrInvalidDateRange,
	timer.ErrInvalidEmployeeID, timer.ErrInvalidType,
	timesheet.ErrInvalidID, timesheet.ErrInvalidEmployeeID, timesheet.ErrInvalidPeriod,
	timesheet.ErrInvalidReviewer, timesheet.ErrUnknownDuplicatePolicy,
	payroll.ErrInvalidID, payroll.ErrInvalidEmployeeID, payroll.ErrInvalidMonth,
	payroll.ErrInvalidYear, payroll.ErrInvalidStatus, payroll.ErrInvalidAmount,
	payroll.ErrInvalidSettings,
	payslip.ErrInvalidID, payslip.ErrInvalidRecordID,
	employee.ErrInvalidID, employee.ErrInvalidEmployeeCode, employee.ErrInvalidEmail,
	employee.ErrInvalidLastName, employee.ErrInvalidFirstName, employee.ErrInvalidStatus,
	employee.ErrInvalidSalary, employee.ErrInvalidManager, employee.ErrInvalidPageSize,
	employee.ErrInvalidPageToken, employee.ErrInvalidDateRange, employee.ErrInvalidPayload,
	department.ErrInvalidName, department.ErrInvalidCode, department.ErrInvalidStatus,
	department.ErrInvalidID, department.ErrInvalidParent, department.ErrHierarchyCycle,
	department.ErrInvalidPageSize, department.ErrInvalidPageToken,
	leave.ErrInvalidID, leave.ErrInvalidEmployeeID, leave.ErrInvalidType,
	leave.ErrInvalidStatus, leave.ErrInvalidDateRange, leave.ErrInvalidReviewer,
}

var notFound = []error{
	timelog.ErrLogNotFound,
	timer.ErrSessionNotFound,
	timesheet.ErrTimesheetNotFound,
	payroll.ErrEmployeeNotFound, payroll.ErrRecordNotFound, payroll.ErrPeriodNotFound,
	payroll.ErrSettingsNotFound,
	payslip.ErrPayslipNotFound, payslip.ErrRecordNotFound,
	employee.ErrEmployeeNotFound, employee.ErrDepartmentNotFound,
	department.ErrDepartmentNotFound,
	leave.ErrRequestNotFound,
}

var conflict = []error{
	timelog.ErrLogAlreadyExists,
	employee.ErrEmployeeCodeAlreadyExists, employee.ErrEmailAlreadyExists,
	department.ErrCodeAlreadyExists,
	leave.ErrOverlapping,
}

// 期間内に記録がない場合も入力は正しいため前提条件エラーとして扱います。
var precondition = []error{
	timesheet.ErrNoLogsFound, timesheet.ErrInvalidTransition,
	payroll.ErrInvalidTransition, payroll.ErrRecordLocked,
	payslip.ErrInvalidTransition, payslip.ErrInconsistentTotals, payslip.ErrAlreadyDelivered,
	department.ErrHasChildren,
	leave.ErrInvalidTransition,
}

// Classify はエラーを分類します。nil は KindInternal ではなく呼び出し側で扱ってください。
func Classify(err error) Kind {
	switch {
	case matches(err, notFound):
		return KindNotFound
	case matches(err, conflict):
		return KindConflict
	case matches(err, precondition):
		return KindPrecondition
	case matches(err, invalid):
		return KindInvalid
	default:
		return KindInternal
	}
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
