package timesheet

import "errors"

var (
	ErrInvalidID              = errors.New("timesheet: invalid id")
	ErrInvalidEmployeeID      = errors.New("timesheet: invalid employee id")
	ErrInvalidPeriod          = errors.New("timesheet: invalid period")
	ErrInvalidReviewer        = errors.New("timesheet: invalid reviewer")
	ErrInvalidTransition      = errors.New("timesheet: invalid status transition")
	ErrNoLogsFound            = errors.New("timesheet: no logs found for period")
	ErrTimesheetNotFound      = errors.New("timesheet: not found")
	ErrUnknownDuplicatePolicy = errors.New("timesheet: unknown duplicate policy")
)
