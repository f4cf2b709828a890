package timelog

import "errors"

var (
	ErrInvalidID         = errors.New("timelog: invalid id")
	ErrInvalidEmployeeID = errors.New("timelog: invalid employee id")
	ErrInvalidDate       = errors.New("timelog: invalid date")
	ErrInvalidStartTime  = errors.New("timelog: start time is required")
	ErrInvalidEndTime    = errors.New("timelog: end time is required")
	ErrInvalidTimeRange  = errors.New("timelog: end time must be after start time")
	ErrInvalidType       = errors.New("timelog: invalid type")
	ErrInvalidDuration   = errors.New("timelog: invalid duration")
	ErrInvalidDateRange  = errors.New("timelog: invalid date range")
	ErrLogNotFound       = errors.New("timelog: not found")
	ErrLogAlreadyExists  = errors.New("timelog: already exists")
)

// IsValidation は入力不備に起因するエラーかを判定します。
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidEmployeeID),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidStartTime),
		errors.Is(err, ErrInvalidEndTime),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidDateRange):
		return true
	default:
		return false
	}
}
