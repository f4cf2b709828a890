package timer

import "errors"

var (
	ErrInvalidEmployeeID = errors.New("timer: invalid employee id")
	ErrInvalidType       = errors.New("timer: invalid type")
	ErrSessionNotFound   = errors.New("timer: session not found")
)
