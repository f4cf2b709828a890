package employee

import "errors"

var (
	ErrInvalidID                 = errors.New("employee: invalid id")
	ErrInvalidEmployeeCode       = errors.New("employee: invalid employee code")
	ErrInvalidEmail              = errors.New("employee: invalid email")
	ErrInvalidLastName           = errors.New("employee: invalid last name")
	ErrInvalidFirstName          = errors.New("employee: invalid first name")
	ErrInvalidStatus             = errors.New("employee: invalid status")
	ErrInvalidSalary             = errors.New("employee: invalid salary")
	ErrInvalidManager            = errors.New("employee: invalid manager")
	ErrInvalidPageSize           = errors.New("employee: invalid page size")
	ErrInvalidPageToken          = errors.New("employee: invalid page token")
	ErrInvalidDateRange          = errors.New("employee: invalid employment period")
	ErrInvalidPayload            = errors.New("employee: invalid payload")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrDepartmentNotFound        = errors.New("employee: department not found")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
	ErrEmailAlreadyExists        = errors.New("employee: email already exists")
)
