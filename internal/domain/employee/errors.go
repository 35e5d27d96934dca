package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee is not active")
	ErrNotJoined        = errors.New("employee had not joined in the requested period")
)
