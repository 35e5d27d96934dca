package calendar

import "errors"

var (
	ErrInvalidScope    = errors.New("calendar scope must be institution or company")
	ErrInvalidRange    = errors.New("end date must not be before start date")
	ErrRangeTooLarge   = errors.New("date range exceeds the maximum of 366 days")
	ErrScopeIDRequired = errors.New("scope_id is required for the institution calendar")
)
