package payroll

import "errors"

var (
	ErrSummaryNotFound   = errors.New("payroll summary not found")
	ErrEmployeeNotJoined = errors.New("employee had not joined by the requested payroll month")
	ErrInvalidPeriod     = errors.New("invalid payroll period")
)
