package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/shopspring/decimal"
)

// DefaultNormalWorkingHours is the daily norm used when an employee has none configured.
var DefaultNormalWorkingHours = decimal.NewFromInt(8)

type Employee struct {
	ID                 string
	FullName           string
	ApplicantType      ApplicantType
	InstitutionID      *string
	PositionID         string
	ManagerID          *string
	JoinDate           time.Time
	MonthlySalary      decimal.Decimal
	HourlyRate         decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	NormalWorkingHours *decimal.Decimal
	EmploymentStatus   EmploymentStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ApplicantType decides which calendar and which leave rules govern an employee.
type ApplicantType string

const (
	ApplicantTypeOfficer  ApplicantType = "officer"
	ApplicantTypeEmployee ApplicantType = "employee"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

func (e Employee) IsOfficer() bool {
	return e.ApplicantType == ApplicantTypeOfficer
}

// CalendarRef returns the calendar that governs this employee's dates:
// officers follow their institution's calendar, everyone else the company one.
func (e Employee) CalendarRef() calendar.Ref {
	if e.IsOfficer() && e.InstitutionID != nil && *e.InstitutionID != "" {
		return calendar.InstitutionRef(*e.InstitutionID)
	}
	return calendar.CompanyRef()
}

// WorkingHoursNorm returns the configured daily norm, or fallback when unset.
func (e Employee) WorkingHoursNorm(fallback decimal.Decimal) decimal.Decimal {
	if e.NormalWorkingHours != nil && e.NormalWorkingHours.IsPositive() {
		return *e.NormalWorkingHours
	}
	return fallback
}

// JoinedBy reports whether the employee had joined on or before the last day
// of the given month.
func (e Employee) JoinedBy(year int, month time.Month) bool {
	join := calendar.DateOf(e.JoinDate)
	return calendar.MonthIndex(join.Year(), join.Month()) <= calendar.MonthIndex(year, month)
}
