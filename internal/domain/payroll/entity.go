package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStandardDaysPerMonth divides the monthly salary into a daily rate.
const DefaultStandardDaysPerMonth = 30

type OvertimeStatus string

const (
	OvertimeStatusPending  OvertimeStatus = "pending"
	OvertimeStatusApproved OvertimeStatus = "approved"
	OvertimeStatusRejected OvertimeStatus = "rejected"
)

// OvertimeRequest is read-only input; it is owned by the overtime workflow.
type OvertimeRequest struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	CalculatedPay decimal.Decimal
	Status        OvertimeStatus
	CreatedAt     time.Time
}

// EmployeePayrollSummary is the derived payroll of one employee-month. It is
// a cache of the computation and never a source of truth.
type EmployeePayrollSummary struct {
	EmployeeID           string
	Year                 int
	Month                time.Month
	DaysInMonth          int
	DaysPresent          int
	LeaveDays            int
	LOPDays              int
	DaysNotMarked        int
	LedgerLOPDays        int
	TotalHoursWorked     decimal.Decimal
	OvertimeHours        decimal.Decimal
	MonthlySalary        decimal.Decimal
	PerDaySalary         decimal.Decimal
	GrossSalary          decimal.Decimal
	TotalDeductions      decimal.Decimal
	OvertimePay          decimal.Decimal
	OvertimeEstimate     decimal.Decimal
	NetPay               decimal.Decimal
	AttendancePercentage decimal.Decimal
	Warnings             []string
	// ComputedAt is stamped by the cache writer, not by the computation.
	ComputedAt *time.Time
}
