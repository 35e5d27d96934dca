package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeInput is everything one employee-month of payroll depends on.
type ComputeInput struct {
	Employee     employee.Employee
	Year         int
	Month        time.Month
	StandardDays int
	Attendance   attendance.MonthlyAggregate
	Balance      leave.LeaveBalance
	Overtime     []payroll.OvertimeRequest
}

// Compute derives the payroll summary. Gross, deductions and overtime are
// rounded to two decimals; net pay is their exact combination.
func Compute(in ComputeInput) (payroll.EmployeePayrollSummary, error) {
	emp := in.Employee
	if !emp.JoinedBy(in.Year, in.Month) {
		return payroll.EmployeePayrollSummary{}, payroll.ErrEmployeeNotJoined
	}
	standardDays := in.StandardDays
	if standardDays <= 0 {
		standardDays = payroll.DefaultStandardDaysPerMonth
	}

	dim := calendar.DaysIn(in.Year, in.Month)
	start, end := calendar.MonthRange(in.Year, in.Month)
	agg := in.Attendance

	perDay := emp.MonthlySalary.Div(decimal.NewFromInt(int64(standardDays)))

	gross := emp.MonthlySalary
	join := calendar.DateOf(emp.JoinDate)
	if join.After(start) {
		remaining := dim - join.Day() + 1
		gross = emp.MonthlySalary.Mul(decimal.NewFromInt(int64(remaining))).Div(decimal.NewFromInt(int64(dim)))
	}
	gross = gross.Round(2)

	deductions := perDay.Mul(decimal.NewFromInt(int64(agg.NotMarkedDays + agg.LOPDays))).Round(2)

	overtimePay := decimal.Zero
	for _, ot := range in.Overtime {
		if ot.Status != payroll.OvertimeStatusApproved {
			continue
		}
		if ot.EmployeeID != "" && ot.EmployeeID != emp.ID {
			continue
		}
		d := calendar.DateOf(ot.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		overtimePay = overtimePay.Add(ot.CalculatedPay)
	}
	overtimePay = overtimePay.Round(2)

	net := gross.Sub(deductions).Add(overtimePay)

	absent := agg.LeaveDays + agg.LOPDays + agg.NotMarkedDays
	percentage := decimal.NewFromInt(int64(dim - absent)).Mul(hundred).Div(decimal.NewFromInt(int64(dim))).Round(2)

	multiplier := emp.OvertimeMultiplier
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromInt(1)
	}
	estimate := agg.OvertimeHours().Mul(emp.HourlyRate).Mul(multiplier).Round(2)

	var warnings []string
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		warnings = append(warnings, fmt.Sprintf("attendance percentage %s is outside 0-100", percentage.String()))
	}
	if agg.FutureDays == 0 && in.Balance.LOPDays != agg.LOPDays {
		warnings = append(warnings, fmt.Sprintf(
			"ledger records %d loss-of-pay days but %d fall on unworked working days", in.Balance.LOPDays, agg.LOPDays))
	}

	return payroll.EmployeePayrollSummary{
		EmployeeID:           emp.ID,
		Year:                 in.Year,
		Month:                in.Month,
		DaysInMonth:          dim,
		DaysPresent:          agg.PresentDays,
		LeaveDays:            agg.LeaveDays,
		LOPDays:              agg.LOPDays,
		DaysNotMarked:        agg.NotMarkedDays,
		LedgerLOPDays:        in.Balance.LOPDays,
		TotalHoursWorked:     agg.TotalHoursWorked(),
		OvertimeHours:        agg.OvertimeHours(),
		MonthlySalary:        emp.MonthlySalary,
		PerDaySalary:         perDay.Round(2),
		GrossSalary:          gross,
		TotalDeductions:      deductions,
		OvertimePay:          overtimePay,
		OvertimeEstimate:     estimate,
		NetPay:               net,
		AttendancePercentage: percentage,
		Warnings:             warnings,
	}, nil
}
