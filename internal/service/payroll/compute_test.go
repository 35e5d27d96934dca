package payroll

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func staff(salary string, join string) employee.Employee {
	return employee.Employee{
		ID:                 "emp-1",
		ApplicantType:      employee.ApplicantTypeEmployee,
		JoinDate:           day(join),
		MonthlySalary:      dec(salary),
		HourlyRate:         dec("150"),
		OvertimeMultiplier: dec("1.5"),
	}
}

func TestCompute_UnmarkedDaysScenario(t *testing.T) {
	in := ComputeInput{
		Employee:     staff("30000", "2024-01-01"),
		Year:         2025,
		Month:        time.April,
		StandardDays: 30,
		Attendance: attendance.MonthlyAggregate{
			DaysInMonth:   30,
			PresentDays:   18,
			NotMarkedDays: 2,
			LOPDays:       1,
		},
		Balance: leave.LeaveBalance{LOPDays: 1},
		Overtime: []payroll.OvertimeRequest{
			{EmployeeID: "emp-1", Date: day("2025-04-10"), CalculatedPay: dec("300"), Status: payroll.OvertimeStatusApproved},
			{EmployeeID: "emp-1", Date: day("2025-04-18"), CalculatedPay: dec("200"), Status: payroll.OvertimeStatusApproved},
			{EmployeeID: "emp-1", Date: day("2025-04-19"), CalculatedPay: dec("999"), Status: payroll.OvertimeStatusPending},
			{EmployeeID: "emp-1", Date: day("2025-05-01"), CalculatedPay: dec("999"), Status: payroll.OvertimeStatusApproved},
		},
	}

	s, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", s.PerDaySalary.StringFixed(2))
	assert.Equal(t, "30000.00", s.GrossSalary.StringFixed(2))
	assert.Equal(t, "3000.00", s.TotalDeductions.StringFixed(2))
	assert.Equal(t, "500.00", s.OvertimePay.StringFixed(2))
	assert.True(t, s.NetPay.Equal(dec("27500")), "net pay %s", s.NetPay)
	assert.Empty(t, s.Warnings)
}

func TestCompute_PaidLeaveIsNotDeducted(t *testing.T) {
	in := ComputeInput{
		Employee:   staff("30000", "2024-01-01"),
		Year:       2025,
		Month:      time.April,
		Attendance: attendance.MonthlyAggregate{DaysInMonth: 30, LeaveDays: 2},
	}

	s, err := Compute(in)
	require.NoError(t, err)
	assert.True(t, s.TotalDeductions.IsZero())
	assert.True(t, s.NetPay.Equal(dec("30000")))
	// (30 - 2) * 100 / 30
	assert.Equal(t, "93.33", s.AttendancePercentage.StringFixed(2))
}

func TestCompute_MidMonthJoinProratesGross(t *testing.T) {
	in := ComputeInput{
		Employee: staff("31000", "2025-03-11"),
		Year:     2025,
		Month:    time.March,
		Attendance: attendance.MonthlyAggregate{
			DaysInMonth:   31,
			NotJoinedDays: 10,
		},
	}

	s, err := Compute(in)
	require.NoError(t, err)
	// 21 of 31 days remain from the 11th.
	assert.Equal(t, "21000.00", s.GrossSalary.StringFixed(2))
	assert.True(t, s.NetPay.Equal(s.GrossSalary))
}

func TestCompute_JoinOnFirstDayIsNotProrated(t *testing.T) {
	s, err := Compute(ComputeInput{
		Employee:   staff("31000", "2025-03-01"),
		Year:       2025,
		Month:      time.March,
		Attendance: attendance.MonthlyAggregate{DaysInMonth: 31},
	})
	require.NoError(t, err)
	assert.True(t, s.GrossSalary.Equal(dec("31000")))
}

func TestCompute_BeforeJoinMonth(t *testing.T) {
	_, err := Compute(ComputeInput{
		Employee: staff("30000", "2025-05-02"),
		Year:     2025,
		Month:    time.April,
	})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotJoined)
}

func TestCompute_DefaultsStandardDays(t *testing.T) {
	s, err := Compute(ComputeInput{
		Employee:   staff("45000", "2024-01-01"),
		Year:       2025,
		Month:      time.February,
		Attendance: attendance.MonthlyAggregate{DaysInMonth: 28, NotMarkedDays: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "1500.00", s.PerDaySalary.StringFixed(2))
	assert.Equal(t, "1500.00", s.TotalDeductions.StringFixed(2))
}

func TestCompute_OvertimeEstimateIsInformational(t *testing.T) {
	s, err := Compute(ComputeInput{
		Employee:   staff("30000", "2024-01-01"),
		Year:       2025,
		Month:      time.April,
		Attendance: attendance.MonthlyAggregate{DaysInMonth: 30, OvertimeMinutes: 90},
	})
	require.NoError(t, err)
	// 1.5h * 150 * 1.5
	assert.Equal(t, "337.50", s.OvertimeEstimate.StringFixed(2))
	assert.True(t, s.OvertimePay.IsZero())
	assert.True(t, s.NetPay.Equal(dec("30000")))
}

func TestCompute_LedgerMismatchWarns(t *testing.T) {
	s, err := Compute(ComputeInput{
		Employee:   staff("30000", "2024-01-01"),
		Year:       2025,
		Month:      time.April,
		Attendance: attendance.MonthlyAggregate{DaysInMonth: 30, PresentDays: 1},
		Balance:    leave.LeaveBalance{LOPDays: 1},
	})
	require.NoError(t, err)
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "loss-of-pay")
	assert.Equal(t, 1, s.LedgerLOPDays)
	assert.Equal(t, 0, s.LOPDays)
}

func TestCompute_OutOfRangePercentageIsReportedNotClamped(t *testing.T) {
	// Inconsistent input: more absences than days in the month.
	s, err := Compute(ComputeInput{
		Employee:   staff("30000", "2024-01-01"),
		Year:       2025,
		Month:      time.April,
		Attendance: attendance.MonthlyAggregate{DaysInMonth: 30, NotMarkedDays: 31},
	})
	require.NoError(t, err)
	assert.True(t, s.AttendancePercentage.IsNegative())
	assert.NotEmpty(t, s.Warnings)
}

func TestCompute_NetPayIdentityAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		salary := decimal.New(rng.Int63n(10_000_000), -2)
		join := day("2025-01-01").AddDate(0, 0, rng.Intn(59))
		in := ComputeInput{
			Employee:     staff(salary.String(), join.Format("2006-01-02")),
			Year:         2025,
			Month:        time.February,
			StandardDays: 26 + rng.Intn(5),
			Attendance: attendance.MonthlyAggregate{
				DaysInMonth:     28,
				NotMarkedDays:   rng.Intn(6),
				LOPDays:         rng.Intn(3),
				LeaveDays:       rng.Intn(3),
				OvertimeMinutes: rng.Intn(600),
			},
			Overtime: []payroll.OvertimeRequest{
				{Date: day("2025-02-03"), CalculatedPay: decimal.New(rng.Int63n(100000), -3), Status: payroll.OvertimeStatusApproved},
				{Date: day("2025-02-04"), CalculatedPay: decimal.New(rng.Int63n(100000), -3), Status: payroll.OvertimeStatusApproved},
			},
		}

		s, err := Compute(in)
		require.NoError(t, err)
		assert.True(t, s.NetPay.Equal(s.GrossSalary.Sub(s.TotalDeductions).Add(s.OvertimePay)))

		again, err := Compute(in)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}
