package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusAbsent     Status = "absent"
)

// AttendanceRecord is the single record of one employee on one date. It is
// created on check-in, completed once on check-out and never changed after.
type AttendanceRecord struct {
	ID                string
	EmployeeID        string
	InstitutionID     *string
	Date              time.Time
	Status            Status
	CheckIn           *time.Time
	CheckOut          *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckInDistance   *float64
	CheckOutDistance  *float64
	// LocationValidated is nil when no geofence applied.
	LocationValidated *bool
	WorkedMinutes     *int
	OvertimeMinutes   *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsPresent reports whether the record counts as attendance for its date.
func (r AttendanceRecord) IsPresent() bool {
	return r.Status == StatusCheckedIn || r.Status == StatusCheckedOut
}

// WorkedMinutesBetween floors the span between check-in and check-out to
// whole minutes. A missing or inverted span is zero.
func WorkedMinutesBetween(in, out *time.Time) int {
	if in == nil || out == nil || !out.After(*in) {
		return 0
	}
	return int(out.Sub(*in) / time.Minute)
}

// OvertimeMinutesFor returns max(0, worked - norm).
func OvertimeMinutesFor(worked, normMinutes int) int {
	if worked > normMinutes {
		return worked - normMinutes
	}
	return 0
}

// NormMinutes converts a daily norm in hours to whole minutes.
func NormMinutes(hours decimal.Decimal) int {
	return int(hours.Mul(decimal.NewFromInt(60)).Floor().IntPart())
}

// MinutesToHours expresses minutes as hours rounded to two decimals.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}

// DayStatus is the classification of one day of an employee-month.
type DayStatus string

const (
	DayStatusFuture    DayStatus = "future"
	DayStatusNotJoined DayStatus = "not_joined"
	DayStatusHoliday   DayStatus = "holiday"
	DayStatusWeekend   DayStatus = "weekend"
	DayStatusPresent   DayStatus = "present"
	DayStatusLOP       DayStatus = "lop"
	DayStatusLeave     DayStatus = "leave"
	DayStatusNotMarked DayStatus = "not_marked"
)

// StatusPriority is the order in which day statuses are tested; the first
// one whose condition holds is the day's status. Payroll and every report
// classify through this single order.
var StatusPriority = []DayStatus{
	DayStatusFuture,
	DayStatusNotJoined,
	DayStatusHoliday,
	DayStatusWeekend,
	DayStatusPresent,
	DayStatusLOP,
	DayStatusLeave,
	DayStatusNotMarked,
}

// DailyStatus is the classified outcome of one date.
type DailyStatus struct {
	Date            time.Time
	Status          DayStatus
	RecordID        *string
	ApplicationID   *string
	WorkedMinutes   int
	OvertimeMinutes int
}

// MonthlyAggregate reduces one employee-month of raw events.
type MonthlyAggregate struct {
	EmployeeID      string
	Year            int
	Month           time.Month
	DaysInMonth     int
	Days            []DailyStatus
	PresentDays     int
	LeaveDays       int
	LOPDays         int
	NotMarkedDays   int
	AbsentDays      int
	HolidayDays     int
	WeekendDays     int
	FutureDays      int
	NotJoinedDays   int
	WorkedMinutes   int
	OvertimeMinutes int
}

func (a MonthlyAggregate) TotalHoursWorked() decimal.Decimal {
	return MinutesToHours(a.WorkedMinutes)
}

func (a MonthlyAggregate) OvertimeHours() decimal.Decimal {
	return MinutesToHours(a.OvertimeMinutes)
}
