package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

// DayFacts is everything known about one date when it is classified.
type DayFacts struct {
	Date       time.Time
	Today      time.Time
	JoinDate   time.Time
	DayType    calendar.DayType
	Record     *attendance.AttendanceRecord
	Allocation *leave.DayAllocation
}

var statusConditions = map[attendance.DayStatus]func(DayFacts) bool{
	attendance.DayStatusFuture: func(f DayFacts) bool {
		return f.Date.After(calendar.DateOf(f.Today))
	},
	attendance.DayStatusNotJoined: func(f DayFacts) bool {
		return !f.JoinDate.IsZero() && f.Date.Before(calendar.DateOf(f.JoinDate))
	},
	attendance.DayStatusHoliday: func(f DayFacts) bool {
		return f.DayType == calendar.DayTypeHoliday
	},
	attendance.DayStatusWeekend: func(f DayFacts) bool {
		return f.DayType == calendar.DayTypeWeekend
	},
	attendance.DayStatusPresent: func(f DayFacts) bool {
		return f.Record != nil && f.Record.IsPresent()
	},
	attendance.DayStatusLOP: func(f DayFacts) bool {
		return f.Allocation != nil && !f.Allocation.Paid
	},
	attendance.DayStatusLeave: func(f DayFacts) bool {
		return f.Allocation != nil && f.Allocation.Paid
	},
	attendance.DayStatusNotMarked: func(DayFacts) bool {
		return true
	},
}

// Classify returns the first status in attendance.StatusPriority whose
// condition holds for f.
func Classify(f DayFacts) attendance.DayStatus {
	f.Date = calendar.DateOf(f.Date)
	for _, status := range attendance.StatusPriority {
		if statusConditions[status](f) {
			return status
		}
	}
	return attendance.DayStatusNotMarked
}

// AggregateInput carries the raw data of one employee-month.
type AggregateInput struct {
	EmployeeID  string
	Year        int
	Month       time.Month
	Today       time.Time
	JoinDate    time.Time
	NormMinutes int
	Calendar    calendar.DayTypeResolver
	Records     []attendance.AttendanceRecord
	Allocations []leave.DayAllocation
}

// Aggregate classifies every day of the month and totals the result. It is a
// pure function of its input.
func Aggregate(in AggregateInput) attendance.MonthlyAggregate {
	start, end := calendar.MonthRange(in.Year, in.Month)

	records := make(map[time.Time]*attendance.AttendanceRecord, len(in.Records))
	for i := range in.Records {
		r := &in.Records[i]
		if r.EmployeeID != "" && in.EmployeeID != "" && r.EmployeeID != in.EmployeeID {
			continue
		}
		records[calendar.DateOf(r.Date)] = r
	}
	allocations := make(map[time.Time]*leave.DayAllocation, len(in.Allocations))
	for i := range in.Allocations {
		a := &in.Allocations[i]
		allocations[calendar.DateOf(a.Date)] = a
	}

	agg := attendance.MonthlyAggregate{
		EmployeeID:  in.EmployeeID,
		Year:        in.Year,
		Month:       in.Month,
		DaysInMonth: calendar.DaysIn(in.Year, in.Month),
		Days:        make([]attendance.DailyStatus, 0, calendar.DaysIn(in.Year, in.Month)),
	}

	for _, d := range calendar.EachDay(start, end) {
		facts := DayFacts{
			Date:       d,
			Today:      in.Today,
			JoinDate:   in.JoinDate,
			DayType:    in.Calendar.Resolve(d),
			Record:     records[d],
			Allocation: allocations[d],
		}
		day := attendance.DailyStatus{Date: d, Status: Classify(facts)}
		if facts.Record != nil {
			id := facts.Record.ID
			day.RecordID = &id
		}
		if facts.Allocation != nil {
			id := facts.Allocation.ApplicationID
			day.ApplicationID = &id
		}

		switch day.Status {
		case attendance.DayStatusFuture:
			agg.FutureDays++
		case attendance.DayStatusNotJoined:
			agg.NotJoinedDays++
		case attendance.DayStatusHoliday:
			agg.HolidayDays++
		case attendance.DayStatusWeekend:
			agg.WeekendDays++
		case attendance.DayStatusPresent:
			agg.PresentDays++
		case attendance.DayStatusLOP:
			agg.LOPDays++
		case attendance.DayStatusLeave:
			agg.LeaveDays++
		case attendance.DayStatusNotMarked:
			agg.NotMarkedDays++
		}

		// Hours count for every worked record, including work on a holiday
		// or weekend.
		if facts.Record != nil && !d.After(calendar.DateOf(in.Today)) {
			day.WorkedMinutes = attendance.WorkedMinutesBetween(facts.Record.CheckIn, facts.Record.CheckOut)
			day.OvertimeMinutes = attendance.OvertimeMinutesFor(day.WorkedMinutes, in.NormMinutes)
			agg.WorkedMinutes += day.WorkedMinutes
			agg.OvertimeMinutes += day.OvertimeMinutes
		}

		agg.Days = append(agg.Days, day)
	}
	agg.AbsentDays = agg.LOPDays + agg.NotMarkedDays

	return agg
}
