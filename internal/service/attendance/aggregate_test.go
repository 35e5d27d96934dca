package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	calendarsvc "github.com/cmlabs-hris/payroll-engine/internal/service/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestStatusPriority_Order(t *testing.T) {
	assert.Equal(t, []attendance.DayStatus{
		attendance.DayStatusFuture,
		attendance.DayStatusNotJoined,
		attendance.DayStatusHoliday,
		attendance.DayStatusWeekend,
		attendance.DayStatusPresent,
		attendance.DayStatusLOP,
		attendance.DayStatusLeave,
		attendance.DayStatusNotMarked,
	}, attendance.StatusPriority)

	for _, s := range attendance.StatusPriority {
		_, ok := statusConditions[s]
		assert.True(t, ok, "missing condition for %s", s)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	present := &attendance.AttendanceRecord{Status: attendance.StatusCheckedOut}
	absent := &attendance.AttendanceRecord{Status: attendance.StatusAbsent}
	paid := &leave.DayAllocation{Paid: true}
	lop := &leave.DayAllocation{Paid: false}
	today := day("2025-03-12")

	cases := []struct {
		name  string
		facts DayFacts
		want  attendance.DayStatus
	}{
		{"future beats everything", DayFacts{Date: day("2025-03-13"), DayType: calendar.DayTypeHoliday, Record: present}, attendance.DayStatusFuture},
		{"before join", DayFacts{Date: day("2025-03-03"), JoinDate: day("2025-03-05"), DayType: calendar.DayTypeWorking}, attendance.DayStatusNotJoined},
		{"holiday beats present", DayFacts{Date: day("2025-03-05"), DayType: calendar.DayTypeHoliday, Record: present}, attendance.DayStatusHoliday},
		{"weekend beats leave", DayFacts{Date: day("2025-03-08"), DayType: calendar.DayTypeWeekend, Allocation: paid}, attendance.DayStatusWeekend},
		{"present beats lop", DayFacts{Date: day("2025-03-10"), DayType: calendar.DayTypeWorking, Record: present, Allocation: lop}, attendance.DayStatusPresent},
		{"absent record is not presence", DayFacts{Date: day("2025-03-10"), DayType: calendar.DayTypeWorking, Record: absent, Allocation: lop}, attendance.DayStatusLOP},
		{"paid leave", DayFacts{Date: day("2025-03-11"), DayType: calendar.DayTypeWorking, Allocation: paid}, attendance.DayStatusLeave},
		{"nothing recorded", DayFacts{Date: day("2025-03-12"), DayType: calendar.DayTypeWorking}, attendance.DayStatusNotMarked},
		{"today with time of day is not future", DayFacts{Date: day("2025-03-12").Add(15 * time.Hour), DayType: calendar.DayTypeWorking}, attendance.DayStatusNotMarked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.facts.Today = today
			assert.Equal(t, tc.want, Classify(tc.facts))
		})
	}
}

func marchInput(today time.Time) AggregateInput {
	holiday := calendar.Entry{Scope: calendar.ScopeCompany, Date: day("2025-03-05"), Type: calendar.DayTypeHoliday}
	return AggregateInput{
		EmployeeID:  "emp-1",
		Year:        2025,
		Month:       time.March,
		Today:       today,
		JoinDate:    day("2024-01-01"),
		NormMinutes: attendance.NormMinutes(decimal.NewFromInt(8)),
		Calendar:    calendarsvc.NewResolver(calendar.CompanyRef(), []calendar.Entry{holiday}),
		Records: []attendance.AttendanceRecord{
			{ID: "r1", EmployeeID: "emp-1", Date: day("2025-03-03"), Status: attendance.StatusCheckedOut, CheckIn: at("2025-03-03 09:00"), CheckOut: at("2025-03-03 18:30")},
			{ID: "r2", EmployeeID: "emp-1", Date: day("2025-03-04"), Status: attendance.StatusCheckedOut, CheckIn: at("2025-03-04 09:00"), CheckOut: at("2025-03-04 17:00")},
			{ID: "r3", EmployeeID: "emp-1", Date: day("2025-03-08"), Status: attendance.StatusCheckedOut, CheckIn: at("2025-03-08 09:00"), CheckOut: at("2025-03-08 12:00")},
			{ID: "r4", EmployeeID: "emp-1", Date: day("2025-03-10"), Status: attendance.StatusCheckedIn, CheckIn: at("2025-03-10 09:00")},
			{ID: "other", EmployeeID: "emp-2", Date: day("2025-03-11"), Status: attendance.StatusCheckedOut},
		},
		Allocations: []leave.DayAllocation{
			{Date: day("2025-03-06"), ApplicationID: "a1", Paid: true},
			{Date: day("2025-03-07"), ApplicationID: "a1", Paid: false},
			{Date: day("2025-03-10"), ApplicationID: "a2", Paid: true},
		},
	}
}

func TestAggregate_CompletedMonth(t *testing.T) {
	agg := Aggregate(marchInput(day("2025-03-31")))

	require.Len(t, agg.Days, 31)
	assert.Equal(t, 31, agg.DaysInMonth)
	assert.Equal(t, 3, agg.PresentDays)
	assert.Equal(t, 1, agg.LeaveDays)
	assert.Equal(t, 1, agg.LOPDays)
	assert.Equal(t, 1, agg.HolidayDays)
	assert.Equal(t, 10, agg.WeekendDays)
	assert.Equal(t, 15, agg.NotMarkedDays)
	assert.Equal(t, 16, agg.AbsentDays)
	assert.Equal(t, 0, agg.FutureDays)

	assert.Equal(t, 1230, agg.WorkedMinutes)
	assert.Equal(t, 90, agg.OvertimeMinutes)
	assert.Equal(t, "20.5", agg.TotalHoursWorked().String())
	assert.Equal(t, "1.5", agg.OvertimeHours().String())

	assert.Equal(t, attendance.DayStatusLeave, agg.Days[5].Status)
	assert.Equal(t, "a1", *agg.Days[5].ApplicationID)
	assert.Equal(t, attendance.DayStatusPresent, agg.Days[9].Status)
	assert.Equal(t, "r4", *agg.Days[9].RecordID)
}

func TestAggregate_MonthInProgress(t *testing.T) {
	agg := Aggregate(marchInput(day("2025-03-12")))

	assert.Equal(t, 19, agg.FutureDays)
	assert.Equal(t, 2, agg.NotMarkedDays)
	assert.Equal(t, 4, agg.WeekendDays)
	assert.Equal(t, 3, agg.PresentDays)

	total := agg.FutureDays + agg.NotJoinedDays + agg.HolidayDays + agg.WeekendDays +
		agg.PresentDays + agg.LOPDays + agg.LeaveDays + agg.NotMarkedDays
	assert.Equal(t, agg.DaysInMonth, total)
}

func TestAggregate_JoinedMidMonth(t *testing.T) {
	in := marchInput(day("2025-03-31"))
	in.JoinDate = day("2025-03-10")
	in.Records = nil
	in.Allocations = nil

	agg := Aggregate(in)
	assert.Equal(t, 9, agg.NotJoinedDays)
	// Working days from the 10th: 16 of them.
	assert.Equal(t, 16, agg.NotMarkedDays)
}

func TestAggregate_Idempotent(t *testing.T) {
	in := marchInput(day("2025-03-20"))
	assert.Equal(t, Aggregate(in), Aggregate(in))
}
