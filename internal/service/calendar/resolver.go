package calendar

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
)

// Resolver classifies dates of one calendar. Explicit entries take
// precedence; any other date falls back to the day-of-week default.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	ref     calendar.Ref
	entries map[time.Time]calendar.DayType
}

// NewResolver builds a resolver for ref. Entries belonging to another
// calendar are ignored.
func NewResolver(ref calendar.Ref, entries []calendar.Entry) *Resolver {
	r := &Resolver{
		ref:     ref,
		entries: make(map[time.Time]calendar.DayType, len(entries)),
	}
	for _, e := range entries {
		if e.Ref().Key() != ref.Key() || !e.Type.IsValid() {
			continue
		}
		r.entries[calendar.DateOf(e.Date)] = e.Type
	}
	return r
}

func (r *Resolver) Ref() calendar.Ref {
	return r.ref
}

// Resolve returns the day type of date.
func (r *Resolver) Resolve(date time.Time) calendar.DayType {
	if t, ok := r.entries[calendar.DateOf(date)]; ok {
		return t
	}
	return DefaultDayType(date)
}

// IsWorkingDay reports whether date resolves to a working day.
func (r *Resolver) IsWorkingDay(date time.Time) bool {
	return r.Resolve(date) == calendar.DayTypeWorking
}

// NonWorkingDaysInRange lists weekends and holidays within [start, end].
func (r *Resolver) NonWorkingDaysInRange(start, end time.Time) calendar.NonWorkingDays {
	result := calendar.NonWorkingDays{
		Weekends: []time.Time{},
		Holidays: []time.Time{},
	}
	for _, d := range calendar.EachDay(start, end) {
		switch r.Resolve(d) {
		case calendar.DayTypeWeekend:
			result.Weekends = append(result.Weekends, d)
		case calendar.DayTypeHoliday:
			result.Holidays = append(result.Holidays, d)
		}
	}
	return result
}

// WorkingDaysInRange lists the working dates within [start, end].
func (r *Resolver) WorkingDaysInRange(start, end time.Time) []time.Time {
	days := []time.Time{}
	for _, d := range calendar.EachDay(start, end) {
		if r.IsWorkingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// DefaultDayType is the classification used when a calendar has no entry.
func DefaultDayType(date time.Time) calendar.DayType {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return calendar.DayTypeWeekend
	}
	return calendar.DayTypeWorking
}
