package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// TeachingSlot is a recurring weekly class an officer is scheduled to teach.
type TeachingSlot struct {
	ID            string
	OfficerID     string
	InstitutionID string
	DayOfWeek     int // 1=Monday, ..., 7=Sunday
	StartTime     time.Time
	EndTime       time.Time
	Hours         decimal.Decimal
	Subject       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ISODayOfWeek maps a date to the 1=Monday, ..., 7=Sunday convention.
func ISODayOfWeek(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// OccursOn reports whether the slot is held on date.
func (s TeachingSlot) OccursOn(date time.Time) bool {
	return s.DayOfWeek == ISODayOfWeek(date)
}

// Occurrence is one dated instance of a teaching slot.
type Occurrence struct {
	Slot TeachingSlot
	Date time.Time
}

// OccurrencesOn expands slots onto dates, in date order then slot order.
func OccurrencesOn(slots []TeachingSlot, dates []time.Time) []Occurrence {
	var out []Occurrence
	for _, d := range dates {
		for _, s := range slots {
			if s.OccursOn(d) {
				out = append(out, Occurrence{Slot: s, Date: d})
			}
		}
	}
	return out
}
