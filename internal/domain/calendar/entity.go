package calendar

import (
	"time"
)

// Scope selects which calendar governs a date lookup.
type Scope string

const (
	ScopeInstitution Scope = "institution"
	ScopeCompany     Scope = "company"
)

// DayType is the classification of a single calendar date.
type DayType string

const (
	DayTypeWorking DayType = "working"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

func (t DayType) IsValid() bool {
	switch t {
	case DayTypeWorking, DayTypeWeekend, DayTypeHoliday:
		return true
	}
	return false
}

// Ref identifies one calendar. ScopeID is nil for the company calendar.
type Ref struct {
	Scope   Scope
	ScopeID *string
}

// CompanyRef returns the reference to the shared company calendar.
func CompanyRef() Ref {
	return Ref{Scope: ScopeCompany}
}

// InstitutionRef returns the reference to one institution's calendar.
func InstitutionRef(institutionID string) Ref {
	id := institutionID
	return Ref{Scope: ScopeInstitution, ScopeID: &id}
}

// Key returns a stable map key for the reference.
func (r Ref) Key() string {
	if r.ScopeID == nil {
		return string(r.Scope)
	}
	return string(r.Scope) + ":" + *r.ScopeID
}

// Entry is an explicit classification for one date of one calendar.
// At most one entry exists per (scope, scope_id, date).
type Entry struct {
	ID          string
	Scope       Scope
	ScopeID     *string
	Date        time.Time
	Type        DayType
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Entry) Ref() Ref {
	return Ref{Scope: e.Scope, ScopeID: e.ScopeID}
}

// NonWorkingDays lists the dates of a range that are not working days.
type NonWorkingDays struct {
	Weekends []time.Time
	Holidays []time.Time
}

// DayTypeResolver classifies dates of one calendar.
type DayTypeResolver interface {
	Resolve(date time.Time) DayType
}
