package calendar

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// ========================================
// CALENDAR DTOs
// ========================================

type ResolveRequest struct {
	Scope   string  `json:"scope"`
	ScopeID *string `json:"scope_id,omitempty"`
	Date    string  `json:"date"` // YYYY-MM-DD
}

func (r *ResolveRequest) Validate() error {
	var errs validator.ValidationErrors

	validateScope(&errs, r.Scope, r.ScopeID)

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	return errs.Err()
}

type ResolveResponse struct {
	Scope   string  `json:"scope"`
	ScopeID *string `json:"scope_id,omitempty"`
	Date    string  `json:"date"`
	Type    string  `json:"type"`
}

type RangeRequest struct {
	Scope     string  `json:"scope"`
	ScopeID   *string `json:"scope_id,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	validateScope(&errs, r.Scope, r.ScopeID)

	start, validStart := validator.IsValidDate(r.StartDate)
	if !validStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, validEnd := validator.IsValidDate(r.EndDate)
	if !validEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if validStart && validEnd {
		if end.Before(start) {
			errs.Add("end_date", ErrInvalidRange.Error())
		} else if end.Sub(start).Hours()/24 > 366 {
			errs.Add("end_date", ErrRangeTooLarge.Error())
		}
	}

	return errs.Err()
}

type NonWorkingDaysResponse struct {
	Scope     string   `json:"scope"`
	ScopeID   *string  `json:"scope_id,omitempty"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Weekends  []string `json:"weekends"`
	Holidays  []string `json:"holidays"`
}

type UpsertEntryRequest struct {
	Scope       string  `json:"scope"`
	ScopeID     *string `json:"scope_id,omitempty"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

func (r *UpsertEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	validateScope(&errs, r.Scope, r.ScopeID)

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if !DayType(r.Type).IsValid() {
		errs.Add("type", "type must be one of: working, weekend, holiday")
	}
	if r.Description != nil && len(*r.Description) > 255 {
		errs.Add("description", "description must not exceed 255 characters")
	}

	return errs.Err()
}

type EntryResponse struct {
	ID          string  `json:"id"`
	Scope       string  `json:"scope"`
	ScopeID     *string `json:"scope_id,omitempty"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

func validateScope(errs *validator.ValidationErrors, scope string, scopeID *string) {
	switch Scope(scope) {
	case ScopeInstitution:
		if scopeID == nil || validator.IsEmpty(*scopeID) {
			errs.Add("scope_id", ErrScopeIDRequired.Error())
		}
	case ScopeCompany:
	default:
		errs.Add("scope", ErrInvalidScope.Error())
	}
}

// ToRef converts request fields into a calendar reference. The company
// calendar ignores any scope_id supplied by the caller.
func ToRef(scope string, scopeID *string) Ref {
	if Scope(scope) == ScopeCompany {
		return CompanyRef()
	}
	return Ref{Scope: Scope(scope), ScopeID: scopeID}
}
