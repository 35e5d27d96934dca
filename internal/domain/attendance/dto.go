package attendance

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID string   `json:"-"` // From JWT
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	SkipGPS    bool     `json:"skip_gps"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	validatePosition(&errs, r.Latitude, r.Longitude)

	return errs.Err()
}

type CheckOutRequest struct {
	EmployeeID string   `json:"-"` // From JWT
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	SkipGPS    bool     `json:"skip_gps"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	validatePosition(&errs, r.Latitude, r.Longitude)

	return errs.Err()
}

func validatePosition(errs *validator.ValidationErrors, lat, lng *float64) {
	if (lat == nil) != (lng == nil) {
		errs.Add("location", "latitude and longitude must be sent together")
		return
	}
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if lng != nil && !validator.IsValidLongitude(*lng) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	EmployeeID        string   `json:"employee_id"`
	Date              string   `json:"date"`
	Status            string   `json:"status"`
	CheckInTime       *string  `json:"check_in_time,omitempty"`
	CheckOutTime      *string  `json:"check_out_time,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	CheckInDistance   *float64 `json:"check_in_distance_meters"`
	CheckOutDistance  *float64 `json:"check_out_distance_meters"`
	LocationValidated *bool    `json:"location_validated"`
	HoursWorked       *string  `json:"hours_worked,omitempty"`
	OvertimeHours     *string  `json:"overtime_hours,omitempty"`
}

type AggregateRequest struct {
	EmployeeID string `json:"-"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *AggregateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if !validator.IsValidPeriod(r.Year, r.Month) {
		errs.Add("period", "year and month must form a valid period")
	}

	return errs.Err()
}

type DailyStatusResponse struct {
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	RecordID      *string `json:"record_id,omitempty"`
	ApplicationID *string `json:"application_id,omitempty"`
	HoursWorked   string  `json:"hours_worked"`
	OvertimeHours string  `json:"overtime_hours"`
}

type AggregateResponse struct {
	EmployeeID       string                `json:"employee_id"`
	Year             int                   `json:"year"`
	Month            int                   `json:"month"`
	DaysInMonth      int                   `json:"days_in_month"`
	PresentDays      int                   `json:"present_days"`
	AbsentDays       int                   `json:"absent_days"`
	LeaveDays        int                   `json:"leave_days"`
	LOPDays          int                   `json:"lop_days"`
	NotMarkedDays    int                   `json:"not_marked_days"`
	HolidayDays      int                   `json:"holiday_days"`
	WeekendDays      int                   `json:"weekend_days"`
	TotalHoursWorked string                `json:"total_hours_worked"`
	OvertimeHours    string                `json:"overtime_hours"`
	Days             []DailyStatusResponse `json:"days"`
}
