package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// ========================================
// PAYROLL DTOs
// ========================================

type RecomputeRequest struct {
	EmployeeID string `json:"-"` // From URL
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *RecomputeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if !validator.IsValidPeriod(r.Year, r.Month) {
		errs.Add("period", ErrInvalidPeriod.Error())
	}

	return errs.Err()
}

type RecomputeMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *RecomputeMonthRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.Year, r.Month) {
		errs.Add("period", ErrInvalidPeriod.Error())
	}

	return errs.Err()
}

type GetSummaryRequest struct {
	EmployeeID string `json:"-"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *GetSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if !validator.IsValidPeriod(r.Year, r.Month) {
		errs.Add("period", ErrInvalidPeriod.Error())
	}

	return errs.Err()
}

type SummaryResponse struct {
	EmployeeID           string   `json:"employee_id"`
	Year                 int      `json:"year"`
	Month                int      `json:"month"`
	DaysInMonth          int      `json:"days_in_month"`
	DaysPresent          int      `json:"days_present"`
	LeaveDays            int      `json:"leave_days"`
	LOPDays              int      `json:"lop_days"`
	DaysNotMarked        int      `json:"days_not_marked"`
	TotalHoursWorked     string   `json:"total_hours_worked"`
	OvertimeHours        string   `json:"overtime_hours"`
	MonthlySalary        string   `json:"monthly_salary"`
	PerDaySalary         string   `json:"per_day_salary"`
	GrossSalary          string   `json:"gross_salary"`
	TotalDeductions      string   `json:"total_deductions"`
	OvertimePay          string   `json:"overtime_pay"`
	OvertimeEstimate     string   `json:"overtime_estimate"`
	NetPay               string   `json:"net_pay"`
	AttendancePercentage string   `json:"attendance_percentage"`
	Warnings             []string `json:"warnings,omitempty"`
	ComputedAt           *string  `json:"computed_at,omitempty"`
}

type RecomputeFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type RecomputeMonthResponse struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Recomputed int                `json:"recomputed"`
	Skipped    int                `json:"skipped"`
	Failures   []RecomputeFailure `json:"failures,omitempty"`
}
