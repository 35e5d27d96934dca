package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/geo"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Lookup failures
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, institution.ErrInstitutionNotFound):
		NotFound(w, "Institution not found")
	case errors.Is(err, leave.ErrApplicationNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, payroll.ErrSummaryNotFound):
		NotFound(w, "Payroll summary not found")

	// Geofence
	case errors.Is(err, geo.ErrGPSNotConfigured):
		BadRequestWithCode(w, "GPS_NOT_CONFIGURED", err.Error())
	case errors.Is(err, geo.ErrOutsideAllowedRadius):
		BadRequestWithCode(w, "OUTSIDE_ALLOWED_RADIUS", err.Error())
	case errors.Is(err, geo.ErrLocationRequired):
		BadRequestWithCode(w, "LOCATION_REQUIRED", err.Error())

	// Attendance
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequestWithCode(w, "NOT_CHECKED_IN", err.Error())
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrNotJoined),
		errors.Is(err, payroll.ErrEmployeeNotJoined):
		UnprocessableEntity(w, "NOT_JOINED", err.Error(), nil)

	// Leave workflow
	case errors.Is(err, leave.ErrOverlappingLeave):
		UnprocessableEntity(w, "OVERLAPPING_LEAVE", err.Error(), nil)
	case errors.Is(err, leave.ErrUnassignedSubstituteSlot):
		UnprocessableEntity(w, "UNASSIGNED_SUBSTITUTE_SLOT", err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidSubstitute):
		UnprocessableEntity(w, "INVALID_SUBSTITUTE", err.Error(), nil)
	case errors.Is(err, leave.ErrNoWorkingDays):
		UnprocessableEntity(w, "NO_WORKING_DAYS", err.Error(), nil)
	case errors.Is(err, leave.ErrNotApprover),
		errors.Is(err, leave.ErrNotApplicant):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrConcurrentModification),
		errors.Is(err, leave.ErrApplicationAlreadyClosed),
		errors.Is(err, leave.ErrStageMismatch),
		errors.Is(err, leave.ErrLeaveAlreadyStarted):
		Conflict(w, err.Error())

	// Calendar and payroll input
	case errors.Is(err, calendar.ErrInvalidScope),
		errors.Is(err, calendar.ErrScopeIDRequired),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, calendar.ErrRangeTooLarge),
		errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
