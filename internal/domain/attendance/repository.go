package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil when the employee has no record on date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AttendanceRecord, error)

	// UpsertCheckIn writes a check-in keyed on (employee_id, date). An existing
	// absent record is overwritten; any other existing record yields
	// ErrAlreadyCheckedIn.
	UpsertCheckIn(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// CompleteCheckOut applies the check-out fields to a record still in
	// checked_in status, or fails with ErrAlreadyCheckedOut.
	CompleteCheckOut(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// ListByEmployeeAndRange returns records with start <= date <= end, by date.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceRecord, error)
}
