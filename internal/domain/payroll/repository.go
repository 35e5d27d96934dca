package payroll

import (
	"context"
	"time"
)

type OvertimeRepository interface {
	// ListByEmployeeAndRange returns requests of every status dated within [start, end].
	ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]OvertimeRequest, error)
}

// SummaryRepository is the derived-summary cache. Upsert is last-writer-wins
// on (employee_id, year, month).
type SummaryRepository interface {
	Upsert(ctx context.Context, summary EmployeePayrollSummary) (EmployeePayrollSummary, error)
	Get(ctx context.Context, employeeID string, year int, month time.Month) (EmployeePayrollSummary, error)
}
