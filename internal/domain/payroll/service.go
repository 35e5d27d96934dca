package payroll

import (
	"context"
)

type PayrollService interface {
	// Recompute derives and caches one employee-month.
	Recompute(ctx context.Context, req RecomputeRequest) (SummaryResponse, error)
	// RecomputeMonth recomputes every active employee for one month.
	RecomputeMonth(ctx context.Context, req RecomputeMonthRequest) (RecomputeMonthResponse, error)
	GetSummary(ctx context.Context, req GetSummaryRequest) (SummaryResponse, error)
}
