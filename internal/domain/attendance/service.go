package attendance

import (
	"context"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)
	MonthlyAggregate(ctx context.Context, req AggregateRequest) (AggregateResponse, error)
}
