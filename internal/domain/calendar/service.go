package calendar

import (
	"context"
)

type Service interface {
	Resolve(ctx context.Context, req ResolveRequest) (ResolveResponse, error)
	NonWorkingDaysInRange(ctx context.Context, req RangeRequest) (NonWorkingDaysResponse, error)
	UpsertEntry(ctx context.Context, req UpsertEntryRequest) (EntryResponse, error)
}
