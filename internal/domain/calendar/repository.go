package calendar

import (
	"context"
	"time"
)

type Repository interface {
	// ListByRange returns the explicit entries of one calendar within [start, end].
	ListByRange(ctx context.Context, ref Ref, start, end time.Time) ([]Entry, error)

	// Upsert creates or replaces the entry keyed on (scope, scope_id, date).
	Upsert(ctx context.Context, entry Entry) (Entry, error)
}
