package schedule

import "context"

type TeachingSlotRepository interface {
	ListByOfficer(ctx context.Context, officerID string) ([]TeachingSlot, error)
}
