package notification

import (
	"context"
)

// Repository is the outbox of emitted events.
type Repository interface {
	CreateBatch(ctx context.Context, events []Event) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Event, error)
}
