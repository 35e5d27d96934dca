package notification

import (
	"context"
)

type Service interface {
	// Queue records an event for async persistence and streaming.
	Queue(ctx context.Context, req CreateEventRequest) error
	QueueMany(ctx context.Context, reqs []CreateEventRequest)

	Recent(ctx context.Context, recipientID string, limit int) ([]EventResponse, error)
	Subscribe(ctx context.Context, recipientID string) (<-chan SSEEvent, func())

	Stop()
}
