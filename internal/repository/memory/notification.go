package memory

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
)

type notificationRepo struct{ s *Store }

func (r notificationRepo) CreateBatch(_ context.Context, events []notification.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, events...)
	return nil
}

// ListByRecipient returns the newest events first.
func (r notificationRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]notification.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []notification.Event
	for i := len(r.s.events) - 1; i >= 0; i-- {
		if r.s.events[i].RecipientID != recipientID {
			continue
		}
		out = append(out, r.s.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
