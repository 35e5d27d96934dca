package sse

import (
	"sync"
)

// subscriberBuffer bounds how far a slow stream may fall behind before
// events to it are dropped.
const subscriberBuffer = 16

// Event is a frame fanned out to the streams of one recipient.
type Event struct {
	RecipientID string
	Name        string
	Data        interface{}
}

// Hub fans events out to per-recipient subscriber channels.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for recipientID. The returned cleanup
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(recipientID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan Event]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[recipientID], ch)
			close(ch)
			if len(h.subscribers[recipientID]) == 0 {
				delete(h.subscribers, recipientID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to every stream of its recipient without blocking.
// It returns how many streams accepted the event.
func (h *Hub) Publish(event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[event.RecipientID] {
		select {
		case ch <- event:
			delivered++
		default:
			// full: drop rather than stall the publisher
		}
	}
	return delivered
}

func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipientID])
}
