package notification

import (
	"time"
)

type CreateEventRequest struct {
	RecipientID string
	ActorID     *string
	Type        EventType
	SubjectID   string
	Title       string
	Message     string
	Data        map[string]interface{}
}

func (r CreateEventRequest) Validate() error {
	if r.RecipientID == "" {
		return ErrRecipientRequired
	}
	return nil
}

type EventResponse struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	SubjectID string                 `json:"subject_id"`
	ActorID   *string                `json:"actor_id,omitempty"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// SSEEvent is one frame written to an event stream.
type SSEEvent struct {
	Event string        `json:"event"`
	Data  EventResponse `json:"data"`
}
