package notification

import (
	"time"
)

// EventType names an emitted side effect of the engine.
type EventType string

const (
	TypeLeaveSubmitted     EventType = "leave_submitted"
	TypeLeaveStageApproved EventType = "leave_stage_approved"
	TypeLeaveApproved      EventType = "leave_approved"
	TypeLeaveRejected      EventType = "leave_rejected"
	TypeLeaveCancelled     EventType = "leave_cancelled"
	TypeLOPDetermined      EventType = "lop_determined"
	TypePayrollRecomputed  EventType = "payroll_recomputed"
)

// Event is one notification addressed to one recipient. The engine only
// records and streams events; delivery belongs to the subscriber.
type Event struct {
	ID          string
	RecipientID string
	ActorID     *string
	Type        EventType
	SubjectID   string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}
