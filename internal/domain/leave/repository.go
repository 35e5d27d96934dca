package leave

import (
	"context"
)

type LeaveApplicationRepository interface {
	Create(ctx context.Context, app LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string) (LeaveApplication, error)
	// ListByApplicant returns the applicant's applications, restricted to
	// statuses when any are given, ordered by applied_at.
	ListByApplicant(ctx context.Context, applicantID string, statuses ...Status) ([]LeaveApplication, error)
	// UpdateIfVersion persists app only when the stored version still equals
	// expectedVersion, and fails with ErrConcurrentModification otherwise.
	// The stored version becomes expectedVersion+1.
	UpdateIfVersion(ctx context.Context, app LeaveApplication, expectedVersion int) (LeaveApplication, error)
}

type SubstituteAssignmentRepository interface {
	CreateBatch(ctx context.Context, assignments []SubstituteAssignment) error
	ListByApplication(ctx context.Context, applicationID string) ([]SubstituteAssignment, error)
	ReleaseByApplication(ctx context.Context, applicationID string) error
}

type ApprovalHierarchyRepository interface {
	// ListEdges returns the edges configured for applicantPositionID together
	// with the default edges (nil applicant position).
	ListEdges(ctx context.Context, applicantPositionID string) ([]ApprovalHierarchyEdge, error)
}
