package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

func cloneApplication(app leave.LeaveApplication) leave.LeaveApplication {
	app.LeaveDates = slices.Clone(app.LeaveDates)
	app.Approvals = slices.Clone(app.Approvals)
	chain := make([]leave.ChainStep, len(app.Chain))
	for i, step := range app.Chain {
		step.ApproverIDs = slices.Clone(step.ApproverIDs)
		chain[i] = step
	}
	app.Chain = chain
	// Assignments live in their own table.
	app.SubstituteAssignments = nil
	return app
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) Create(ctx context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	journalFrom(ctx).application(r.s, app.ID)
	if app.Version == 0 {
		app.Version = 1
	}
	stored := cloneApplication(app)
	r.s.applications[app.ID] = stored
	return cloneApplication(stored), nil
}

func (r applicationRepo) GetByID(_ context.Context, id string) (leave.LeaveApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.applications[id]
	if !ok {
		return leave.LeaveApplication{}, leave.ErrApplicationNotFound
	}
	return cloneApplication(app), nil
}

func (r applicationRepo) ListByApplicant(_ context.Context, applicantID string, statuses ...leave.Status) ([]leave.LeaveApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []leave.LeaveApplication
	for _, app := range r.s.applications {
		if app.ApplicantID != applicantID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, app.Status) {
			continue
		}
		out = append(out, cloneApplication(app))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.Before(out[j].AppliedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r applicationRepo) UpdateIfVersion(ctx context.Context, app leave.LeaveApplication, expectedVersion int) (leave.LeaveApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.applications[app.ID]
	if !ok {
		return leave.LeaveApplication{}, leave.ErrApplicationNotFound
	}
	if current.Version != expectedVersion {
		return leave.LeaveApplication{}, leave.ErrConcurrentModification
	}
	journalFrom(ctx).application(r.s, app.ID)
	app.Version = expectedVersion + 1
	app.CreatedAt = current.CreatedAt
	stored := cloneApplication(app)
	r.s.applications[app.ID] = stored
	return cloneApplication(stored), nil
}

type assignmentRepo struct{ s *Store }

func (r assignmentRepo) CreateBatch(ctx context.Context, assignments []leave.SubstituteAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j := journalFrom(ctx)
	for _, a := range assignments {
		j.assignment(r.s, a.ID)
		r.s.assignments[a.ID] = a
	}
	return nil
}

func (r assignmentRepo) ListByApplication(_ context.Context, applicationID string) ([]leave.SubstituteAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []leave.SubstituteAssignment{}
	for _, a := range r.s.assignments {
		if a.ApplicationID == applicationID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].SlotID < out[j].SlotID
	})
	return out, nil
}

func (r assignmentRepo) ReleaseByApplication(ctx context.Context, applicationID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j := journalFrom(ctx)
	now := r.s.now().UTC()
	for id, a := range r.s.assignments {
		if a.ApplicationID == applicationID && a.Status == leave.AssignmentStatusActive {
			j.assignment(r.s, id)
			a.Status = leave.AssignmentStatusReleased
			a.UpdatedAt = now
			r.s.assignments[id] = a
		}
	}
	return nil
}

type hierarchyRepo struct{ s *Store }

func (r hierarchyRepo) ListEdges(_ context.Context, applicantPositionID string) ([]leave.ApprovalHierarchyEdge, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []leave.ApprovalHierarchyEdge
	for _, e := range r.s.edges {
		if e.ApplicantPositionID == nil || *e.ApplicantPositionID == applicantPositionID {
			out = append(out, e)
		}
	}
	return out, nil
}
