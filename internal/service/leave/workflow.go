package leave

import (
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

// SkippedStage records a configured stage left out of a chain.
type SkippedStage struct {
	Stage  leave.Stage
	Reason string
}

// ResolveChain turns the hierarchy edges into the ordered approval chain for
// applicant. Edges keyed on the applicant's position replace the default
// edges. holders maps an approver position to the employees holding it.
// The manager stage goes to the applicant's own manager. A stage nobody can
// approve is skipped rather than left to block forever.
func ResolveChain(applicant employee.Employee, edges []leave.ApprovalHierarchyEdge, holders map[string][]string) ([]leave.ChainStep, []SkippedStage) {
	var specific, defaults []leave.ApprovalHierarchyEdge
	for _, e := range edges {
		switch {
		case e.ApplicantPositionID == nil:
			defaults = append(defaults, e)
		case *e.ApplicantPositionID == applicant.PositionID:
			specific = append(specific, e)
		}
	}
	selected := defaults
	if len(specific) > 0 {
		selected = specific
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Sequence < selected[j].Sequence
	})

	chain := []leave.ChainStep{}
	var skipped []SkippedStage
	seen := map[leave.Stage]bool{}
	for _, e := range selected {
		if seen[e.Stage] || e.Stage == leave.StageCompleted {
			continue
		}
		seen[e.Stage] = true

		if e.Stage == leave.StageManagerPending {
			if applicant.ManagerID == nil || *applicant.ManagerID == "" || *applicant.ManagerID == applicant.ID {
				skipped = append(skipped, SkippedStage{Stage: e.Stage, Reason: "applicant has no manager configured"})
				continue
			}
			chain = append(chain, leave.ChainStep{
				Stage:              e.Stage,
				ApproverPositionID: e.ApproverPositionID,
				ApproverIDs:        []string{*applicant.ManagerID},
			})
			continue
		}

		if e.ApproverPositionID == nil {
			skipped = append(skipped, SkippedStage{Stage: e.Stage, Reason: "no approver position configured"})
			continue
		}
		var ids []string
		for _, id := range holders[*e.ApproverPositionID] {
			if id != applicant.ID {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			skipped = append(skipped, SkippedStage{Stage: e.Stage, Reason: "no employee holds the approver position"})
			continue
		}
		chain = append(chain, leave.ChainStep{
			Stage:              e.Stage,
			ApproverPositionID: e.ApproverPositionID,
			ApproverIDs:        ids,
		})
	}
	return chain, skipped
}

// Submit puts app at the first stage of chain. An empty chain approves the
// application immediately.
func Submit(app *leave.LeaveApplication, chain []leave.ChainStep, at time.Time) {
	app.Chain = chain
	app.Approvals = []leave.Approval{}
	app.AppliedAt = at
	app.Status = leave.StatusPending
	if len(chain) == 0 {
		app.Stage = leave.StageCompleted
		app.Status = leave.StatusApproved
		app.DecidedAt = &at
		return
	}
	app.Stage = chain[0].Stage
}

// Approve records actor's approval of the current stage and advances app to
// the next stage, or to completed after the last one. app is left untouched
// when an error is returned.
func Approve(app *leave.LeaveApplication, actorID string, expected *leave.Stage, at time.Time) error {
	idx, err := checkDecision(app, actorID, expected)
	if err != nil {
		return err
	}

	app.Approvals = append(app.Approvals, leave.Approval{Stage: app.Stage, ApproverID: actorID, DecidedAt: at})
	if idx == len(app.Chain)-1 {
		app.Stage = leave.StageCompleted
		app.Status = leave.StatusApproved
		app.DecidedBy = &actorID
		app.DecidedAt = &at
		return nil
	}
	app.Stage = app.Chain[idx+1].Stage
	return nil
}

// Reject ends app at its current stage. app is left untouched when an error
// is returned.
func Reject(app *leave.LeaveApplication, actorID, reason string, at time.Time) error {
	if _, err := checkDecision(app, actorID, nil); err != nil {
		return err
	}
	app.Status = leave.StatusRejected
	app.DecidedBy = &actorID
	app.DecidedAt = &at
	app.RejectionReason = &reason
	return nil
}

// Cancel withdraws app on behalf of its applicant. Pending and approved
// applications can be cancelled while their first day is still in the future.
func Cancel(app *leave.LeaveApplication, actorID string, today time.Time, at time.Time) error {
	if app.Status.IsTerminal() {
		return leave.ErrApplicationAlreadyClosed
	}
	if actorID != app.ApplicantID {
		return leave.ErrNotApplicant
	}
	if !calendar.DateOf(today).Before(calendar.DateOf(app.StartDate)) {
		return leave.ErrLeaveAlreadyStarted
	}
	app.Status = leave.StatusCancelled
	app.CancelledBy = &actorID
	app.CancelledAt = &at
	return nil
}

func checkDecision(app *leave.LeaveApplication, actorID string, expected *leave.Stage) (int, error) {
	if app.Status != leave.StatusPending {
		return 0, leave.ErrApplicationAlreadyClosed
	}
	if expected != nil && *expected != app.Stage {
		return 0, leave.ErrStageMismatch
	}
	idx := slices.IndexFunc(app.Chain, func(s leave.ChainStep) bool { return s.Stage == app.Stage })
	if idx < 0 {
		return 0, leave.ErrStageMismatch
	}
	if !slices.Contains(app.Chain[idx].ApproverIDs, actorID) {
		return 0, leave.ErrNotApprover
	}
	return idx, nil
}
