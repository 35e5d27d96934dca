package leave

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func defaultEdges() []leave.ApprovalHierarchyEdge {
	return []leave.ApprovalHierarchyEdge{
		{ID: "e3", ApproverPositionID: strPtr("pos-ceo"), Stage: leave.StageCEOPending, Sequence: 3},
		{ID: "e1", Stage: leave.StageManagerPending, Sequence: 1},
		{ID: "e2", ApproverPositionID: strPtr("pos-agm"), Stage: leave.StageAGMPending, Sequence: 2},
	}
}

var testHolders = map[string][]string{
	"pos-agm": {"agm-1", "agm-2"},
	"pos-ceo": {"ceo-1"},
}

func stages(chain []leave.ChainStep) []leave.Stage {
	out := make([]leave.Stage, len(chain))
	for i, s := range chain {
		out[i] = s.Stage
	}
	return out
}

func TestResolveChain_FullChainInSequence(t *testing.T) {
	applicant := employee.Employee{ID: "emp-1", PositionID: "pos-lecturer", ManagerID: strPtr("mgr-1")}

	chain, skipped := ResolveChain(applicant, defaultEdges(), testHolders)
	assert.Empty(t, skipped)
	assert.Equal(t, []leave.Stage{leave.StageManagerPending, leave.StageAGMPending, leave.StageCEOPending}, stages(chain))
	assert.Equal(t, []string{"mgr-1"}, chain[0].ApproverIDs)
	assert.Equal(t, []string{"agm-1", "agm-2"}, chain[1].ApproverIDs)
}

func TestResolveChain_NoManagerSkipsToNextStage(t *testing.T) {
	applicant := employee.Employee{ID: "emp-1", PositionID: "pos-lecturer"}

	chain, skipped := ResolveChain(applicant, defaultEdges(), testHolders)
	assert.Equal(t, []leave.Stage{leave.StageAGMPending, leave.StageCEOPending}, stages(chain))
	require.Len(t, skipped, 1)
	assert.Equal(t, leave.StageManagerPending, skipped[0].Stage)
}

func TestResolveChain_PositionSpecificEdgesReplaceDefaults(t *testing.T) {
	edges := append(defaultEdges(), leave.ApprovalHierarchyEdge{
		ID:                  "agm-only",
		ApplicantPositionID: strPtr("pos-agm"),
		ApproverPositionID:  strPtr("pos-ceo"),
		Stage:               leave.StageCEOPending,
		Sequence:            1,
	})
	applicant := employee.Employee{ID: "agm-1", PositionID: "pos-agm", ManagerID: strPtr("mgr-1")}

	chain, _ := ResolveChain(applicant, edges, testHolders)
	assert.Equal(t, []leave.Stage{leave.StageCEOPending}, stages(chain))
}

func TestResolveChain_ApplicantNeverApprovesOwnStage(t *testing.T) {
	applicant := employee.Employee{ID: "ceo-1", PositionID: "pos-ceo"}

	chain, skipped := ResolveChain(applicant, defaultEdges(), testHolders)
	assert.Equal(t, []leave.Stage{leave.StageAGMPending}, stages(chain))
	assert.Len(t, skipped, 2)
}

func TestResolveChain_NoEdges(t *testing.T) {
	chain, skipped := ResolveChain(employee.Employee{ID: "emp-1"}, nil, testHolders)
	assert.Empty(t, chain)
	assert.Empty(t, skipped)
}

func pendingApp(t *testing.T, chain []leave.ChainStep) *leave.LeaveApplication {
	t.Helper()
	app := &leave.LeaveApplication{
		ID:          "app-1",
		ApplicantID: "emp-1",
		StartDate:   date("2025-04-14"),
		EndDate:     date("2025-04-15"),
		LeaveType:   leave.LeaveTypeCasual,
	}
	Submit(app, chain, date("2025-04-01"))
	return app
}

func fullChain(t *testing.T) []leave.ChainStep {
	t.Helper()
	applicant := employee.Employee{ID: "emp-1", PositionID: "pos-lecturer", ManagerID: strPtr("mgr-1")}
	chain, _ := ResolveChain(applicant, defaultEdges(), testHolders)
	require.Len(t, chain, 3)
	return chain
}

func TestSubmit_EmptyChainCompletesImmediately(t *testing.T) {
	app := pendingApp(t, nil)
	assert.Equal(t, leave.StatusApproved, app.Status)
	assert.Equal(t, leave.StageCompleted, app.Stage)
	require.NotNil(t, app.DecidedAt)
}

func TestApprove_WalksEveryStageInOrder(t *testing.T) {
	app := pendingApp(t, fullChain(t))
	at := date("2025-04-02")
	assert.Equal(t, leave.StageManagerPending, app.Stage)

	// An approver of a later stage cannot jump ahead.
	assert.ErrorIs(t, Approve(app, "ceo-1", nil, at), leave.ErrNotApprover)
	assert.Equal(t, leave.StageManagerPending, app.Stage)

	require.NoError(t, Approve(app, "mgr-1", nil, at))
	assert.Equal(t, leave.StageAGMPending, app.Stage)
	assert.Equal(t, leave.StatusPending, app.Status)

	require.NoError(t, Approve(app, "agm-2", nil, at))
	assert.Equal(t, leave.StageCEOPending, app.Stage)

	require.NoError(t, Approve(app, "ceo-1", nil, at))
	assert.Equal(t, leave.StageCompleted, app.Stage)
	assert.Equal(t, leave.StatusApproved, app.Status)
	assert.Equal(t, "ceo-1", *app.DecidedBy)

	require.Len(t, app.Approvals, 3)
	for i, step := range app.Chain {
		assert.Equal(t, step.Stage, app.Approvals[i].Stage)
	}

	assert.ErrorIs(t, Approve(app, "ceo-1", nil, at), leave.ErrApplicationAlreadyClosed)
}

func TestApprove_ExpectedStageGuard(t *testing.T) {
	app := pendingApp(t, fullChain(t))
	stale := leave.StageAGMPending

	err := Approve(app, "mgr-1", &stale, date("2025-04-02"))
	assert.ErrorIs(t, err, leave.ErrStageMismatch)
	assert.Empty(t, app.Approvals)

	current := leave.StageManagerPending
	assert.NoError(t, Approve(app, "mgr-1", &current, date("2025-04-02")))
}

func TestReject_IsTerminalAtAnyStage(t *testing.T) {
	app := pendingApp(t, fullChain(t))
	require.NoError(t, Approve(app, "mgr-1", nil, date("2025-04-02")))

	assert.ErrorIs(t, Reject(app, "mgr-1", "no", date("2025-04-03")), leave.ErrNotApprover)

	require.NoError(t, Reject(app, "agm-1", "short staffed", date("2025-04-03")))
	assert.Equal(t, leave.StatusRejected, app.Status)
	assert.Equal(t, leave.StageAGMPending, app.Stage)
	assert.Equal(t, "short staffed", *app.RejectionReason)

	assert.ErrorIs(t, Approve(app, "agm-1", nil, date("2025-04-04")), leave.ErrApplicationAlreadyClosed)
	assert.ErrorIs(t, Approve(app, "ceo-1", nil, date("2025-04-04")), leave.ErrApplicationAlreadyClosed)
	assert.ErrorIs(t, Cancel(app, "emp-1", date("2025-04-04"), date("2025-04-04")), leave.ErrApplicationAlreadyClosed)
	assert.Equal(t, leave.StageAGMPending, app.Stage)
}

func TestCancel(t *testing.T) {
	cases := []struct {
		name    string
		actor   string
		today   string
		approve bool
		wantErr error
	}{
		{name: "applicant before start", actor: "emp-1", today: "2025-04-10"},
		{name: "approved leave still in future", actor: "emp-1", today: "2025-04-13", approve: true},
		{name: "someone else", actor: "mgr-1", today: "2025-04-10", wantErr: leave.ErrNotApplicant},
		{name: "on start date", actor: "emp-1", today: "2025-04-14", wantErr: leave.ErrLeaveAlreadyStarted},
		{name: "after start date", actor: "emp-1", today: "2025-04-20", approve: true, wantErr: leave.ErrLeaveAlreadyStarted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := pendingApp(t, []leave.ChainStep{{Stage: leave.StageManagerPending, ApproverIDs: []string{"mgr-1"}}})
			if tc.approve {
				require.NoError(t, Approve(app, "mgr-1", nil, date("2025-04-02")))
			}
			before := app.Status

			err := Cancel(app, tc.actor, date(tc.today), date(tc.today))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, before, app.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, leave.StatusCancelled, app.Status)
			assert.Equal(t, tc.actor, *app.CancelledBy)
		})
	}
}
