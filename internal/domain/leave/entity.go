package leave

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type LeaveType string

const (
	LeaveTypeCasual LeaveType = "casual"
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeEarned LeaveType = "earned"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

var LeaveTypeValues = []string{
	string(LeaveTypeCasual),
	string(LeaveTypeSick),
	string(LeaveTypeEarned),
	string(LeaveTypeUnpaid),
}

// DrawsOnBalance reports whether days of this type consume accrued credit.
// Unpaid leave is loss of pay by definition.
func (t LeaveType) DrawsOnBalance() bool {
	return t != LeaveTypeUnpaid
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Stage is the approval checkpoint an application is waiting on.
type Stage string

const (
	StageManagerPending Stage = "manager_pending"
	StageAGMPending     Stage = "agm_pending"
	StageCEOPending     Stage = "ceo_pending"
	StageCompleted      Stage = "completed"
)

// ApprovalHierarchyEdge maps an applicant position to the position that
// approves one stage. A nil ApplicantPositionID is the default chain used by
// positions without their own edges. Sequence orders stages within a chain.
// The manager stage is satisfied by the applicant's own manager, so its
// ApproverPositionID may be nil.
type ApprovalHierarchyEdge struct {
	ID                  string
	ApplicantPositionID *string
	ApproverPositionID  *string
	Stage               Stage
	Sequence            int
}

// ChainStep is one resolved stage of an application's approval chain.
type ChainStep struct {
	Stage              Stage    `json:"stage"`
	ApproverPositionID *string  `json:"approver_position_id,omitempty"`
	ApproverIDs        []string `json:"approver_ids"`
}

// Approval is an audit entry for one stage decision.
type Approval struct {
	Stage      Stage     `json:"stage"`
	ApproverID string    `json:"approver_id"`
	DecidedAt  time.Time `json:"decided_at"`
}

type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusReleased AssignmentStatus = "released"
)

type SubstituteAssignment struct {
	ID                  string
	ApplicationID       string
	SlotID              string
	OriginalOfficerID   string
	SubstituteOfficerID string
	Date                time.Time
	Hours               decimal.Decimal
	Status              AssignmentStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type LeaveApplication struct {
	ID            string
	ApplicantID   string
	ApplicantType employee.ApplicantType
	StartDate     time.Time
	EndDate       time.Time
	LeaveType     LeaveType
	Reason        string

	// LeaveDates are the working dates inside [StartDate, EndDate] counted at
	// submission. The ledger allocates over these, not over the raw range.
	LeaveDates []time.Time
	TotalDays  int
	PaidDays   int
	LOPDays    int

	Status          Status
	Stage           Stage
	Chain           []ChainStep
	Approvals       []Approval
	AppliedAt       time.Time
	DecidedBy       *string
	DecidedAt       *time.Time
	RejectionReason *string
	CancelledBy     *string
	CancelledAt     *time.Time

	// Version is bumped by every persisted transition.
	Version int

	SubstituteAssignments []SubstituteAssignment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentStep returns the chain step the application is waiting on.
func (a LeaveApplication) CurrentStep() (ChainStep, bool) {
	for _, step := range a.Chain {
		if step.Stage == a.Stage {
			return step, true
		}
	}
	return ChainStep{}, false
}

// Covers reports whether date is one of the application's leave dates.
func (a LeaveApplication) Covers(date time.Time) bool {
	for _, d := range a.LeaveDates {
		if d.Equal(date) {
			return true
		}
	}
	return false
}

// LedgerOrder is the instant that ranks the application when balance is
// allocated: its final decision time, or submission time while undecided.
func (a LeaveApplication) LedgerOrder() time.Time {
	if a.Status == StatusApproved && a.DecidedAt != nil {
		return *a.DecidedAt
	}
	return a.AppliedAt
}

// DayAllocation is the paid or loss-of-pay outcome of one leave date.
type DayAllocation struct {
	Date          time.Time
	ApplicationID string
	LeaveType     LeaveType
	Paid          bool
}

// LeaveBalance is the derived ledger row for one employee-month.
type LeaveBalance struct {
	EmployeeID       string
	Year             int
	Month            time.Month
	MonthlyCredit    int
	CarriedForward   int
	Forfeited        int
	LeaveUsed        map[LeaveType]int
	PaidDays         int
	LOPDays          int
	BalanceRemaining int
	Allocations      []DayAllocation
}

// Available is the usable balance at the start of the month.
func (b LeaveBalance) Available() int {
	return b.MonthlyCredit + b.CarriedForward
}
