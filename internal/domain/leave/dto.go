package leave

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// ========================================
// LEAVE APPLICATION DTOs
// ========================================

type SubstituteInput struct {
	SlotID              string `json:"slot_id"`
	Date                string `json:"date"` // YYYY-MM-DD
	SubstituteOfficerID string `json:"substitute_officer_id"`
}

type SubmitRequest struct {
	ApplicantID string            `json:"-"` // From JWT
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	LeaveType   string            `json:"leave_type"`
	Reason      string            `json:"reason"`
	Substitutes []SubstituteInput `json:"substitutes,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApplicantID) {
		errs.Add("applicant_id", "applicant_id is required")
	}

	start, validStart := validator.IsValidDate(r.StartDate)
	if !validStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, validEnd := validator.IsValidDate(r.EndDate)
	if !validEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if validStart && validEnd {
		if end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		} else if end.Sub(start) > 90*24*time.Hour {
			errs.Add("end_date", "leave range must not exceed 90 days")
		}
	}

	if !validator.IsInSlice(r.LeaveType, LeaveTypeValues) {
		errs.Add("leave_type", "leave_type must be one of casual, sick, earned, unpaid")
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	for _, s := range r.Substitutes {
		if validator.IsEmpty(s.SlotID) {
			errs.Add("substitutes.slot_id", "slot_id is required")
		}
		if _, ok := validator.IsValidDate(s.Date); !ok {
			errs.Add("substitutes.date", "date must be in YYYY-MM-DD format")
		}
		if validator.IsEmpty(s.SubstituteOfficerID) {
			errs.Add("substitutes.substitute_officer_id", "substitute_officer_id is required")
		} else if s.SubstituteOfficerID == r.ApplicantID {
			errs.Add("substitutes.substitute_officer_id", "applicant cannot substitute for themselves")
		}
	}

	return errs.Err()
}

type DecisionRequest struct {
	ApplicationID string  `json:"-"` // From URL
	ActorID       string  `json:"-"` // From JWT
	ExpectedStage *string `json:"expected_stage,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApplicationID) {
		errs.Add("application_id", "application_id is required")
	}
	if validator.IsEmpty(r.ActorID) {
		errs.Add("actor_id", "actor_id is required")
	}

	return errs.Err()
}

type RejectRequest struct {
	ApplicationID string `json:"-"` // From URL
	ActorID       string `json:"-"` // From JWT
	Reason        string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApplicationID) {
		errs.Add("application_id", "application_id is required")
	}
	if validator.IsEmpty(r.ActorID) {
		errs.Add("actor_id", "actor_id is required")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "rejection reason is required")
	}

	return errs.Err()
}

type CancelRequest struct {
	ApplicationID string `json:"-"` // From URL
	ActorID       string `json:"-"` // From JWT
}

func (r *CancelRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApplicationID) {
		errs.Add("application_id", "application_id is required")
	}
	if validator.IsEmpty(r.ActorID) {
		errs.Add("actor_id", "actor_id is required")
	}

	return errs.Err()
}

type SubstituteAssignmentResponse struct {
	ID                  string `json:"id"`
	SlotID              string `json:"slot_id"`
	OriginalOfficerID   string `json:"original_officer_id"`
	SubstituteOfficerID string `json:"substitute_officer_id"`
	Date                string `json:"date"`
	Hours               string `json:"hours"`
	Status              string `json:"status"`
}

type ApplicationResponse struct {
	ID                    string                         `json:"id"`
	ApplicantID           string                         `json:"applicant_id"`
	ApplicantType         string                         `json:"applicant_type"`
	StartDate             string                         `json:"start_date"`
	EndDate               string                         `json:"end_date"`
	LeaveType             string                         `json:"leave_type"`
	Reason                string                         `json:"reason"`
	LeaveDates            []string                       `json:"leave_dates"`
	TotalDays             int                            `json:"total_days"`
	PaidDays              int                            `json:"paid_days"`
	LOPDays               int                            `json:"lop_days"`
	Status                string                         `json:"status"`
	ApprovalStage         string                         `json:"approval_stage"`
	Chain                 []ChainStep                    `json:"chain"`
	Approvals             []Approval                     `json:"approvals"`
	AppliedAt             string                         `json:"applied_at"`
	DecidedBy             *string                        `json:"decided_by,omitempty"`
	DecidedAt             *string                        `json:"decided_at,omitempty"`
	RejectionReason       *string                        `json:"rejection_reason,omitempty"`
	CancelledBy           *string                        `json:"cancelled_by,omitempty"`
	CancelledAt           *string                        `json:"cancelled_at,omitempty"`
	Version               int                            `json:"version"`
	SubstituteAssignments []SubstituteAssignmentResponse `json:"substitute_assignments"`
	Warnings              []string                       `json:"warnings,omitempty"`
}

type BalanceRequest struct {
	EmployeeID string `json:"-"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *BalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if !validator.IsValidPeriod(r.Year, r.Month) {
		errs.Add("period", "year and month must form a valid period")
	}

	return errs.Err()
}

type AllocationResponse struct {
	Date          string `json:"date"`
	ApplicationID string `json:"application_id"`
	LeaveType     string `json:"leave_type"`
	Paid          bool   `json:"paid"`
}

type BalanceResponse struct {
	EmployeeID       string               `json:"employee_id"`
	Year             int                  `json:"year"`
	Month            int                  `json:"month"`
	MonthlyCredit    int                  `json:"monthly_credit"`
	CarriedForward   int                  `json:"carried_forward"`
	Forfeited        int                  `json:"forfeited"`
	LeaveUsed        map[string]int       `json:"leave_used"`
	PaidDays         int                  `json:"paid_days"`
	LOPDays          int                  `json:"lop_days"`
	BalanceRemaining int                  `json:"balance_remaining"`
	Allocations      []AllocationResponse `json:"allocations"`
}
