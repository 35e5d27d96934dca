package leave

import "errors"

var (
	ErrApplicationNotFound      = errors.New("leave application not found")
	ErrApplicationAlreadyClosed = errors.New("leave application has already been processed")
	ErrStageMismatch            = errors.New("leave application is no longer at the expected approval stage")
	ErrNotApprover              = errors.New("you are not an approver for the current stage")
	ErrNotApplicant             = errors.New("only the applicant can cancel a leave application")
	ErrLeaveAlreadyStarted      = errors.New("leave has already started and can no longer be cancelled")
	ErrOverlappingLeave         = errors.New("leave dates overlap an existing leave application")
	ErrNoWorkingDays            = errors.New("the requested range contains no working days")
	ErrUnassignedSubstituteSlot = errors.New("every teaching slot in the leave range needs exactly one substitute")
	ErrInvalidSubstitute        = errors.New("substitute assignment does not match a scheduled teaching slot")
	ErrConcurrentModification   = errors.New("leave application was modified concurrently, reload and retry")
)
