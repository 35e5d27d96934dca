package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	GetApplication(w http.ResponseWriter, r *http.Request)
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	GetEmployeeBalance(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	now          func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		now:          time.Now,
	}
}

// Submit implements LeaveHandler.
func (l *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Applicant always comes from the token, never from the body.
	req.ApplicantID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	application, err := l.leaveService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted successfully", application)
}

// Approve implements LeaveHandler.
func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.DecisionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("Approve decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ApplicationID = chi.URLParam(r, "id")
	req.ActorID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	application, err := l.leaveService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application approved", application)
}

// Reject implements LeaveHandler.
func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reject decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ApplicationID = chi.URLParam(r, "id")
	req.ActorID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	application, err := l.leaveService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application rejected", application)
}

// Cancel implements LeaveHandler.
func (l *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := leave.CancelRequest{
		ApplicationID: chi.URLParam(r, "id"),
		ActorID:       actor.EmployeeID,
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	application, err := l.leaveService.Cancel(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application cancelled", application)
}

// GetApplication implements LeaveHandler. Applicants, the approvers named in
// the chain, and managers may read an application.
func (l *LeaveHandlerImpl) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	applicationID := chi.URLParam(r, "id")
	if applicationID == "" {
		response.BadRequest(w, "Application ID is required", nil)
		return
	}

	application, err := l.leaveService.GetApplication(r.Context(), applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !middleware.CanViewEmployee(actor, application.ApplicantID) && !isChainApprover(application, actor.EmployeeID) {
		response.Forbidden(w, "You cannot view this leave application")
		return
	}

	response.Success(w, application)
}

func isChainApprover(application leave.ApplicationResponse, employeeID string) bool {
	for _, step := range application.Chain {
		for _, id := range step.ApproverIDs {
			if id == employeeID {
				return true
			}
		}
	}
	return false
}

// GetMyBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	l.balance(w, r, actor.EmployeeID)
}

// GetEmployeeBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeBalance(w http.ResponseWriter, r *http.Request) {
	l.balance(w, r, chi.URLParam(r, "id"))
}

func (l *LeaveHandlerImpl) balance(w http.ResponseWriter, r *http.Request, employeeID string) {
	year, month := periodFromQuery(r, l.now())
	req := leave.BalanceRequest{EmployeeID: employeeID, Year: year, Month: month}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := l.leaveService.GetBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balance)
}
