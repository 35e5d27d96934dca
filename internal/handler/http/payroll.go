package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	RecomputeMonth(w http.ResponseWriter, r *http.Request)
	RecomputeEmployee(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		now:            time.Now,
	}
}

// RecomputeMonth implements PayrollHandler.
func (h *payrollHandlerImpl) RecomputeMonth(w http.ResponseWriter, r *http.Request) {
	var req payroll.RecomputeMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecomputeMonth decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.RecomputeMonth(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll recomputed", result)
}

// RecomputeEmployee implements PayrollHandler.
func (h *payrollHandlerImpl) RecomputeEmployee(w http.ResponseWriter, r *http.Request) {
	var req payroll.RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecomputeEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Recompute(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll recomputed", result)
}

// GetSummary implements PayrollHandler.
func (h *payrollHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "id")
	if !middleware.CanViewEmployee(actor, employeeID) {
		response.Forbidden(w, "You cannot view this payroll summary")
		return
	}

	year, month := periodFromQuery(r, h.now())
	req := payroll.GetSummaryRequest{EmployeeID: employeeID, Year: year, Month: month}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
