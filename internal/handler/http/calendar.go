package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
)

type CalendarHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
	NonWorkingDays(w http.ResponseWriter, r *http.Request)
	UpsertEntry(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.Service
}

func NewCalendarHandler(calendarService calendar.Service) CalendarHandler {
	return &calendarHandlerImpl{
		calendarService: calendarService,
	}
}

// Resolve implements CalendarHandler.
func (h *calendarHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	req := calendar.ResolveRequest{
		Scope:   r.URL.Query().Get("scope"),
		ScopeID: optionalQuery(r, "scope_id"),
		Date:    r.URL.Query().Get("date"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calendarService.Resolve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// NonWorkingDays implements CalendarHandler.
func (h *calendarHandlerImpl) NonWorkingDays(w http.ResponseWriter, r *http.Request) {
	req := calendar.RangeRequest{
		Scope:     r.URL.Query().Get("scope"),
		ScopeID:   optionalQuery(r, "scope_id"),
		StartDate: r.URL.Query().Get("start"),
		EndDate:   r.URL.Query().Get("end"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calendarService.NonWorkingDaysInRange(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpsertEntry implements CalendarHandler.
func (h *calendarHandlerImpl) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req calendar.UpsertEntryRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpsertEntry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entry, err := h.calendarService.UpsertEntry(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Calendar entry saved", entry)
}
