package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
)

type CalendarServiceImpl struct {
	calendar.Repository
}

func NewCalendarService(repo calendar.Repository) *CalendarServiceImpl {
	return &CalendarServiceImpl{Repository: repo}
}

// LoadResolver reads the entries of ref overlapping [start, end]. A calendar
// without entries still resolves through the day-of-week default.
func (s *CalendarServiceImpl) LoadResolver(ctx context.Context, ref calendar.Ref, start, end time.Time) (*Resolver, error) {
	entries, err := s.Repository.ListByRange(ctx, ref, calendar.DateOf(start), calendar.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar entries: %w", err)
	}
	return NewResolver(ref, entries), nil
}

// Resolve implements calendar.Service.
func (s *CalendarServiceImpl) Resolve(ctx context.Context, req calendar.ResolveRequest) (calendar.ResolveResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.ResolveResponse{}, err
	}
	date, _ := calendar.ParseDate(req.Date)
	ref := calendar.ToRef(req.Scope, req.ScopeID)

	resolver, err := s.LoadResolver(ctx, ref, date, date)
	if err != nil {
		return calendar.ResolveResponse{}, err
	}

	return calendar.ResolveResponse{
		Scope:   string(ref.Scope),
		ScopeID: ref.ScopeID,
		Date:    date.Format(calendar.DateLayout),
		Type:    string(resolver.Resolve(date)),
	}, nil
}

// NonWorkingDaysInRange implements calendar.Service.
func (s *CalendarServiceImpl) NonWorkingDaysInRange(ctx context.Context, req calendar.RangeRequest) (calendar.NonWorkingDaysResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.NonWorkingDaysResponse{}, err
	}
	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)
	ref := calendar.ToRef(req.Scope, req.ScopeID)

	resolver, err := s.LoadResolver(ctx, ref, start, end)
	if err != nil {
		return calendar.NonWorkingDaysResponse{}, err
	}
	days := resolver.NonWorkingDaysInRange(start, end)

	return calendar.NonWorkingDaysResponse{
		Scope:     string(ref.Scope),
		ScopeID:   ref.ScopeID,
		StartDate: start.Format(calendar.DateLayout),
		EndDate:   end.Format(calendar.DateLayout),
		Weekends:  formatDates(days.Weekends),
		Holidays:  formatDates(days.Holidays),
	}, nil
}

// UpsertEntry implements calendar.Service.
func (s *CalendarServiceImpl) UpsertEntry(ctx context.Context, req calendar.UpsertEntryRequest) (calendar.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.EntryResponse{}, err
	}
	date, _ := calendar.ParseDate(req.Date)
	ref := calendar.ToRef(req.Scope, req.ScopeID)

	saved, err := s.Repository.Upsert(ctx, calendar.Entry{
		Scope:       ref.Scope,
		ScopeID:     ref.ScopeID,
		Date:        date,
		Type:        calendar.DayType(req.Type),
		Description: req.Description,
	})
	if err != nil {
		return calendar.EntryResponse{}, fmt.Errorf("failed to upsert calendar entry: %w", err)
	}

	return calendar.EntryResponse{
		ID:          saved.ID,
		Scope:       string(saved.Scope),
		ScopeID:     saved.ScopeID,
		Date:        saved.Date.Format(calendar.DateLayout),
		Type:        string(saved.Type),
		Description: saved.Description,
	}, nil
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(calendar.DateLayout)
	}
	return out
}

var _ calendar.Service = (*CalendarServiceImpl)(nil)
