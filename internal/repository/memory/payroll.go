package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

type overtimeRepo struct{ s *Store }

func (r overtimeRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, start, end time.Time) ([]payroll.OvertimeRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	start, end = calendar.DateOf(start), calendar.DateOf(end)
	var out []payroll.OvertimeRequest
	for _, o := range r.s.overtime {
		d := calendar.DateOf(o.Date)
		if o.EmployeeID == employeeID && !d.Before(start) && !d.After(end) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type summaryRepo struct{ s *Store }

func (r summaryRepo) Upsert(_ context.Context, summary payroll.EmployeePayrollSummary) (payroll.EmployeePayrollSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	summary.Warnings = slices.Clone(summary.Warnings)
	r.s.summaries[monthKey{employeeID: summary.EmployeeID, year: summary.Year, month: summary.Month}] = summary
	return summary, nil
}

func (r summaryRepo) Get(_ context.Context, employeeID string, year int, month time.Month) (payroll.EmployeePayrollSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	summary, ok := r.s.summaries[monthKey{employeeID: employeeID, year: year, month: month}]
	if !ok {
		return payroll.EmployeePayrollSummary{}, payroll.ErrSummaryNotFound
	}
	summary.Warnings = slices.Clone(summary.Warnings)
	return summary, nil
}
