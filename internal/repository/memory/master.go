package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/google/uuid"
)

type employeeRepo struct{ s *Store }

func (r employeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r employeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	return r.list(func(e employee.Employee) bool { return true }), nil
}

func (r employeeRepo) ListByPosition(_ context.Context, positionID string) ([]employee.Employee, error) {
	return r.list(func(e employee.Employee) bool { return e.PositionID == positionID }), nil
}

func (r employeeRepo) list(match func(employee.Employee) bool) []employee.Employee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.EmploymentStatus == employee.EmploymentStatusActive && match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type institutionRepo struct{ s *Store }

func (r institutionRepo) GetByID(_ context.Context, id string) (institution.Institution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.institutions[id]
	if !ok {
		return institution.Institution{}, institution.ErrInstitutionNotFound
	}
	return i, nil
}

type slotRepo struct{ s *Store }

func (r slotRepo) ListByOfficer(_ context.Context, officerID string) ([]schedule.TeachingSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []schedule.TeachingSlot
	for _, slot := range r.s.slots {
		if slot.OfficerID == officerID {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type calendarRepo struct{ s *Store }

func (r calendarRepo) ListByRange(_ context.Context, ref calendar.Ref, start, end time.Time) ([]calendar.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	start, end = calendar.DateOf(start), calendar.DateOf(end)
	var out []calendar.Entry
	for d, e := range r.s.calendarEntries[ref.Key()] {
		if !d.Before(start) && !d.After(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r calendarRepo) Upsert(_ context.Context, entry calendar.Entry) (calendar.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.Date = calendar.DateOf(entry.Date)
	now := r.s.now().UTC()

	key := entry.Ref().Key()
	days, ok := r.s.calendarEntries[key]
	if !ok {
		days = make(map[time.Time]calendar.Entry)
		r.s.calendarEntries[key] = days
	}
	if old, ok := days[entry.Date]; ok {
		entry.ID = old.ID
		entry.CreatedAt = old.CreatedAt
	} else {
		if entry.ID == "" {
			entry.ID = uuid.Must(uuid.NewV7()).String()
		}
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	days[entry.Date] = entry
	return entry, nil
}
