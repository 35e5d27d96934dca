package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
)

type attendanceRepo struct{ s *Store }

func (r attendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.attendanceByDay[dayKey{ownerID: employeeID, date: calendar.DateOf(date)}]
	if !ok {
		return nil, nil
	}
	rec := r.s.attendance[id]
	return &rec, nil
}

func (r attendanceRepo) UpsertCheckIn(_ context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record.Date = calendar.DateOf(record.Date)
	now := r.s.now().UTC()

	k := dayKey{ownerID: record.EmployeeID, date: record.Date}
	if id, ok := r.s.attendanceByDay[k]; ok {
		existing := r.s.attendance[id]
		if existing.Status != attendance.StatusAbsent {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	r.s.attendance[record.ID] = record
	r.s.attendanceByDay[k] = record.ID
	return record, nil
}

func (r attendanceRepo) CompleteCheckOut(_ context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.attendance[record.ID]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	if existing.Status != attendance.StatusCheckedIn {
		return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedOut
	}

	existing.Status = attendance.StatusCheckedOut
	existing.CheckOut = record.CheckOut
	existing.CheckOutLatitude = record.CheckOutLatitude
	existing.CheckOutLongitude = record.CheckOutLongitude
	existing.CheckOutDistance = record.CheckOutDistance
	existing.LocationValidated = record.LocationValidated
	existing.WorkedMinutes = record.WorkedMinutes
	existing.OvertimeMinutes = record.OvertimeMinutes
	existing.UpdatedAt = r.s.now().UTC()
	r.s.attendance[existing.ID] = existing
	return existing, nil
}

func (r attendanceRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	start, end = calendar.DateOf(start), calendar.DateOf(end)
	var out []attendance.AttendanceRecord
	for _, rec := range r.s.attendance {
		if rec.EmployeeID == employeeID && !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
