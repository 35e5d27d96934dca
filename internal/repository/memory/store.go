// Package memory holds in-process repository implementations used by tests
// and by the memory storage driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type dayKey struct {
	ownerID string
	date    time.Time
}

type monthKey struct {
	employeeID string
	year       int
	month      time.Month
}

// Store keeps every table in maps guarded by one lock. Repositories are
// views over the same Store so transactions can span them.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	employees    map[string]employee.Employee
	institutions map[string]institution.Institution
	slots        map[string]schedule.TeachingSlot

	calendarEntries map[string]map[time.Time]calendar.Entry // by Ref.Key()

	attendance      map[string]attendance.AttendanceRecord
	attendanceByDay map[dayKey]string

	applications map[string]leave.LeaveApplication
	assignments  map[string]leave.SubstituteAssignment
	edges        []leave.ApprovalHierarchyEdge

	overtime  map[string]payroll.OvertimeRequest
	summaries map[monthKey]payroll.EmployeePayrollSummary

	events []notification.Event

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		employees:       make(map[string]employee.Employee),
		institutions:    make(map[string]institution.Institution),
		slots:           make(map[string]schedule.TeachingSlot),
		calendarEntries: make(map[string]map[time.Time]calendar.Entry),
		attendance:      make(map[string]attendance.AttendanceRecord),
		attendanceByDay: make(map[dayKey]string),
		applications:    make(map[string]leave.LeaveApplication),
		assignments:     make(map[string]leave.SubstituteAssignment),
		overtime:        make(map[string]payroll.OvertimeRequest),
		summaries:       make(map[monthKey]payroll.EmployeePayrollSummary),
		now:             time.Now,
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type txMarker struct{}

// txJournal keeps the value each leave row had before a transaction first
// wrote it, so a rollback undoes only what the transaction touched.
type txJournal struct {
	applications map[string]*leave.LeaveApplication
	assignments  map[string]*leave.SubstituteAssignment
}

func journalFrom(ctx context.Context) *txJournal {
	j, _ := ctx.Value(txMarker{}).(*txJournal)
	return j
}

// Callers hold s.mu.
func (j *txJournal) application(s *Store, id string) {
	if j == nil {
		return
	}
	if _, seen := j.applications[id]; seen {
		return
	}
	if prev, ok := s.applications[id]; ok {
		j.applications[id] = &prev
	} else {
		j.applications[id] = nil
	}
}

// Callers hold s.mu.
func (j *txJournal) assignment(s *Store, id string) {
	if j == nil {
		return
	}
	if _, seen := j.assignments[id]; seen {
		return
	}
	if prev, ok := s.assignments[id]; ok {
		j.assignments[id] = &prev
	} else {
		j.assignments[id] = nil
	}
}

// WithinTransaction serializes transactions. When fn fails, the leave rows
// it wrote are put back; writes made outside the transaction are kept.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &txJournal{
		applications: map[string]*leave.LeaveApplication{},
		assignments:  map[string]*leave.SubstituteAssignment{},
	}
	if err := fn(context.WithValue(ctx, txMarker{}, j)); err != nil {
		s.mu.Lock()
		for id, prev := range j.applications {
			if prev == nil {
				delete(s.applications, id)
			} else {
				s.applications[id] = *prev
			}
		}
		for id, prev := range j.assignments {
			if prev == nil {
				delete(s.assignments, id)
			} else {
				s.assignments[id] = *prev
			}
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ database.Transactor = (*Store)(nil)

// =============================================================================
// SEEDING
// =============================================================================

func (s *Store) PutEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *Store) PutInstitution(i institution.Institution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.institutions[i.ID] = i
}

func (s *Store) PutTeachingSlot(slot schedule.TeachingSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.ID] = slot
}

func (s *Store) PutApprovalEdge(edge leave.ApprovalHierarchyEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, edge)
}

func (s *Store) PutOvertimeRequest(r payroll.OvertimeRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overtime[r.ID] = r
}

// PutAttendance stores a record as-is, replacing any record of the same
// employee and date.
func (s *Store) PutAttendance(r attendance.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Date = calendar.DateOf(r.Date)
	k := dayKey{ownerID: r.EmployeeID, date: r.Date}
	if old, ok := s.attendanceByDay[k]; ok {
		delete(s.attendance, old)
	}
	s.attendance[r.ID] = r
	s.attendanceByDay[k] = r.ID
}

// PutApplication stores an application as-is.
func (s *Store) PutApplication(app leave.LeaveApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = cloneApplication(app)
}

// =============================================================================
// VIEWS
// =============================================================================

func (s *Store) Employees() employee.EmployeeRepository { return employeeRepo{s} }

func (s *Store) Institutions() institution.InstitutionRepository { return institutionRepo{s} }

func (s *Store) TeachingSlots() schedule.TeachingSlotRepository { return slotRepo{s} }

func (s *Store) Calendar() calendar.Repository { return calendarRepo{s} }

func (s *Store) Attendance() attendance.AttendanceRepository { return attendanceRepo{s} }

func (s *Store) Applications() leave.LeaveApplicationRepository { return applicationRepo{s} }

func (s *Store) Assignments() leave.SubstituteAssignmentRepository { return assignmentRepo{s} }

func (s *Store) Hierarchy() leave.ApprovalHierarchyRepository { return hierarchyRepo{s} }

func (s *Store) Overtime() payroll.OvertimeRepository { return overtimeRepo{s} }

func (s *Store) Summaries() payroll.SummaryRepository { return summaryRepo{s} }

func (s *Store) Notifications() notification.Repository { return notificationRepo{s} }
