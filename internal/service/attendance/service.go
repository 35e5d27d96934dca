package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/geo"
	calendarsvc "github.com/cmlabs-hris/payroll-engine/internal/service/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalendarLoader loads the resolver of one calendar over a date range.
type CalendarLoader interface {
	LoadResolver(ctx context.Context, ref calendar.Ref, start, end time.Time) (*calendarsvc.Resolver, error)
}

// LedgerReader derives an employee's leave ledger row for one month.
type LedgerReader interface {
	MonthBalance(ctx context.Context, emp employee.Employee, year int, month time.Month) (leave.LeaveBalance, error)
}

type Config struct {
	DefaultLocation    *time.Location
	NormalWorkingHours decimal.Decimal
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	institution.InstitutionRepository
	calendars CalendarLoader
	ledger    LedgerReader
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	institutionRepo institution.InstitutionRepository,
	calendars CalendarLoader,
	ledger LedgerReader,
	cfg Config,
	logger *slog.Logger,
) *AttendanceServiceImpl {
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	if !cfg.NormalWorkingHours.IsPositive() {
		cfg.NormalWorkingHours = employee.DefaultNormalWorkingHours
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		AttendanceRepository:  attendanceRepo,
		EmployeeRepository:    employeeRepo,
		InstitutionRepository: institutionRepo,
		calendars:             calendars,
		ledger:                ledger,
		config:                cfg,
		logger:                logger.With("component", "attendance"),
		now:                   time.Now,
	}
}

// WithClock replaces the service clock.
func (s *AttendanceServiceImpl) WithClock(now func() time.Time) *AttendanceServiceImpl {
	s.now = now
	return s
}

// site is where an employee checks in: the institution's fence and timezone.
type site struct {
	institutionID *string
	fence         geo.Fence
	location      *time.Location
}

func (s *AttendanceServiceImpl) siteOf(ctx context.Context, emp employee.Employee) (site, error) {
	st := site{location: s.config.DefaultLocation}
	if emp.InstitutionID == nil || *emp.InstitutionID == "" {
		return st, nil
	}
	inst, err := s.InstitutionRepository.GetByID(ctx, *emp.InstitutionID)
	if err != nil {
		return site{}, fmt.Errorf("failed to get institution: %w", err)
	}
	st.institutionID = &inst.ID
	st.fence = inst.Fence()
	st.location = inst.Location(s.config.DefaultLocation)
	return st, nil
}

func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if emp.EmploymentStatus != employee.EmploymentStatusActive {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// checkFence validates a reported position. skip_gps is only honoured when
// the fence is not enforced; an enabled fence always measures.
func checkFence(fence geo.Fence, lat, lng *float64, skip bool) (geo.Result, error) {
	var pos *geo.Point
	if lat != nil && lng != nil {
		pos = &geo.Point{Latitude: *lat, Longitude: *lng}
	}
	return geo.Validate(fence, pos, skip && !fence.Enabled)
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	st, err := s.siteOf(ctx, emp)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	res, err := checkFence(st.fence, req.Latitude, req.Longitude, req.SkipGPS)
	if err != nil {
		s.logger.Info("check-in rejected by geofence", "employee_id", emp.ID, "error", err)
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := s.now().UTC()
	// Date is the working day in the site's timezone, not a UTC timestamp.
	date := calendar.DateOf(nowUTC.In(st.location))

	record, err := s.AttendanceRepository.UpsertCheckIn(ctx, attendance.AttendanceRecord{
		ID:                uuid.Must(uuid.NewV7()).String(),
		EmployeeID:        emp.ID,
		InstitutionID:     st.institutionID,
		Date:              date,
		Status:            attendance.StatusCheckedIn,
		CheckIn:           &nowUTC,
		CheckInLatitude:   req.Latitude,
		CheckInLongitude:  req.Longitude,
		CheckInDistance:   res.Distance,
		LocationValidated: res.Validated(),
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapRecordToResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	st, err := s.siteOf(ctx, emp)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	res, err := checkFence(st.fence, req.Latitude, req.Longitude, req.SkipGPS)
	if err != nil {
		s.logger.Info("check-out rejected by geofence", "employee_id", emp.ID, "error", err)
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := s.now().UTC()
	date := calendar.DateOf(nowUTC.In(st.location))

	record, err := s.openRecord(ctx, emp.ID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	worked := attendance.WorkedMinutesBetween(record.CheckIn, &nowUTC)
	overtime := attendance.OvertimeMinutesFor(worked, attendance.NormMinutes(emp.WorkingHoursNorm(s.config.NormalWorkingHours)))

	record.Status = attendance.StatusCheckedOut
	record.CheckOut = &nowUTC
	record.CheckOutLatitude = req.Latitude
	record.CheckOutLongitude = req.Longitude
	record.CheckOutDistance = res.Distance
	if v := res.Validated(); v != nil {
		record.LocationValidated = v
	}
	record.WorkedMinutes = &worked
	record.OvertimeMinutes = &overtime

	saved, err := s.AttendanceRepository.CompleteCheckOut(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return mapRecordToResponse(saved), nil
}

// openRecord finds the record a check-out closes: today's, or yesterday's
// when a shift ran past midnight and was never closed.
func (s *AttendanceServiceImpl) openRecord(ctx context.Context, employeeID string, date time.Time) (attendance.AttendanceRecord, error) {
	today, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if today != nil {
		switch today.Status {
		case attendance.StatusCheckedIn:
			return *today, nil
		case attendance.StatusCheckedOut:
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.AttendanceRecord{}, attendance.ErrNotCheckedIn
	}

	prev, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date.AddDate(0, 0, -1))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if prev != nil && prev.Status == attendance.StatusCheckedIn {
		return *prev, nil
	}
	return attendance.AttendanceRecord{}, attendance.ErrNotCheckedIn
}

// Compute aggregates one employee-month from stored records, the governing
// calendar and the leave ledger.
func (s *AttendanceServiceImpl) Compute(ctx context.Context, emp employee.Employee, year int, month time.Month) (attendance.MonthlyAggregate, error) {
	st, err := s.siteOf(ctx, emp)
	if err != nil {
		return attendance.MonthlyAggregate{}, err
	}
	start, end := calendar.MonthRange(year, month)

	resolver, err := s.calendars.LoadResolver(ctx, emp.CalendarRef(), start, end)
	if err != nil {
		return attendance.MonthlyAggregate{}, err
	}
	records, err := s.AttendanceRepository.ListByEmployeeAndRange(ctx, emp.ID, start, end)
	if err != nil {
		return attendance.MonthlyAggregate{}, fmt.Errorf("failed to list attendance records: %w", err)
	}
	balance, err := s.ledger.MonthBalance(ctx, emp, year, month)
	if err != nil {
		return attendance.MonthlyAggregate{}, err
	}

	return Aggregate(AggregateInput{
		EmployeeID:  emp.ID,
		Year:        year,
		Month:       month,
		Today:       calendar.DateOf(s.now().In(st.location)),
		JoinDate:    emp.JoinDate,
		NormMinutes: attendance.NormMinutes(emp.WorkingHoursNorm(s.config.NormalWorkingHours)),
		Calendar:    resolver,
		Records:     records,
		Allocations: balance.Allocations,
	}), nil
}

// MonthlyAggregate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthlyAggregate(ctx context.Context, req attendance.AggregateRequest) (attendance.AggregateResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AggregateResponse{}, err
	}
	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AggregateResponse{}, err
	}

	agg, err := s.Compute(ctx, emp, req.Year, time.Month(req.Month))
	if err != nil {
		return attendance.AggregateResponse{}, err
	}
	return mapAggregateToResponse(agg), nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func minutesPtrToHours(m *int) *string {
	if m == nil {
		return nil
	}
	h := attendance.MinutesToHours(*m).StringFixed(2)
	return &h
}

func mapRecordToResponse(r attendance.AttendanceRecord) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		Date:              r.Date.Format(calendar.DateLayout),
		Status:            string(r.Status),
		CheckInTime:       timePtrToString(r.CheckIn),
		CheckOutTime:      timePtrToString(r.CheckOut),
		CheckInLatitude:   r.CheckInLatitude,
		CheckInLongitude:  r.CheckInLongitude,
		CheckOutLatitude:  r.CheckOutLatitude,
		CheckOutLongitude: r.CheckOutLongitude,
		CheckInDistance:   r.CheckInDistance,
		CheckOutDistance:  r.CheckOutDistance,
		LocationValidated: r.LocationValidated,
		HoursWorked:       minutesPtrToHours(r.WorkedMinutes),
		OvertimeHours:     minutesPtrToHours(r.OvertimeMinutes),
	}
}

func mapAggregateToResponse(a attendance.MonthlyAggregate) attendance.AggregateResponse {
	days := make([]attendance.DailyStatusResponse, len(a.Days))
	for i, d := range a.Days {
		days[i] = attendance.DailyStatusResponse{
			Date:          d.Date.Format(calendar.DateLayout),
			Status:        string(d.Status),
			RecordID:      d.RecordID,
			ApplicationID: d.ApplicationID,
			HoursWorked:   attendance.MinutesToHours(d.WorkedMinutes).StringFixed(2),
			OvertimeHours: attendance.MinutesToHours(d.OvertimeMinutes).StringFixed(2),
		}
	}
	return attendance.AggregateResponse{
		EmployeeID:       a.EmployeeID,
		Year:             a.Year,
		Month:            int(a.Month),
		DaysInMonth:      a.DaysInMonth,
		PresentDays:      a.PresentDays,
		AbsentDays:       a.AbsentDays,
		LeaveDays:        a.LeaveDays,
		LOPDays:          a.LOPDays,
		NotMarkedDays:    a.NotMarkedDays,
		HolidayDays:      a.HolidayDays,
		WeekendDays:      a.WeekendDays,
		TotalHoursWorked: a.TotalHoursWorked().StringFixed(2),
		OvertimeHours:    a.OvertimeHours().StringFixed(2),
		Days:             days,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
