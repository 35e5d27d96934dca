package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// AggregateSource reduces an employee-month of attendance.
type AggregateSource interface {
	Compute(ctx context.Context, emp employee.Employee, year int, month time.Month) (attendance.MonthlyAggregate, error)
}

// LedgerReader derives an employee's leave ledger row for one month.
type LedgerReader interface {
	MonthBalance(ctx context.Context, emp employee.Employee, year int, month time.Month) (leave.LeaveBalance, error)
}

type Config struct {
	StandardDaysPerMonth int
	Concurrency          int
}

type PayrollServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	overtimeRepo payroll.OvertimeRepository
	summaryRepo  payroll.SummaryRepository
	aggregates   AggregateSource
	ledger       LedgerReader
	notifier     notification.Service
	config       Config
	logger       *slog.Logger
	now          func() time.Time

	inflight singleflight.Group
}

func NewPayrollService(
	employeeRepo employee.EmployeeRepository,
	overtimeRepo payroll.OvertimeRepository,
	summaryRepo payroll.SummaryRepository,
	aggregates AggregateSource,
	ledger LedgerReader,
	notifier notification.Service,
	cfg Config,
	logger *slog.Logger,
) *PayrollServiceImpl {
	if cfg.StandardDaysPerMonth <= 0 {
		cfg.StandardDaysPerMonth = payroll.DefaultStandardDaysPerMonth
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		employeeRepo: employeeRepo,
		overtimeRepo: overtimeRepo,
		summaryRepo:  summaryRepo,
		aggregates:   aggregates,
		ledger:       ledger,
		notifier:     notifier,
		config:       cfg,
		logger:       logger.With("component", "payroll"),
		now:          time.Now,
	}
}

// WithClock replaces the service clock.
func (s *PayrollServiceImpl) WithClock(now func() time.Time) *PayrollServiceImpl {
	s.now = now
	return s
}

// Recompute implements payroll.PayrollService.
func (s *PayrollServiceImpl) Recompute(ctx context.Context, req payroll.RecomputeRequest) (payroll.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SummaryResponse{}, err
	}
	summary, err := s.RecomputeEmployee(ctx, req.EmployeeID, req.Year, time.Month(req.Month))
	if err != nil {
		return payroll.SummaryResponse{}, err
	}
	return mapSummaryToResponse(summary), nil
}

// RecomputeEmployee derives one employee-month and writes it to the cache.
// Concurrent calls for the same employee-month share one computation, so
// their writes never interleave; different keys proceed in parallel.
func (s *PayrollServiceImpl) RecomputeEmployee(ctx context.Context, employeeID string, year int, month time.Month) (payroll.EmployeePayrollSummary, error) {
	key := fmt.Sprintf("%s:%04d-%02d", employeeID, year, int(month))
	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		return s.recompute(ctx, employeeID, year, month)
	})
	if err != nil {
		return payroll.EmployeePayrollSummary{}, err
	}
	return v.(payroll.EmployeePayrollSummary), nil
}

func (s *PayrollServiceImpl) recompute(ctx context.Context, employeeID string, year int, month time.Month) (payroll.EmployeePayrollSummary, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.EmployeePayrollSummary{}, err
	}
	if !emp.JoinedBy(year, month) {
		return payroll.EmployeePayrollSummary{}, payroll.ErrEmployeeNotJoined
	}

	agg, err := s.aggregates.Compute(ctx, emp, year, month)
	if err != nil {
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to aggregate attendance: %w", err)
	}
	balance, err := s.ledger.MonthBalance(ctx, emp, year, month)
	if err != nil {
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to derive leave balance: %w", err)
	}
	start, end := calendar.MonthRange(year, month)
	overtime, err := s.overtimeRepo.ListByEmployeeAndRange(ctx, emp.ID, start, end)
	if err != nil {
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	summary, err := Compute(ComputeInput{
		Employee:     emp,
		Year:         year,
		Month:        month,
		StandardDays: s.config.StandardDaysPerMonth,
		Attendance:   agg,
		Balance:      balance,
		Overtime:     overtime,
	})
	if err != nil {
		return payroll.EmployeePayrollSummary{}, err
	}

	for _, w := range summary.Warnings {
		s.logger.Warn("payroll data-integrity warning",
			"employee_id", emp.ID, "year", year, "month", int(month), "warning", w)
	}

	previous, err := s.summaryRepo.Get(ctx, emp.ID, year, month)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, payroll.ErrSummaryNotFound) {
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to load payroll summary: %w", err)
	}

	computedAt := s.now().UTC()
	summary.ComputedAt = &computedAt
	saved, err := s.summaryRepo.Upsert(ctx, summary)
	if err != nil {
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to save payroll summary: %w", err)
	}

	// Scheduled runs recompute unchanged months; only a moved figure is news.
	if s.notifier != nil && hadPrevious && payChanged(previous, saved) {
		err := s.notifier.Queue(ctx, notification.CreateEventRequest{
			RecipientID: emp.ID,
			Type:        notification.TypePayrollRecomputed,
			SubjectID:   fmt.Sprintf("%04d-%02d", year, int(month)),
			Title:       "Payroll updated",
			Message:     fmt.Sprintf("Your payroll for %04d-%02d was recomputed: net pay %s", year, int(month), saved.NetPay.StringFixed(2)),
			Data: map[string]interface{}{
				"net_pay":           saved.NetPay.StringFixed(2),
				"previous_net_pay":  previous.NetPay.StringFixed(2),
				"lop_days":          saved.LOPDays,
				"previous_lop_days": previous.LOPDays,
			},
		})
		if err != nil {
			s.logger.Warn("failed to queue payroll notification", "employee_id", emp.ID, "error", err)
		}
	}
	return saved, nil
}

func payChanged(previous, current payroll.EmployeePayrollSummary) bool {
	return !previous.NetPay.Equal(current.NetPay) || previous.LOPDays != current.LOPDays
}

// RecomputeMonth implements payroll.PayrollService. One employee failing
// does not stop the others; failures are reported per employee.
func (s *PayrollServiceImpl) RecomputeMonth(ctx context.Context, req payroll.RecomputeMonthRequest) (payroll.RecomputeMonthResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecomputeMonthResponse{}, err
	}
	year, month := req.Year, time.Month(req.Month)

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return payroll.RecomputeMonthResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	resp := payroll.RecomputeMonthResponse{Year: year, Month: req.Month}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, emp := range employees {
		if !emp.JoinedBy(year, month) {
			resp.Skipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := s.RecomputeEmployee(gctx, emp.ID, year, month)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("payroll recompute failed", "employee_id", emp.ID, "year", year, "month", int(month), "error", err)
				resp.Failures = append(resp.Failures, payroll.RecomputeFailure{EmployeeID: emp.ID, Error: err.Error()})
				return nil
			}
			resp.Recomputed++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return resp, err
	}

	s.logger.Info("payroll month recomputed",
		"year", year, "month", int(month), "recomputed", resp.Recomputed, "skipped", resp.Skipped, "failed", len(resp.Failures))
	return resp, nil
}

// GetSummary implements payroll.PayrollService. A month with no cached
// summary is computed on demand.
func (s *PayrollServiceImpl) GetSummary(ctx context.Context, req payroll.GetSummaryRequest) (payroll.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SummaryResponse{}, err
	}
	summary, err := s.summaryRepo.Get(ctx, req.EmployeeID, req.Year, time.Month(req.Month))
	if errors.Is(err, payroll.ErrSummaryNotFound) {
		summary, err = s.RecomputeEmployee(ctx, req.EmployeeID, req.Year, time.Month(req.Month))
	}
	if err != nil {
		return payroll.SummaryResponse{}, err
	}
	return mapSummaryToResponse(summary), nil
}

func mapSummaryToResponse(s payroll.EmployeePayrollSummary) payroll.SummaryResponse {
	var computedAt *string
	if s.ComputedAt != nil {
		v := s.ComputedAt.UTC().Format(time.RFC3339)
		computedAt = &v
	}
	return payroll.SummaryResponse{
		EmployeeID:           s.EmployeeID,
		Year:                 s.Year,
		Month:                int(s.Month),
		DaysInMonth:          s.DaysInMonth,
		DaysPresent:          s.DaysPresent,
		LeaveDays:            s.LeaveDays,
		LOPDays:              s.LOPDays,
		DaysNotMarked:        s.DaysNotMarked,
		TotalHoursWorked:     s.TotalHoursWorked.StringFixed(2),
		OvertimeHours:        s.OvertimeHours.StringFixed(2),
		MonthlySalary:        s.MonthlySalary.StringFixed(2),
		PerDaySalary:         s.PerDaySalary.StringFixed(2),
		GrossSalary:          s.GrossSalary.StringFixed(2),
		TotalDeductions:      s.TotalDeductions.StringFixed(2),
		OvertimePay:          s.OvertimePay.StringFixed(2),
		OvertimeEstimate:     s.OvertimeEstimate.StringFixed(2),
		NetPay:               s.NetPay.StringFixed(2),
		AttendancePercentage: s.AttendancePercentage.StringFixed(2),
		Warnings:             s.Warnings,
		ComputedAt:           computedAt,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)
