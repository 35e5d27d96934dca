package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// PayrollJobs keeps the payroll summary cache of open months fresh.
type PayrollJobs struct {
	payrollService payroll.PayrollService
	interval       time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService, interval time.Duration, logger *slog.Logger) *PayrollJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		payrollService: payrollService,
		interval:       interval,
		logger:         logger.With("component", "cron"),
		now:            time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("recompute_payroll", j.interval, j.RecomputeOpenMonths)
}

// RecomputeOpenMonths recomputes the current month and the previous one,
// which still receives late check-outs and leave decisions.
func (j *PayrollJobs) RecomputeOpenMonths(ctx context.Context) error {
	now := j.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previous := current.AddDate(0, -1, 0)

	var errs []error
	for _, m := range []time.Time{previous, current} {
		resp, err := j.payrollService.RecomputeMonth(ctx, payroll.RecomputeMonthRequest{Year: m.Year(), Month: int(m.Month())})
		if err != nil {
			errs = append(errs, fmt.Errorf("recompute %s: %w", m.Format("2006-01"), err))
			continue
		}
		j.logger.Info("Cron: payroll recomputed",
			"period", m.Format("2006-01"),
			"recomputed", resp.Recomputed,
			"skipped", resp.Skipped,
			"failed", len(resp.Failures))
	}
	return errors.Join(errs...)
}
