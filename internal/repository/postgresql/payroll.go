package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) payroll.OvertimeRepository {
	return &overtimeRepository{db: db}
}

// ListByEmployeeAndRange implements payroll.OvertimeRepository.
func (r *overtimeRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]payroll.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, calculated_pay, status, created_at
		FROM overtime_requests
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, id
	`

	rows, err := q.Query(ctx, query, employeeID, calendar.DateOf(start), calendar.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	var out []payroll.OvertimeRequest
	for rows.Next() {
		var o payroll.OvertimeRequest
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.Date, &o.CalculatedPay, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		o.Date = calendar.DateOf(o.Date)
		out = append(out, o)
	}
	return out, rows.Err()
}

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) payroll.SummaryRepository {
	return &summaryRepository{db: db}
}

const summaryColumns = `
	employee_id, year, month, days_in_month, days_present, leave_days, lop_days,
	days_not_marked, ledger_lop_days, total_hours_worked, overtime_hours,
	monthly_salary, per_day_salary, gross_salary, total_deductions, overtime_pay,
	overtime_estimate, net_pay, attendance_percentage, warnings, computed_at`

func scanSummary(row rowScanner) (payroll.EmployeePayrollSummary, error) {
	var (
		s     payroll.EmployeePayrollSummary
		month int
	)
	err := row.Scan(
		&s.EmployeeID, &s.Year, &month, &s.DaysInMonth, &s.DaysPresent, &s.LeaveDays, &s.LOPDays,
		&s.DaysNotMarked, &s.LedgerLOPDays, &s.TotalHoursWorked, &s.OvertimeHours,
		&s.MonthlySalary, &s.PerDaySalary, &s.GrossSalary, &s.TotalDeductions, &s.OvertimePay,
		&s.OvertimeEstimate, &s.NetPay, &s.AttendancePercentage, &s.Warnings, &s.ComputedAt,
	)
	if err != nil {
		return payroll.EmployeePayrollSummary{}, err
	}
	s.Month = time.Month(month)
	return s, nil
}

// Upsert implements payroll.SummaryRepository.
func (r *summaryRepository) Upsert(ctx context.Context, s payroll.EmployeePayrollSummary) (payroll.EmployeePayrollSummary, error) {
	q := GetQuerier(ctx, r.db)

	warnings := s.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	query := `
		INSERT INTO payroll_summaries (` + summaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (employee_id, year, month) DO UPDATE
		SET days_in_month = EXCLUDED.days_in_month,
			days_present = EXCLUDED.days_present,
			leave_days = EXCLUDED.leave_days,
			lop_days = EXCLUDED.lop_days,
			days_not_marked = EXCLUDED.days_not_marked,
			ledger_lop_days = EXCLUDED.ledger_lop_days,
			total_hours_worked = EXCLUDED.total_hours_worked,
			overtime_hours = EXCLUDED.overtime_hours,
			monthly_salary = EXCLUDED.monthly_salary,
			per_day_salary = EXCLUDED.per_day_salary,
			gross_salary = EXCLUDED.gross_salary,
			total_deductions = EXCLUDED.total_deductions,
			overtime_pay = EXCLUDED.overtime_pay,
			overtime_estimate = EXCLUDED.overtime_estimate,
			net_pay = EXCLUDED.net_pay,
			attendance_percentage = EXCLUDED.attendance_percentage,
			warnings = EXCLUDED.warnings,
			computed_at = EXCLUDED.computed_at
		RETURNING ` + summaryColumns

	saved, err := scanSummary(q.QueryRow(ctx, query,
		s.EmployeeID, s.Year, int(s.Month), s.DaysInMonth, s.DaysPresent, s.LeaveDays, s.LOPDays,
		s.DaysNotMarked, s.LedgerLOPDays, s.TotalHoursWorked, s.OvertimeHours,
		s.MonthlySalary, s.PerDaySalary, s.GrossSalary, s.TotalDeductions, s.OvertimePay,
		s.OvertimeEstimate, s.NetPay, s.AttendancePercentage, warnings, s.ComputedAt,
	))
	if err != nil {
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to upsert payroll summary: %w", err)
	}
	return saved, nil
}

// Get implements payroll.SummaryRepository.
func (r *summaryRepository) Get(ctx context.Context, employeeID string, year int, month time.Month) (payroll.EmployeePayrollSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + ` FROM payroll_summaries WHERE employee_id = $1 AND year = $2 AND month = $3`

	s, err := scanSummary(q.QueryRow(ctx, query, employeeID, year, int(month)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.EmployeePayrollSummary{}, payroll.ErrSummaryNotFound
		}
		return payroll.EmployeePayrollSummary{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	return s, nil
}
