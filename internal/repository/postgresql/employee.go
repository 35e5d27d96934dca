package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, full_name, applicant_type, institution_id, position_id, manager_id, join_date,
	monthly_salary, hourly_rate, overtime_multiplier, normal_working_hours,
	employment_status, created_at, updated_at`

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var (
		e     employee.Employee
		hours decimal.NullDecimal
	)
	err := row.Scan(
		&e.ID,
		&e.FullName,
		&e.ApplicantType,
		&e.InstitutionID,
		&e.PositionID,
		&e.ManagerID,
		&e.JoinDate,
		&e.MonthlySalary,
		&e.HourlyRate,
		&e.OvertimeMultiplier,
		&hours,
		&e.EmploymentStatus,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	if hours.Valid {
		e.NormalWorkingHours = &hours.Decimal
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employment_status = 'active' ORDER BY id`
	return r.list(ctx, query)
}

// ListByPosition implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByPosition(ctx context.Context, positionID string) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = 'active' AND position_id = $1
		ORDER BY id`
	return r.list(ctx, query, positionID)
}

func (r *employeeRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
