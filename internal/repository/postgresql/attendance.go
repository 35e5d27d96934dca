package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, institution_id, date, status, check_in, check_out,
	check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
	check_in_distance, check_out_distance, location_validated,
	worked_minutes, overtime_minutes, created_at, updated_at`

func scanAttendance(row rowScanner) (attendance.AttendanceRecord, error) {
	var att attendance.AttendanceRecord
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.InstitutionID, &att.Date, &att.Status, &att.CheckIn, &att.CheckOut,
		&att.CheckInLatitude, &att.CheckInLongitude, &att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.CheckInDistance, &att.CheckOutDistance, &att.LocationValidated,
		&att.WorkedMinutes, &att.OvertimeMinutes, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	att.Date = calendar.DateOf(att.Date)
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE employee_id = $1 AND date = $2`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, calendar.DateOf(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return &att, nil
}

// UpsertCheckIn implements attendance.AttendanceRepository. The conflict
// branch only fires for an absent record, so no row comes back when the
// employee already checked in.
func (a *attendanceRepository) UpsertCheckIn(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	if record.ID == "" {
		record.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO attendance_records (
			id, employee_id, institution_id, date, status, check_in,
			check_in_latitude, check_in_longitude, check_in_distance, location_validated,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET status = EXCLUDED.status,
			institution_id = EXCLUDED.institution_id,
			check_in = EXCLUDED.check_in,
			check_in_latitude = EXCLUDED.check_in_latitude,
			check_in_longitude = EXCLUDED.check_in_longitude,
			check_in_distance = EXCLUDED.check_in_distance,
			location_validated = EXCLUDED.location_validated,
			updated_at = NOW()
		WHERE attendance_records.status = 'absent'
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.InstitutionID,
		calendar.DateOf(record.Date),
		string(attendance.StatusCheckedIn),
		record.CheckIn,
		record.CheckInLatitude,
		record.CheckInLongitude,
		record.CheckInDistance,
		record.LocationValidated,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to upsert check-in: %w", err)
	}
	return saved, nil
}

// CompleteCheckOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) CompleteCheckOut(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET status = $2,
			check_out = $3,
			check_out_latitude = $4,
			check_out_longitude = $5,
			check_out_distance = $6,
			location_validated = $7,
			worked_minutes = $8,
			overtime_minutes = $9,
			updated_at = NOW()
		WHERE id = $1 AND status = 'checked_in'
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID,
		string(attendance.StatusCheckedOut),
		record.CheckOut,
		record.CheckOutLatitude,
		record.CheckOutLongitude,
		record.CheckOutDistance,
		record.LocationValidated,
		record.WorkedMinutes,
		record.OvertimeMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to complete check-out: %w", err)
	}
	return saved, nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`

	rows, err := q.Query(ctx, query, employeeID, calendar.DateOf(start), calendar.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, att)
	}
	return records, rows.Err()
}
