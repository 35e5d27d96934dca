package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type substituteAssignmentRepositoryImpl struct {
	db *database.DB
}

func NewSubstituteAssignmentRepository(db *database.DB) leave.SubstituteAssignmentRepository {
	return &substituteAssignmentRepositoryImpl{db: db}
}

// CreateBatch implements leave.SubstituteAssignmentRepository.
func (r *substituteAssignmentRepositoryImpl) CreateBatch(ctx context.Context, assignments []leave.SubstituteAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const columns = 8
	valueStrings := make([]string, 0, len(assignments))
	valueArgs := make([]interface{}, 0, len(assignments)*columns)

	for i, a := range assignments {
		if a.ID == "" {
			a.ID = uuid.Must(uuid.NewV7()).String()
		}
		status := a.Status
		if status == "" {
			status = leave.AssignmentStatusActive
		}

		base := i * columns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW(), NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		valueArgs = append(valueArgs,
			a.ID,
			a.ApplicationID,
			a.SlotID,
			a.OriginalOfficerID,
			a.SubstituteOfficerID,
			calendar.DateOf(a.Date),
			a.Hours,
			string(status),
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO substitute_assignments (
			id, application_id, slot_id, original_officer_id, substitute_officer_id,
			date, hours, status, created_at, updated_at
		) VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create substitute assignments: %w", err)
	}
	return nil
}

// ListByApplication implements leave.SubstituteAssignmentRepository.
func (r *substituteAssignmentRepositoryImpl) ListByApplication(ctx context.Context, applicationID string) ([]leave.SubstituteAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, application_id, slot_id, original_officer_id, substitute_officer_id,
			   date, hours, status, created_at, updated_at
		FROM substitute_assignments
		WHERE application_id = $1
		ORDER BY date, slot_id
	`

	rows, err := q.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list substitute assignments: %w", err)
	}
	defer rows.Close()

	var out []leave.SubstituteAssignment
	for rows.Next() {
		var a leave.SubstituteAssignment
		if err := rows.Scan(
			&a.ID,
			&a.ApplicationID,
			&a.SlotID,
			&a.OriginalOfficerID,
			&a.SubstituteOfficerID,
			&a.Date,
			&a.Hours,
			&a.Status,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan substitute assignment: %w", err)
		}
		a.Date = calendar.DateOf(a.Date)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReleaseByApplication implements leave.SubstituteAssignmentRepository.
func (r *substituteAssignmentRepositoryImpl) ReleaseByApplication(ctx context.Context, applicationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE substitute_assignments
		SET status = 'released', updated_at = NOW()
		WHERE application_id = $1 AND status = 'active'
	`

	if _, err := q.Exec(ctx, query, applicationID); err != nil {
		return fmt.Errorf("failed to release substitute assignments: %w", err)
	}
	return nil
}
