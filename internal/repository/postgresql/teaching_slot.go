package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgtype"
)

type teachingSlotRepositoryImpl struct {
	db *database.DB
}

func NewTeachingSlotRepository(db *database.DB) schedule.TeachingSlotRepository {
	return &teachingSlotRepositoryImpl{db: db}
}

// ListByOfficer implements schedule.TeachingSlotRepository.
func (r *teachingSlotRepositoryImpl) ListByOfficer(ctx context.Context, officerID string) ([]schedule.TeachingSlot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, officer_id, institution_id, day_of_week, start_time, end_time, hours, subject, created_at, updated_at
		FROM teaching_slots
		WHERE officer_id = $1
		ORDER BY day_of_week, start_time, id
	`

	rows, err := q.Query(ctx, query, officerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teaching slots: %w", err)
	}
	defer rows.Close()

	var slots []schedule.TeachingSlot
	for rows.Next() {
		var (
			s          schedule.TeachingSlot
			start, end pgtype.Time
		)
		if err := rows.Scan(
			&s.ID,
			&s.OfficerID,
			&s.InstitutionID,
			&s.DayOfWeek,
			&start,
			&end,
			&s.Hours,
			&s.Subject,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan teaching slot: %w", err)
		}
		s.StartTime = clockTime(start)
		s.EndTime = clockTime(end)
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// clockTime places a TIME column on the zero date.
func clockTime(t pgtype.Time) time.Time {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(t.Microseconds) * time.Microsecond)
}
