package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type calendarRepositoryImpl struct {
	db *database.DB
}

func NewCalendarRepository(db *database.DB) calendar.Repository {
	return &calendarRepositoryImpl{db: db}
}

// ListByRange implements calendar.Repository.
func (r *calendarRepositoryImpl) ListByRange(ctx context.Context, ref calendar.Ref, start, end time.Time) ([]calendar.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, scope, scope_id, date, type, description, created_at, updated_at
		FROM calendar_entries
		WHERE scope_key = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, ref.Key(), calendar.DateOf(start), calendar.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar entries: %w", err)
	}
	defer rows.Close()

	var entries []calendar.Entry
	for rows.Next() {
		var e calendar.Entry
		if err := rows.Scan(
			&e.ID,
			&e.Scope,
			&e.ScopeID,
			&e.Date,
			&e.Type,
			&e.Description,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calendar entry: %w", err)
		}
		e.Date = calendar.DateOf(e.Date)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert implements calendar.Repository.
func (r *calendarRepositoryImpl) Upsert(ctx context.Context, entry calendar.Entry) (calendar.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO calendar_entries (id, scope, scope_id, scope_key, date, type, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (scope_key, date) DO UPDATE
		SET type = EXCLUDED.type, description = EXCLUDED.description, updated_at = NOW()
		RETURNING id, scope, scope_id, date, type, description, created_at, updated_at
	`

	var saved calendar.Entry
	err := q.QueryRow(ctx, query,
		entry.ID,
		string(entry.Scope),
		entry.ScopeID,
		entry.Ref().Key(),
		calendar.DateOf(entry.Date),
		string(entry.Type),
		entry.Description,
	).Scan(
		&saved.ID,
		&saved.Scope,
		&saved.ScopeID,
		&saved.Date,
		&saved.Type,
		&saved.Description,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return calendar.Entry{}, fmt.Errorf("failed to upsert calendar entry: %w", err)
	}
	saved.Date = calendar.DateOf(saved.Date)
	return saved, nil
}
