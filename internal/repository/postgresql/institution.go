package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type institutionRepositoryImpl struct {
	db *database.DB
}

func NewInstitutionRepository(db *database.DB) institution.InstitutionRepository {
	return &institutionRepositoryImpl{db: db}
}

// GetByID implements institution.InstitutionRepository.
func (r *institutionRepositoryImpl) GetByID(ctx context.Context, id string) (institution.Institution, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, radius_meters, gps_enabled, timezone, created_at, updated_at
		FROM institutions
		WHERE id = $1
	`

	var i institution.Institution
	err := q.QueryRow(ctx, query, id).Scan(
		&i.ID,
		&i.Name,
		&i.Latitude,
		&i.Longitude,
		&i.RadiusMeters,
		&i.GPSEnabled,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return institution.Institution{}, institution.ErrInstitutionNotFound
		}
		return institution.Institution{}, fmt.Errorf("failed to get institution: %w", err)
	}
	return i, nil
}
