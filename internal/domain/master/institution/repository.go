package institution

import "context"

type InstitutionRepository interface {
	GetByID(ctx context.Context, id string) (Institution, error)
}
