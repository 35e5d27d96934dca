package employee

import "context"

// EmployeeRepository is the read side of the employee profile.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	// ListByPosition returns active employees holding positionID.
	ListByPosition(ctx context.Context, positionID string) ([]Employee, error)
}
