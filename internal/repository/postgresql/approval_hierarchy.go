package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type approvalHierarchyRepositoryImpl struct {
	db *database.DB
}

func NewApprovalHierarchyRepository(db *database.DB) leave.ApprovalHierarchyRepository {
	return &approvalHierarchyRepositoryImpl{db: db}
}

// ListEdges implements leave.ApprovalHierarchyRepository.
func (r *approvalHierarchyRepositoryImpl) ListEdges(ctx context.Context, applicantPositionID string) ([]leave.ApprovalHierarchyEdge, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, applicant_position_id, approver_position_id, stage, sequence
		FROM approval_hierarchy_edges
		WHERE applicant_position_id = $1 OR applicant_position_id IS NULL
		ORDER BY sequence, id
	`

	rows, err := q.Query(ctx, query, applicantPositionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval hierarchy edges: %w", err)
	}
	defer rows.Close()

	var edges []leave.ApprovalHierarchyEdge
	for rows.Next() {
		var e leave.ApprovalHierarchyEdge
		if err := rows.Scan(
			&e.ID,
			&e.ApplicantPositionID,
			&e.ApproverPositionID,
			&e.Stage,
			&e.Sequence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval hierarchy edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
