package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveApplicationColumns = `
	id, applicant_id, applicant_type, start_date, end_date, leave_type, reason,
	leave_dates, total_days, paid_days, lop_days, status, stage, chain, approvals,
	applied_at, decided_by, decided_at, rejection_reason, cancelled_by, cancelled_at,
	version, created_at, updated_at`

func scanLeaveApplication(row rowScanner) (leave.LeaveApplication, error) {
	var (
		app                     leave.LeaveApplication
		chainJSON, approvalJSON []byte
	)
	err := row.Scan(
		&app.ID, &app.ApplicantID, &app.ApplicantType, &app.StartDate, &app.EndDate, &app.LeaveType, &app.Reason,
		&app.LeaveDates, &app.TotalDays, &app.PaidDays, &app.LOPDays, &app.Status, &app.Stage, &chainJSON, &approvalJSON,
		&app.AppliedAt, &app.DecidedBy, &app.DecidedAt, &app.RejectionReason, &app.CancelledBy, &app.CancelledAt,
		&app.Version, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveApplication{}, err
	}
	if err := json.Unmarshal(chainJSON, &app.Chain); err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("failed to unmarshal approval chain: %w", err)
	}
	if err := json.Unmarshal(approvalJSON, &app.Approvals); err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("failed to unmarshal approvals: %w", err)
	}

	app.StartDate = calendar.DateOf(app.StartDate)
	app.EndDate = calendar.DateOf(app.EndDate)
	for i, d := range app.LeaveDates {
		app.LeaveDates[i] = calendar.DateOf(d)
	}
	return app, nil
}

func marshalWorkflow(app leave.LeaveApplication) (chainJSON, approvalJSON []byte, err error) {
	chain := app.Chain
	if chain == nil {
		chain = []leave.ChainStep{}
	}
	approvals := app.Approvals
	if approvals == nil {
		approvals = []leave.Approval{}
	}
	if chainJSON, err = json.Marshal(chain); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal approval chain: %w", err)
	}
	if approvalJSON, err = json.Marshal(approvals); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal approvals: %w", err)
	}
	return chainJSON, approvalJSON, nil
}

// Create implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	if app.ID == "" {
		app.ID = uuid.Must(uuid.NewV7()).String()
	}
	chainJSON, approvalJSON, err := marshalWorkflow(app)
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	query := `
		INSERT INTO leave_applications (
			id, applicant_id, applicant_type, start_date, end_date, leave_type, reason,
			leave_dates, total_days, paid_days, lop_days, status, stage, chain, approvals,
			applied_at, decided_by, decided_at, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1, NOW(), NOW()
		)
		RETURNING ` + leaveApplicationColumns

	saved, err := scanLeaveApplication(q.QueryRow(ctx, query,
		app.ID,
		app.ApplicantID,
		string(app.ApplicantType),
		app.StartDate,
		app.EndDate,
		string(app.LeaveType),
		app.Reason,
		app.LeaveDates,
		app.TotalDays,
		app.PaidDays,
		app.LOPDays,
		string(app.Status),
		string(app.Stage),
		chainJSON,
		approvalJSON,
		app.AppliedAt,
		app.DecidedBy,
		app.DecidedAt,
	))
	if err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("failed to create leave application: %w", err)
	}
	return saved, nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + ` FROM leave_applications WHERE id = $1`

	app, err := scanLeaveApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveApplication{}, leave.ErrApplicationNotFound
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to get leave application: %w", err)
	}
	return app, nil
}

// ListByApplicant implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListByApplicant(ctx context.Context, applicantID string, statuses ...leave.Status) ([]leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"applicant_id = $1"}
	args := []interface{}{applicantID}

	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		args = append(args, values)
		whereClauses = append(whereClauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s
		FROM leave_applications
		WHERE %s
		ORDER BY applied_at, id`, leaveApplicationColumns, strings.Join(whereClauses, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		app, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// UpdateIfVersion implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) UpdateIfVersion(ctx context.Context, app leave.LeaveApplication, expectedVersion int) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	chainJSON, approvalJSON, err := marshalWorkflow(app)
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	query := `
		UPDATE leave_applications
		SET leave_dates = $3,
			total_days = $4,
			paid_days = $5,
			lop_days = $6,
			status = $7,
			stage = $8,
			chain = $9,
			approvals = $10,
			decided_by = $11,
			decided_at = $12,
			rejection_reason = $13,
			cancelled_by = $14,
			cancelled_at = $15,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + leaveApplicationColumns

	saved, err := scanLeaveApplication(q.QueryRow(ctx, query,
		app.ID,
		expectedVersion,
		app.LeaveDates,
		app.TotalDays,
		app.PaidDays,
		app.LOPDays,
		string(app.Status),
		string(app.Stage),
		chainJSON,
		approvalJSON,
		app.DecidedBy,
		app.DecidedAt,
		app.RejectionReason,
		app.CancelledBy,
		app.CancelledAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, app.ID); errors.Is(getErr, leave.ErrApplicationNotFound) {
				return leave.LeaveApplication{}, leave.ErrApplicationNotFound
			}
			return leave.LeaveApplication{}, leave.ErrConcurrentModification
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to update leave application: %w", err)
	}
	return saved, nil
}
