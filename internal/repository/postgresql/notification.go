package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates the outbox of emitted events.
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// CreateBatch inserts events with a single multi-row statement.
func (r *notificationRepository) CreateBatch(ctx context.Context, events []notification.Event) error {
	if len(events) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const columns = 9
	valueStrings := make([]string, 0, len(events))
	valueArgs := make([]interface{}, 0, len(events)*columns)

	for i, e := range events {
		if e.ID == "" {
			e.ID = uuid.Must(uuid.NewV7()).String()
		}

		dataJSON, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}

		base := i * columns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		valueArgs = append(valueArgs,
			e.ID,
			e.RecipientID,
			e.ActorID,
			string(e.Type),
			e.SubjectID,
			e.Title,
			e.Message,
			dataJSON,
			e.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO notification_events (id, recipient_id, actor_id, type, subject_id, title, message, data, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notification events: %w", err)
	}
	return nil
}

// ListByRecipient returns the newest events first.
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notification.Event, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, recipient_id, actor_id, type, subject_id, title, message, data, created_at
		FROM notification_events
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification events: %w", err)
	}
	defer rows.Close()

	var events []notification.Event
	for rows.Next() {
		var (
			e        notification.Event
			dataJSON []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.RecipientID,
			&e.ActorID,
			&e.Type,
			&e.SubjectID,
			&e.Title,
			&e.Message,
			&dataJSON,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification event: %w", err)
		}
		if dataJSON != nil {
			if err := json.Unmarshal(dataJSON, &e.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
