package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/domain/notification"
)

type notificationRepo struct{ q querier }

const notificationColumns = `id, recipient_id, recipient_type, title, message, type,
	data, is_read, dispatched_at, created_at`

func (r *notificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO notifications (
			id, recipient_id, recipient_type, title, message, type,
			data, is_read, dispatched_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		n.ID, n.RecipientID, n.RecipientType, n.Title, n.Message, n.Type,
		data, n.IsRead, n.DispatchedAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*notification.Notification, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE recipient_id = $1 ORDER BY created_at`,
		recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireAffected(res, notification.ErrNotificationNotFound)
}

func (r *notificationRepo) ListUndispatched(ctx context.Context, limit int) ([]*notification.Notification, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE dispatched_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list undispatched notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepo) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET dispatched_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification dispatched: %w", err)
	}
	return requireAffected(res, notification.ErrNotificationNotFound)
}

func collectNotifications(rows *sql.Rows) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	var data []byte
	var dispatched sql.NullTime
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.RecipientType, &n.Title, &n.Message, &n.Type,
		&data, &n.IsRead, &dispatched, &n.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notification.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("unmarshal notification data: %w", err)
		}
	}
	n.DispatchedAt = timePtr(dispatched)
	return &n, nil
}
