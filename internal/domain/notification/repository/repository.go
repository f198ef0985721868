// Package repository provides persistence for in-app notifications.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification is an in-app message from one user to another. Records are
// append-only apart from the read flag.
type Notification struct {
	ID          uuid.UUID
	Type        string
	Message     string
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Read        bool
	CreatedAt   time.Time
}

// NotificationRepository persists and queries notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PostgresNotificationRepository implements NotificationRepository using PostgreSQL
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a new PostgreSQL notification repository
func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

// Create inserts a notification
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, type, message, sender_id, recipient_id, read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		n.ID,
		n.Type,
		n.Message,
		n.SenderID,
		n.RecipientID,
		n.Read,
	).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient retrieves a recipient's notifications, newest first
func (r *PostgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error) {
	query := `
		SELECT id, type, message, sender_id, recipient_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.Message,
			&n.SenderID,
			&n.RecipientID,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkAllRead flags every unread notification for the recipient as read
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`
	result, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteReadOlderThan removes read notifications created before the cutoff
func (r *PostgresNotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE read = TRUE AND created_at < $1`
	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return result.RowsAffected(), nil
}
