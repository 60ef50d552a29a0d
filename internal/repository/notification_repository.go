package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/persistence"
)

// NotificationRepository encapsulates notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const notificationColumns = `id, recipient_id, kind, title, body, entity_id, read_at, created_at`

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, kind, title, body, entity_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db(ctx).QueryRow(ctx, query,
		notification.RecipientID,
		notification.Kind,
		notification.Title,
		notification.Body,
		notification.EntityID,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var notification domain.Notification
	const query = `SELECT ` + notificationColumns + ` FROM notifications WHERE id=$1`
	if err := scanNotification(r.db(ctx).QueryRow(ctx, query, id), &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := "recipient_id=$1"
	if unreadOnly {
		where += " AND read_at IS NULL"
	}
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		notificationColumns, where, limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := scanNotification(rows, &notification); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `UPDATE notifications SET read_at=NOW() WHERE id=$1 AND recipient_id=$2 AND read_at IS NULL`
	cmd, err := r.db(ctx).Exec(ctx, query, id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	const query = `UPDATE notifications SET read_at=NOW() WHERE recipient_id=$1 AND read_at IS NULL`
	cmd, err := r.db(ctx).Exec(ctx, query, recipientID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func scanNotification(row pgx.Row, notification *domain.Notification) error {
	return row.Scan(
		&notification.ID,
		&notification.RecipientID,
		&notification.Kind,
		&notification.Title,
		&notification.Body,
		&notification.EntityID,
		&notification.ReadAt,
		&notification.CreatedAt,
	)
}
