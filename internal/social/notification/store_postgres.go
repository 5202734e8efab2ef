// Copyright (c) 2026 Mangetsu. All rights reserved.

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/database/schema"
	"github.com/mangetsu-app/mangetsu/internal/platform/dberr"
)

// # PostgreSQL Repository

// notificationRepository implements [Repository] using pgx.
type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs a PostgreSQL backed notification store.
func NewNotificationRepository(pool *pgxpool.Pool) Repository {
	return &notificationRepository{pool: pool}
}

func (repository *notificationRepository) Create(context context.Context, notification *Notification) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		schema.SocialNotification.Table,
		schema.SocialNotification.ID, schema.SocialNotification.UserID, schema.SocialNotification.ActorID,
		schema.SocialNotification.Type, schema.SocialNotification.Title, schema.SocialNotification.Message,
		schema.SocialNotification.TargetKind, schema.SocialNotification.TargetID,
	)

	_, err := repository.pool.Exec(context, query,
		notification.ID, notification.UserID, notification.ActorID,
		string(notification.Type), notification.Title, notification.Message,
		notification.TargetKind, notification.TargetID,
	)
	if err != nil {
		return dberr.Wrap(err, "create_notification")
	}

	return nil
}

/*
ExistsRecent checks the dedup window.

Description: The (type, recipient, actor, target) tuple identifies an
"equivalent" notification. Entries older than the window do not count.
*/
func (repository *notificationRepository) ExistsRecent(context context.Context, notificationType Type, userID, actorID, targetKind, targetID string, window time.Duration) (bool, error) {

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE %s = $1 AND %s = $2 AND %s = $3 AND %s = $4 AND %s = $5
			  AND %s > NOW() - $6::interval
		)
	`,
		schema.SocialNotification.Table,
		schema.SocialNotification.Type, schema.SocialNotification.UserID, schema.SocialNotification.ActorID,
		schema.SocialNotification.TargetKind, schema.SocialNotification.TargetID,
		schema.SocialNotification.CreatedAt,
	)

	var exists bool
	err := repository.pool.QueryRow(context, query,
		string(notificationType), userID, actorID, targetKind, targetID, window,
	).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "check_recent_notification")
	}

	return exists, nil
}

func (repository *notificationRepository) ListByUser(context context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {

	unreadClause := ""
	if unreadOnly {
		unreadClause = fmt.Sprintf(" AND %s = FALSE", schema.SocialNotification.IsRead)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s = $1%s
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3
	`,
		schema.SocialNotification.ID, schema.SocialNotification.UserID, schema.SocialNotification.ActorID,
		schema.SocialNotification.Type, schema.SocialNotification.Title, schema.SocialNotification.Message,
		schema.SocialNotification.TargetKind, schema.SocialNotification.TargetID,
		schema.SocialNotification.IsRead, schema.SocialNotification.CreatedAt,
		schema.SocialNotification.Table,
		schema.SocialNotification.UserID, unreadClause,
		schema.SocialNotification.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_notifications")
	}
	defer rows.Close()

	var notifications []*Notification
	var totalCount int

	for rows.Next() {
		var notification Notification
		err := rows.Scan(
			&notification.ID, &notification.UserID, &notification.ActorID,
			&notification.Type, &notification.Title, &notification.Message,
			&notification.TargetKind, &notification.TargetID,
			&notification.IsRead, &notification.CreatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_notification")
		}
		notifications = append(notifications, &notification)
	}

	return notifications, totalCount, nil
}

func (repository *notificationRepository) MarkRead(context context.Context, userID, id string) error {

	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2`,
		schema.SocialNotification.Table, schema.SocialNotification.IsRead,
		schema.SocialNotification.ID, schema.SocialNotification.UserID)

	result, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return dberr.Wrap(err, "mark_notification_read")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Notification")
	}

	return nil
}

func (repository *notificationRepository) MarkAllRead(context context.Context, userID string) error {

	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE`,
		schema.SocialNotification.Table, schema.SocialNotification.IsRead,
		schema.SocialNotification.UserID, schema.SocialNotification.IsRead)

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return dberr.Wrap(err, "mark_all_notifications_read")
	}

	return nil
}

func (repository *notificationRepository) DeleteByTarget(context context.Context, targetKind, targetID string) error {

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialNotification.Table,
		schema.SocialNotification.TargetKind, schema.SocialNotification.TargetID)

	if _, err := repository.pool.Exec(context, query, targetKind, targetID); err != nil {
		return dberr.Wrap(err, "delete_notifications_by_target")
	}

	return nil
}
