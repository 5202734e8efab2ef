// Copyright (c) 2026 Mangetsu. All rights reserved.

package notification

import (
	"context"
	"time"
)

// # Notification Data Access

// Repository defines the data access contract for notifications.
type Repository interface {

	/*
		Create persists a new notification.
	*/
	Create(context context.Context, notification *Notification) error

	/*
		ExistsRecent reports whether an equivalent notification (same
		type, actor, recipient, target) was stored inside the window.
	*/
	ExistsRecent(context context.Context, notificationType Type, userID, actorID, targetKind, targetID string, window time.Duration) (bool, error)

	/*
		ListByUser returns a user's notifications, newest first.
	*/
	ListByUser(context context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error)

	/*
		MarkRead flags one notification as read. Scoped by recipient so a
		user can never mark someone else's entry.
	*/
	MarkRead(context context.Context, userID, id string) error

	/*
		MarkAllRead flags all of a user's notifications as read.
	*/
	MarkAllRead(context context.Context, userID string) error

	/*
		DeleteByTarget removes every notification referencing a target.
		Used as cascade cleanup when the target entity is deleted.
	*/
	DeleteByTarget(context context.Context, targetKind, targetID string) error
}
