// Copyright (c) 2026 Mangetsu. All rights reserved.

package notification

import (
	"context"
	"log/slog"

	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates notification emission and the user's feed.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new notification [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Emission

/*
Emit stores a notification unless an equivalent one already exists
inside the dedup window.

Description: Callers treat Emit as fire and forget; every error path
here is logged and swallowed so the triggering action never fails
because of its notification. Self-notifications (actor == recipient)
are skipped by the caller, not here.

Parameters:
  - context: context.Context
  - notification: *Notification (ID is assigned if empty)
*/
func (service *Service) Emit(context context.Context, notification *Notification) {

	duplicate, err := service.repo.ExistsRecent(context,
		notification.Type, notification.UserID, notification.ActorID,
		notification.TargetKind, notification.TargetID,
		constants.NotificationDedupWindow,
	)
	if err != nil {
		service.logger.Error("notification_dedup_check_failed",
			slog.String("user_id", notification.UserID),
			slog.String("error", err.Error()),
		)
		return
	}
	if duplicate {
		return
	}

	if notification.ID == "" {
		notification.ID = uuidv7.New()
	}

	if err := service.repo.Create(context, notification); err != nil {
		service.logger.Error("notification_create_failed",
			slog.String("user_id", notification.UserID),
			slog.String("type", string(notification.Type)),
			slog.String("error", err.Error()),
		)
		return
	}

	service.logger.Info("notification_emitted",
		slog.String("notification_id", notification.ID),
		slog.String("user_id", notification.UserID),
		slog.String("type", string(notification.Type)),
	)
}

// # Feed

/*
ListNotifications returns a user's feed, newest first.
*/
func (service *Service) ListNotifications(context context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return service.repo.ListByUser(context, userID, unreadOnly, limit, offset)
}

/*
MarkRead flags one of the user's notifications as read.
*/
func (service *Service) MarkRead(context context.Context, userID, id string) error {
	return service.repo.MarkRead(context, userID, id)
}

/*
MarkAllRead flags the user's whole feed as read.
*/
func (service *Service) MarkAllRead(context context.Context, userID string) error {
	return service.repo.MarkAllRead(context, userID)
}

// # Cascade Cleanup

/*
DeleteByTarget removes all notifications referencing a deleted entity.
Satisfies the purger contract consumed by the content domain.
*/
func (service *Service) DeleteByTarget(context context.Context, targetKind, targetID string) error {
	return service.repo.DeleteByTarget(context, targetKind, targetID)
}
