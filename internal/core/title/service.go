// Copyright (c) 2026 Mangetsu. All rights reserved.

package title

import (
	"context"
	"log/slog"

	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/platform/validate"
	"github.com/mangetsu-app/mangetsu/pkg/slice"
	"github.com/mangetsu-app/mangetsu/pkg/slug"
	"github.com/mangetsu-app/mangetsu/pkg/uuidv7"
)

// # Service Layer

// NotificationPurger removes notifications referencing a deleted target.
// Implemented by the social notification store; declared here to keep the
// content domain free of a direct dependency on the social packages.
type NotificationPurger interface {
	DeleteByTarget(context context.Context, targetKind, targetID string) error
}

// Service orchestrates the business logic for the title catalogue.
// It is the write path for title metadata and the owner of the
// chapter-count reconciliation entry point.
type Service struct {
	titleRepo TitleRepository
	purger    NotificationPurger
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
// purger may be nil; cascade cleanup is then skipped.
func NewService(titleRepo TitleRepository, purger NotificationPurger, logger *slog.Logger) *Service {
	return &Service{
		titleRepo: titleRepo,
		purger:    purger,
		logger:    logger,
	}
}

// # Title Lookups

/*
ListTitles retrieves a paginated and filtered collection of titles.

Parameters:
  - context: context.Context
  - filter: Filter (Criteria for status, genre, uploader, search)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Title: Slice of matching records
  - int: Total count of records matching the filter
  - error: System or repository level errors
*/
func (service *Service) ListTitles(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error) {
	return service.titleRepo.List(context, filter, limit, offset)
}

/*
GetTitle fetches a single title record by UUID.

Returns:
  - *Title: The hydrated domain entity
  - error: apperr.NotFound if no live match exists
*/
func (service *Service) GetTitle(context context.Context, id string) (*Title, error) {
	return service.titleRepo.FindByID(context, id)
}

// # Title Management

/*
CreateTitle initialises a new publication record owned by the caller.

Description: Requires at least uploader privileges. Performs business
validation on the metadata, generates a UUID v7 identity and an
SEO-friendly slug, then persists. The caller becomes the record owner.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (The authenticated caller)
  - title: *Title (The entity to be persisted)

Returns:
  - error: Authorization, validation or persistence errors
*/
func (service *Service) CreateTitle(context context.Context, claims *sec.AuthClaims, title *Title) error {

	// Privilege gate: only uploaders and above publish content
	if err := sec.Authorize(claims, "", sec.RoleUploader); err != nil {
		return err
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldName, title.Name).MaxLen(FieldName, title.Name, 500)

	// Lifecycle state validation
	validator.Required(FieldStatus, string(title.Status)).OneOf(FieldStatus, string(title.Status),
		string(StatusOngoing),
		string(StatusCompleted),
		string(StatusHiatus),
		string(StatusCancelled),
	)

	if err := validator.Err(); err != nil {
		return err
	}

	// Identity & slug generation
	if title.ID == "" {
		title.ID = uuidv7.New()
	}
	if title.Slug == "" {
		title.Slug = slug.From(title.Name)
	}
	title.UploaderID = claims.UserID
	title.GenreIDs = slice.Filter(title.GenreIDs, func(id string) bool { return id != "" })

	if err := service.titleRepo.Create(context, title); err != nil {
		return err
	}

	service.logger.Info("title_created",
		slog.String("title_id", title.ID),
		slog.String("name", title.Name),
		slog.String("uploader_id", title.UploaderID),
	)

	return nil
}

/*
UpdateTitle applies a partial update to an existing title.

Description: The caller must be the record owner or hold at least
moderator privileges. Only non-nil fields of the input are written.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims
  - id: string (UUID)
  - input: UpdateInput

Returns:
  - error: Authorization, validation or persistence errors
*/
func (service *Service) UpdateTitle(context context.Context, claims *sec.AuthClaims, id string, input UpdateInput) error {

	existing, err := service.titleRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	// Ownership gate: owner or moderator and above
	if err := sec.Authorize(claims, existing.UploaderID, sec.RoleModerator); err != nil {
		return err
	}

	// Integrity validation for updated fields
	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 500)
	}
	if input.Status != nil {
		validator.OneOf(FieldStatus, string(*input.Status),
			string(StatusOngoing),
			string(StatusCompleted),
			string(StatusHiatus),
			string(StatusCancelled),
		)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.titleRepo.Update(context, id, input); err != nil {
		return err
	}

	service.logger.Info("title_updated", slog.String("title_id", id))

	return nil
}

/*
DeleteTitle soft-deletes a title and starts the dependent cleanup.

Description: The row is flagged, never removed. Chapters of a deleted
title stop being visible because every chapter read joins the live
parent. Notification cleanup is best effort: a failure there is logged
and does not undo the delete.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims
  - id: string (UUID)

Returns:
  - error: Authorization or persistence errors
*/
func (service *Service) DeleteTitle(context context.Context, claims *sec.AuthClaims, id string) error {

	existing, err := service.titleRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := sec.Authorize(claims, existing.UploaderID, sec.RoleModerator); err != nil {
		return err
	}

	if err := service.titleRepo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("title_deleted",
		slog.String("title_id", id),
		slog.String("actor_id", claims.UserID),
	)

	// Best-effort dependent cleanup
	if service.purger != nil {
		if err := service.purger.DeleteByTarget(context, "title", id); err != nil {
			service.logger.Error("title_notification_cleanup_failed",
				slog.String("title_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// # Counters

/*
RegisterView bumps the title's view counter by one.

Description: Fire-and-forget semantics at the HTTP layer; errors are
returned so callers can choose whether to surface them.
*/
func (service *Service) RegisterView(context context.Context, id string) error {
	return service.titleRepo.IncrementViewCount(context, id, 1)
}

/*
ReconcileChapterCount recomputes the stored chapter counter from the
live chapter rows and overwrites it.

Description: Idempotent. Used both as the automatic follow-up to
chapter creation and deletion and as a standalone repair operation
exposed to staff.

Returns:
  - int64: The recomputed count
  - error: apperr.NotFound if the title is absent
*/
func (service *Service) ReconcileChapterCount(context context.Context, id string) (int64, error) {

	count, err := service.titleRepo.ReconcileChapterCount(context, id)
	if err != nil {
		return 0, err
	}

	service.logger.Info("chapter_count_reconciled",
		slog.String("title_id", id),
		slog.Int64("chapter_count", count),
	)

	return count, nil
}
