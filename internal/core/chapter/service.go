// Copyright (c) 2026 Mangetsu. All rights reserved.

package chapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mangetsu-app/mangetsu/internal/core/title"
	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/platform/validate"
	"github.com/mangetsu-app/mangetsu/internal/upload"
	"github.com/mangetsu-app/mangetsu/pkg/uuidv7"
)

// # Collaborator Contracts

// ParentCatalogue is the slice of the title service the chapter writer
// needs: parent existence checks and counter reconciliation.
type ParentCatalogue interface {
	GetTitle(context context.Context, id string) (*title.Title, error)
	ReconcileChapterCount(context context.Context, id string) (int64, error)
	RegisterView(context context.Context, id string) error
}

// PageIngestor uploads a batch of page images and reports their final
// URLs in input order, and discards stored objects whose owning record
// was never written. Implemented by the upload service.
type PageIngestor interface {
	IngestBatch(context context.Context, folder string, files []upload.File) ([]upload.Result, error)
	Discard(context context.Context, keys []string)
}

// NotificationPurger removes notifications referencing a deleted target.
type NotificationPurger interface {
	DeleteByTarget(context context.Context, targetKind, targetID string) error
}

// # Inputs

// CreateInput carries everything needed to publish a chapter: metadata
// plus the raw page payloads, in reading order.
type CreateInput struct {
	TitleID string
	Ordinal float64
	Name    string
	Volume  *int
	Pages   []upload.File
}

// # Service Layer

// Service orchestrates chapter publication. The write path is strictly
// ordered: conflict check, page upload, record write, counter repair.
// A conflict is detected before the first byte reaches storage, so a
// rejected ordinal never leaves orphan objects behind.
type Service struct {
	chapterRepo ChapterRepository
	titles      ParentCatalogue
	ingestor    PageIngestor
	purger      NotificationPurger
	logger      *slog.Logger
}

// NewService constructs a new chapter [Service].
// purger may be nil; cascade cleanup is then skipped.
func NewService(chapterRepo ChapterRepository, titles ParentCatalogue, ingestor PageIngestor, purger NotificationPurger, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		titles:      titles,
		ingestor:    ingestor,
		purger:      purger,
		logger:      logger,
	}
}

// # Chapter Lookups

/*
ListChapters retrieves the live chapters of a title, ordered by ordinal.
*/
func (service *Service) ListChapters(context context.Context, titleID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {
	return service.chapterRepo.ListByTitle(context, titleID, filter, limit, offset)
}

/*
GetChapter fetches a single chapter with its ordered page list.
*/
func (service *Service) GetChapter(context context.Context, id string) (*Chapter, error) {
	return service.chapterRepo.FindByID(context, id)
}

// # Chapter Publication

/*
CreateChapter publishes a new chapter under a title.

Description: The write sequence is deliberate:

 1. Authorize the caller (uploader role or above).
 2. Resolve the parent title; a deleted parent rejects the publish.
 3. Check the ordinal against live siblings. A conflict aborts here,
    before any page is uploaded.
 4. Upload the pages sequentially; the first failure aborts the batch
    and no chapter record is written. Already-uploaded objects stay in
    storage as unreferenced orphans.
 5. Persist the chapter and all pages in one transaction.
 6. Reconcile the parent's chapter counter. A failure here is logged
    and swallowed; the counter stays stale until the next repair pass.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (The authenticated caller)
  - input: CreateInput (Metadata plus raw page payloads)

Returns:
  - *Chapter: The published chapter with resolved page URLs
  - error: Authorization, validation, conflict, or persistence errors
*/
func (service *Service) CreateChapter(context context.Context, claims *sec.AuthClaims, input CreateInput) (*Chapter, error) {

	if err := sec.Authorize(claims, "", sec.RoleUploader); err != nil {
		return nil, err
	}

	// Metadata validation
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 500)
	validator.Custom(FieldOrdinal, input.Ordinal < 0, "ordinal must not be negative")
	validator.Custom(FieldPages, len(input.Pages) == 0, "a chapter needs at least one page")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Parent resolution; rejects deleted titles
	parent, err := service.titles.GetTitle(context, input.TitleID)
	if err != nil {
		return nil, err
	}

	// Ordinal conflict check happens before any storage call
	taken, err := service.chapterRepo.OrdinalTaken(context, input.TitleID, input.Ordinal, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict(fmt.Sprintf("Ordinal %g is already used by another chapter of this title", input.Ordinal))
	}

	// Sequential page upload, abort on first failure
	results, err := service.ingestor.IngestBatch(context, constants.FolderPages, input.Pages)
	if err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:         uuidv7.New(),
		TitleID:    parent.ID,
		Ordinal:    input.Ordinal,
		Name:       input.Name,
		Volume:     input.Volume,
		UploaderID: claims.UserID,
		Pages:      make([]*Page, 0, len(results)),
	}

	for index, result := range results {
		chapter.Pages = append(chapter.Pages, &Page{
			ID:         uuidv7.New(),
			ChapterID:  chapter.ID,
			PageNumber: index + 1,
			ImageURL:   result.URL,
			Width:      constants.PageDefaultWidth,
			Height:     constants.PageDefaultHeight,
		})
	}

	if err := service.chapterRepo.Create(context, chapter); err != nil {
		keys := make([]string, 0, len(results))
		for _, result := range results {
			keys = append(keys, result.Filename)
		}
		service.ingestor.Discard(context, keys)
		return nil, err
	}

	service.logger.Info("chapter_published",
		slog.String("chapter_id", chapter.ID),
		slog.String("title_id", parent.ID),
		slog.Float64("ordinal", chapter.Ordinal),
		slog.Int("pages", len(chapter.Pages)),
	)

	service.reconcileParent(context, parent.ID)

	return chapter, nil
}

/*
UpdateChapter applies a partial update to an existing chapter.

Description: The caller must own the chapter or hold at least moderator
privileges. An ordinal change is checked against live siblings excluding
the chapter itself.
*/
func (service *Service) UpdateChapter(context context.Context, claims *sec.AuthClaims, id string, input UpdateInput) error {

	existing, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := sec.Authorize(claims, existing.UploaderID, sec.RoleModerator); err != nil {
		return err
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 500)
	}
	if input.Ordinal != nil {
		validator.Custom(FieldOrdinal, *input.Ordinal < 0, "ordinal must not be negative")
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if input.Ordinal != nil && *input.Ordinal != existing.Ordinal {
		taken, err := service.chapterRepo.OrdinalTaken(context, existing.TitleID, *input.Ordinal, id)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(fmt.Sprintf("Ordinal %g is already used by another chapter of this title", *input.Ordinal))
		}
	}

	if err := service.chapterRepo.Update(context, id, input); err != nil {
		return err
	}

	service.logger.Info("chapter_updated", slog.String("chapter_id", id))

	return nil
}

/*
DeleteChapter soft-deletes a chapter and repairs the parent counter.

Description: The ordinal becomes free for reuse the moment the row is
flagged. Counter repair and notification cleanup are best effort.
*/
func (service *Service) DeleteChapter(context context.Context, claims *sec.AuthClaims, id string) error {

	existing, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := sec.Authorize(claims, existing.UploaderID, sec.RoleModerator); err != nil {
		return err
	}

	if err := service.chapterRepo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("chapter_deleted",
		slog.String("chapter_id", id),
		slog.String("title_id", existing.TitleID),
		slog.String("actor_id", claims.UserID),
	)

	service.reconcileParent(context, existing.TitleID)

	if service.purger != nil {
		if err := service.purger.DeleteByTarget(context, "chapter", id); err != nil {
			service.logger.Error("chapter_notification_cleanup_failed",
				slog.String("chapter_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// # Counters

/*
RegisterView bumps the chapter's view counter by one and propagates the
view to the parent title's counter.
*/
func (service *Service) RegisterView(context context.Context, chapter *Chapter) error {
	if err := service.chapterRepo.IncrementViewCount(context, chapter.ID, 1); err != nil {
		return err
	}

	return service.titles.RegisterView(context, chapter.TitleID)
}

// # Internal Helpers

// reconcileParent repairs the parent's chapter counter. Failures leave
// the counter stale until the next repair pass; the primary write has
// already succeeded, so the error is logged and swallowed.
func (service *Service) reconcileParent(context context.Context, titleID string) {
	if _, err := service.titles.ReconcileChapterCount(context, titleID); err != nil {
		service.logger.Error("chapter_count_reconcile_failed",
			slog.String("title_id", titleID),
			slog.String("error", err.Error()),
		)
	}
}
