// Copyright (c) 2026 Mangetsu. All rights reserved.

package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/database/schema"
	"github.com/mangetsu-app/mangetsu/internal/platform/dberr"
)

// # PostgreSQL Repository

// chapterRepository implements the [ChapterRepository] interface using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository constructs a PostgreSQL backed chapter store.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

/*
ListByTitle retrieves the live chapters linked to a title.

Description: Joins the parent title so chapters of a soft-deleted title
disappear from reads without any cascade write. Ordered by ordinal.
*/
func (repository *chapterRepository) ListByTitle(context context.Context, titleID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {

	sortDir := "ASC"
	if strings.ToLower(filter.SortDir) == "desc" {
		sortDir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			COUNT(*) OVER() AS total_count
		FROM %s c
		JOIN %s t ON t.%s = c.%s AND t.%s IS NULL
		WHERE c.%s = $1 AND c.%s IS NULL
		ORDER BY c.%s %s
		LIMIT $2 OFFSET $3
	`,
		schema.CoreChapter.ID, schema.CoreChapter.TitleID, schema.CoreChapter.Ordinal,
		schema.CoreChapter.Name, schema.CoreChapter.Volume,
		schema.CoreChapter.LikeCount, schema.CoreChapter.DislikeCount,
		schema.CoreChapter.ViewCount, schema.CoreChapter.UploaderID,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table,
		schema.CoreTitle.Table, schema.CoreTitle.ID, schema.CoreChapter.TitleID, schema.CoreTitle.DeletedAt,
		schema.CoreChapter.TitleID, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.Ordinal, sortDir,
	)

	rows, err := repository.pool.Query(context, query, titleID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	var totalCount int

	for rows.Next() {
		var chapter Chapter
		err := rows.Scan(
			&chapter.ID, &chapter.TitleID, &chapter.Ordinal,
			&chapter.Name, &chapter.Volume,
			&chapter.LikeCount, &chapter.DislikeCount,
			&chapter.ViewCount, &chapter.UploaderID,
			&chapter.CreatedAt, &chapter.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, &chapter)
	}

	return chapters, totalCount, nil
}

/*
FindByID returns the live chapter with its ordered page list.
*/
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {

	query := fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s
		FROM %s c
		JOIN %s t ON t.%s = c.%s AND t.%s IS NULL
		WHERE c.%s = $1 AND c.%s IS NULL
	`,
		schema.CoreChapter.ID, schema.CoreChapter.TitleID, schema.CoreChapter.Ordinal,
		schema.CoreChapter.Name, schema.CoreChapter.Volume,
		schema.CoreChapter.LikeCount, schema.CoreChapter.DislikeCount,
		schema.CoreChapter.ViewCount, schema.CoreChapter.UploaderID,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table,
		schema.CoreTitle.Table, schema.CoreTitle.ID, schema.CoreChapter.TitleID, schema.CoreTitle.DeletedAt,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	var chapter Chapter
	err := repository.pool.QueryRow(context, query, id).Scan(
		&chapter.ID, &chapter.TitleID, &chapter.Ordinal,
		&chapter.Name, &chapter.Volume,
		&chapter.LikeCount, &chapter.DislikeCount,
		&chapter.ViewCount, &chapter.UploaderID,
		&chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chapter")
		}
		return nil, fmt.Errorf("postgres: failed to find chapter by id: %w", err)
	}

	pages, err := repository.listPages(context, id)
	if err != nil {
		return nil, err
	}
	chapter.Pages = pages

	return &chapter, nil
}

/*
OrdinalTaken reports whether a live sibling occupies the ordinal.

Description: An empty excludeID means no sibling is excluded; the clause
is only added for a non-empty id, since the id column is a uuid and
cannot be compared against an empty string.
*/
func (repository *chapterRepository) OrdinalTaken(context context.Context, titleID string, ordinal float64, excludeID string) (bool, error) {

	query, args := ordinalTakenQuery(titleID, ordinal, excludeID)

	var taken bool
	err := repository.pool.QueryRow(context, query, args...).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to check ordinal: %w", err)
	}

	return taken, nil
}

// ordinalTakenQuery assembles the sibling existence check. The id column
// is a uuid, so the exclusion must never bind an empty string.
func ordinalTakenQuery(titleID string, ordinal float64, excludeID string) (string, []any) {

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE %s = $1 AND %s = $2 AND %s IS NULL
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.TitleID, schema.CoreChapter.Ordinal,
		schema.CoreChapter.DeletedAt,
	)

	args := []any{titleID, ordinal}
	if excludeID != "" {
		query += fmt.Sprintf("\t\t\tAND %s <> $3\n", schema.CoreChapter.ID)
		args = append(args, excludeID)
	}
	query += "\t\t)"

	return query, args
}

/*
Create persists the chapter row and its pages in one transaction.

Description: The partial unique index on (titleid, ordinal) over live
rows is the last line of defence against a concurrent create racing
past the service-level conflict check; a unique violation surfaces as
a conflict error.
*/
func (repository *chapterRepository) Create(context context.Context, chapter *Chapter) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin chapter create: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	insertChapter := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.TitleID, schema.CoreChapter.Ordinal,
		schema.CoreChapter.Name, schema.CoreChapter.Volume, schema.CoreChapter.UploaderID,
	)

	_, err = transaction.Exec(context, insertChapter,
		chapter.ID, chapter.TitleID, chapter.Ordinal,
		chapter.Name, chapter.Volume, chapter.UploaderID,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("Ordinal %g is already used by another chapter of this title", chapter.Ordinal))
		}
		return fmt.Errorf("postgres: failed to create chapter: %w", err)
	}

	if len(chapter.Pages) > 0 {
		batch := &pgx.Batch{}
		insertPage := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			schema.CorePage.Table,
			schema.CorePage.ID, schema.CorePage.ChapterID, schema.CorePage.PageNumber,
			schema.CorePage.ImageURL, schema.CorePage.Width, schema.CorePage.Height,
		)

		for _, page := range chapter.Pages {
			batch.Queue(insertPage, page.ID, chapter.ID, page.PageNumber, page.ImageURL, page.Width, page.Height)
		}

		result := transaction.SendBatch(context, batch)
		for index := range chapter.Pages {
			if _, err := result.Exec(); err != nil {
				_ = result.Close()
				return fmt.Errorf("postgres: failed to batch insert page %d: %w", index, err)
			}
		}
		if err := result.Close(); err != nil {
			return fmt.Errorf("postgres: failed to close page batch: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit chapter create: %w", err)
	}

	return nil
}

/*
Update applies a partial-field update to the chapter row.
*/
func (repository *chapterRepository) Update(context context.Context, id string, input UpdateInput) error {

	var setClauses []string
	var args []any
	argID := 1

	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if input.Name != nil {
		appendSet(schema.CoreChapter.Name, *input.Name)
	}
	if input.Ordinal != nil {
		appendSet(schema.CoreChapter.Ordinal, *input.Ordinal)
	}
	if input.Volume != nil {
		appendSet(schema.CoreChapter.Volume, *input.Volume)
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("%s = NOW()", schema.CoreChapter.UpdatedAt))

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d AND %s IS NULL",
		schema.CoreChapter.Table,
		strings.Join(setClauses, ", "),
		schema.CoreChapter.ID, argID,
		schema.CoreChapter.DeletedAt,
	)
	args = append(args, id)

	result, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Ordinal is already used by another chapter of this title")
		}
		return fmt.Errorf("postgres: failed to update chapter: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}

	return nil
}

/*
SoftDelete hides a chapter record and frees its ordinal.
*/
func (repository *chapterRepository) SoftDelete(context context.Context, id string) error {

	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table, schema.CoreChapter.DeletedAt, schema.CoreChapter.ID, schema.CoreChapter.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete chapter: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}

	return nil
}

/*
IncrementViewCount atomically updates a chapter's view counter.
*/
func (repository *chapterRepository) IncrementViewCount(context context.Context, id string, delta int64) error {

	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1 WHERE %s = $2`,
		schema.CoreChapter.Table, schema.CoreChapter.ViewCount, schema.CoreChapter.ViewCount, schema.CoreChapter.ID)

	_, err := repository.pool.Exec(context, query, delta, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to increment chapter view count: %w", err)
	}

	return nil
}

// # Internal Helpers

// listPages returns a chapter's pages ordered by position.
func (repository *chapterRepository) listPages(context context.Context, chapterID string) ([]*Page, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		schema.CorePage.ID, schema.CorePage.ChapterID, schema.CorePage.PageNumber,
		schema.CorePage.ImageURL, schema.CorePage.Width, schema.CorePage.Height,
		schema.CorePage.Table,
		schema.CorePage.ChapterID,
		schema.CorePage.PageNumber,
	)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		var page Page
		err := rows.Scan(&page.ID, &page.ChapterID, &page.PageNumber, &page.ImageURL, &page.Width, &page.Height)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan page: %w", err)
		}
		pages = append(pages, &page)
	}

	return pages, nil
}
