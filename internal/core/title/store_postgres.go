// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package title provides the PostgreSQL implementation for the title store.

Conventions:

  - Soft delete: every read filters 'deletedat IS NULL'. This is applied
    consistently across all queries in the content domain.
  - Window counts: list queries use COUNT(*) OVER() to avoid a second
    round-trip for pagination totals.
  - Counters: chaptercount is overwritten from the live chapter rows in a
    single statement so the repair operation is idempotent.
*/
package title

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/database/schema"
)

// # PostgreSQL Repository

// titleRepository implements the [TitleRepository] interface using pgx.
type titleRepository struct {
	pool *pgxpool.Pool
}

// NewTitleRepository constructs a PostgreSQL backed title store.
func NewTitleRepository(pool *pgxpool.Pool) TitleRepository {
	return &titleRepository{pool: pool}
}

/*
List returns a filtered page of live titles with genres hydrated.

Description: The main query resolves pagination totals via a window
function; genres for the returned page are fetched in one follow-up
query keyed by the page's title IDs.
*/
func (repository *titleRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error) {

	// Query construction
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s,
			t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s,
			COUNT(*) OVER() AS total_count
		FROM %s t
		WHERE t.%s IS NULL
	`,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Slug, schema.CoreTitle.Author,
		schema.CoreTitle.Artist, schema.CoreTitle.Synopsis, schema.CoreTitle.Status, schema.CoreTitle.CoverURL,
		schema.CoreTitle.LikeCount, schema.CoreTitle.DislikeCount, schema.CoreTitle.ViewCount,
		schema.CoreTitle.ChapterCount, schema.CoreTitle.UploaderID, schema.CoreTitle.CreatedAt, schema.CoreTitle.UpdatedAt,
		schema.CoreTitle.Table,
		schema.CoreTitle.DeletedAt,
	))

	// Optional filter injection
	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.Status, argID))
		args = append(args, string(filter.Status))
		argID++
	}

	if filter.UploaderID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.UploaderID, argID))
		args = append(args, filter.UploaderID)
		argID++
	}

	if len(filter.GenreIDs) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM %s tg WHERE tg.%s = t.%s AND tg.%s = ANY($%d))",
			schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID, schema.CoreTitle.ID,
			schema.CoreTitleGenre.GenreID, argID))
		args = append(args, filter.GenreIDs)
		argID++
	}

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s ILIKE $%d", schema.CoreTitle.Name, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	// Ordering and pagination limits
	sortDir := "DESC"
	if strings.ToLower(filter.SortDir) == "asc" {
		sortDir = "ASC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.%s %s", schema.CoreTitle.CreatedAt, sortDir))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list titles: %w", err)
	}
	defer rows.Close()

	// Entity hydration
	var titles []*Title
	var totalCount int

	for rows.Next() {
		var title Title
		err := rows.Scan(
			&title.ID, &title.Name, &title.Slug, &title.Author,
			&title.Artist, &title.Synopsis, &title.Status, &title.CoverURL,
			&title.LikeCount, &title.DislikeCount, &title.ViewCount,
			&title.ChapterCount, &title.UploaderID, &title.CreatedAt, &title.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan title: %w", err)
		}
		titles = append(titles, &title)
	}

	if err := repository.attachGenres(context, titles); err != nil {
		return nil, 0, err
	}

	return titles, totalCount, nil
}

/*
FindByID returns the live title with the given ID, genres included.

Returns:
  - *Title: The hydrated domain entity
  - error: apperr.NotFound on absent or soft-deleted rows
*/
func (repository *titleRepository) FindByID(context context.Context, id string) (*Title, error) {

	query := fmt.Sprintf(`
		SELECT
			%s, %s, %s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Slug, schema.CoreTitle.Author,
		schema.CoreTitle.Artist, schema.CoreTitle.Synopsis, schema.CoreTitle.Status, schema.CoreTitle.CoverURL,
		schema.CoreTitle.LikeCount, schema.CoreTitle.DislikeCount, schema.CoreTitle.ViewCount,
		schema.CoreTitle.ChapterCount, schema.CoreTitle.UploaderID, schema.CoreTitle.CreatedAt, schema.CoreTitle.UpdatedAt,
		schema.CoreTitle.Table,
		schema.CoreTitle.ID, schema.CoreTitle.DeletedAt,
	)

	var title Title
	err := repository.pool.QueryRow(context, query, id).Scan(
		&title.ID, &title.Name, &title.Slug, &title.Author,
		&title.Artist, &title.Synopsis, &title.Status, &title.CoverURL,
		&title.LikeCount, &title.DislikeCount, &title.ViewCount,
		&title.ChapterCount, &title.UploaderID, &title.CreatedAt, &title.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Title")
		}
		return nil, fmt.Errorf("postgres: failed to find title by id: %w", err)
	}

	titles := []*Title{&title}
	if err := repository.attachGenres(context, titles); err != nil {
		return nil, err
	}

	return &title, nil
}

/*
Create persists a new title and its genre junction rows in one transaction.
*/
func (repository *titleRepository) Create(context context.Context, title *Title) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin title create: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		schema.CoreTitle.Table,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Slug,
		schema.CoreTitle.Author, schema.CoreTitle.Artist, schema.CoreTitle.Synopsis,
		schema.CoreTitle.Status, schema.CoreTitle.CoverURL, schema.CoreTitle.UploaderID,
	)

	_, err = transaction.Exec(context, insertQuery,
		title.ID, title.Name, title.Slug,
		title.Author, title.Artist, title.Synopsis,
		string(title.Status), title.CoverURL, title.UploaderID,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create title: %w", err)
	}

	if err := replaceGenres(context, transaction, title.ID, title.GenreIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit title create: %w", err)
	}

	return nil
}

/*
Update applies a partial-field update.

Description: Builds the SET clause dynamically from the non-nil fields of
the input. A nil GenreIDs slice leaves the junction rows untouched.
*/
func (repository *titleRepository) Update(context context.Context, id string, input UpdateInput) error {

	var setClauses []string
	var args []any
	argID := 1

	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if input.Name != nil {
		appendSet(schema.CoreTitle.Name, *input.Name)
	}
	if input.Author != nil {
		appendSet(schema.CoreTitle.Author, *input.Author)
	}
	if input.Artist != nil {
		appendSet(schema.CoreTitle.Artist, *input.Artist)
	}
	if input.Synopsis != nil {
		appendSet(schema.CoreTitle.Synopsis, *input.Synopsis)
	}
	if input.Status != nil {
		appendSet(schema.CoreTitle.Status, string(*input.Status))
	}
	if input.CoverURL != nil {
		appendSet(schema.CoreTitle.CoverURL, *input.CoverURL)
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin title update: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	if len(setClauses) > 0 {
		setClauses = append(setClauses, fmt.Sprintf("%s = NOW()", schema.CoreTitle.UpdatedAt))

		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d AND %s IS NULL",
			schema.CoreTitle.Table,
			strings.Join(setClauses, ", "),
			schema.CoreTitle.ID, argID,
			schema.CoreTitle.DeletedAt,
		)
		args = append(args, id)

		result, err := transaction.Exec(context, query, args...)
		if err != nil {
			return fmt.Errorf("postgres: failed to update title: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperr.NotFound("Title")
		}
	}

	if input.GenreIDs != nil {
		if err := replaceGenres(context, transaction, id, input.GenreIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit title update: %w", err)
	}

	return nil
}

/*
SoftDelete hides a title record by stamping deletedat.
*/
func (repository *titleRepository) SoftDelete(context context.Context, id string) error {

	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreTitle.Table, schema.CoreTitle.DeletedAt, schema.CoreTitle.ID, schema.CoreTitle.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete title: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}

	return nil
}

/*
IncrementViewCount atomically updates a title's view counter.
*/
func (repository *titleRepository) IncrementViewCount(context context.Context, id string, delta int64) error {

	// Direct atomic increment to stay correct under concurrent readers
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1 WHERE %s = $2`,
		schema.CoreTitle.Table, schema.CoreTitle.ViewCount, schema.CoreTitle.ViewCount, schema.CoreTitle.ID)

	_, err := repository.pool.Exec(context, query, delta, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to increment title view count: %w", err)
	}

	return nil
}

/*
ReconcileChapterCount overwrites chaptercount from the live chapter rows.

Description: Recompute and overwrite in one statement. The subquery counts
only non-deleted chapters, so chapters removed via soft delete stop being
counted the moment they are flagged.
*/
func (repository *titleRepository) ReconcileChapterCount(context context.Context, id string) (int64, error) {

	query := fmt.Sprintf(`
		UPDATE %s SET %s = (
			SELECT COUNT(*) FROM %s c
			WHERE c.%s = $1 AND c.%s IS NULL
		)
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CoreTitle.Table, schema.CoreTitle.ChapterCount,
		schema.CoreChapter.Table,
		schema.CoreChapter.TitleID, schema.CoreChapter.DeletedAt,
		schema.CoreTitle.ID,
		schema.CoreTitle.ChapterCount,
	)

	var count int64
	err := repository.pool.QueryRow(context, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("Title")
		}
		return 0, fmt.Errorf("postgres: failed to reconcile chapter count: %w", err)
	}

	return count, nil
}

// # Internal Helpers

// attachGenres hydrates the Genres slice for a page of titles in one query.
func (repository *titleRepository) attachGenres(context context.Context, titles []*Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(titles))
	byID := make(map[string]*Title, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	query := fmt.Sprintf(`
		SELECT tg.%s, g.%s, g.%s, g.%s
		FROM %s tg
		JOIN %s g ON g.%s = tg.%s
		WHERE tg.%s = ANY($1)
		ORDER BY g.%s ASC
	`,
		schema.CoreTitleGenre.TitleID, schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreTitleGenre.Table,
		schema.CoreGenre.Table, schema.CoreGenre.ID, schema.CoreTitleGenre.GenreID,
		schema.CoreTitleGenre.TitleID,
		schema.CoreGenre.Name,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return fmt.Errorf("postgres: failed to load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var titleID string
		var genre Genre
		if err := rows.Scan(&titleID, &genre.ID, &genre.Name, &genre.Slug); err != nil {
			return fmt.Errorf("postgres: failed to scan title genre: %w", err)
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, genre)
		}
	}

	return nil
}

// replaceGenres rewrites the genre junction rows for a title inside tx.
func replaceGenres(context context.Context, transaction pgx.Tx, titleID string, genreIDs []string) error {

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID)

	if _, err := transaction.Exec(context, deleteQuery, titleID); err != nil {
		return fmt.Errorf("postgres: failed to clear title genres: %w", err)
	}

	if len(genreIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID, schema.CoreTitleGenre.GenreID)

	for _, genreID := range genreIDs {
		batch.Queue(insertQuery, titleID, genreID)
	}

	result := transaction.SendBatch(context, batch)
	defer result.Close()

	for range genreIDs {
		if _, err := result.Exec(); err != nil {
			return fmt.Errorf("postgres: failed to insert title genre: %w", err)
		}
	}

	return nil
}
