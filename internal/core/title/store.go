// Copyright (c) 2026 Mangetsu. All rights reserved.

package title

import "context"

// # Title Data Access

// TitleRepository defines the data access contract for titles.
type TitleRepository interface {

	/*
		List returns a filtered page of live titles.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Title: Hydrated titles (genres included)
		  - int: Total matching titles
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error)

	/*
		FindByID returns the live title with the given ID.

		Returns:
		  - *Title: Hydrated entity
		  - error: apperr.NotFound if absent or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Title, error)

	/*
		Create persists a new title and its genre junction rows.
	*/
	Create(context context.Context, title *Title) error

	/*
		Update applies a partial-field update. Nil pointers in input leave
		the stored column untouched.
	*/
	Update(context context.Context, id string, input UpdateInput) error

	/*
		SoftDelete marks a title as deleted (flag + timestamp) without
		physical row removal.
	*/
	SoftDelete(context context.Context, id string) error

	/*
		IncrementViewCount atomically bumps the view counter.
	*/
	IncrementViewCount(context context.Context, id string, delta int64) error

	/*
		ReconcileChapterCount recomputes chaptercount from the live chapter
		rows referencing the title and overwrites the stored counter.

		Description: Single idempotent UPDATE; running it twice in a row is
		a no-op. This is both the automatic side effect of chapter
		create/delete and the out-of-band repair operation.

		Returns:
		  - int64: The recomputed chapter count
		  - error: apperr.NotFound if the title is absent, or storage failures
	*/
	ReconcileChapterCount(context context.Context, id string) (int64, error)
}
