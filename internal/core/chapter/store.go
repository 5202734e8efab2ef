// Copyright (c) 2026 Mangetsu. All rights reserved.

package chapter

import "context"

// # Chapter Data Access

// ChapterRepository defines the data access contract for chapters and
// their pages.
type ChapterRepository interface {

	/*
		ListByTitle returns the live chapters of a title, ordered by ordinal.

		Returns:
		  - []*Chapter: Chapters without page bodies (metadata only)
		  - int: Total matching chapters
		  - error: Storage failures
	*/
	ListByTitle(context context.Context, titleID string, filter Filter, limit, offset int) ([]*Chapter, int, error)

	/*
		FindByID returns the live chapter with its ordered page list.

		Returns:
		  - *Chapter: Hydrated entity including Pages
		  - error: apperr.NotFound if absent, soft-deleted, or under a
		    deleted title
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		OrdinalTaken reports whether a live sibling of the given title
		already occupies the ordinal. excludeID ignores one chapter (the
		record being updated); pass "" on create.
	*/
	OrdinalTaken(context context.Context, titleID string, ordinal float64, excludeID string) (bool, error)

	/*
		Create persists the chapter row and all of its pages in one
		transaction. Either everything is durable or nothing is.
	*/
	Create(context context.Context, chapter *Chapter) error

	/*
		Update applies a partial-field update to the chapter row.
	*/
	Update(context context.Context, id string, input UpdateInput) error

	/*
		SoftDelete marks a chapter as deleted. Its ordinal becomes free
		for reuse by new siblings.
	*/
	SoftDelete(context context.Context, id string) error

	/*
		IncrementViewCount atomically bumps the view counter.
	*/
	IncrementViewCount(context context.Context, id string, delta int64) error
}
