// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package title defines the parent content entity of the Mangetsu catalogue.

A Title represents one manga work. It owns an ordered set of Chapters and
carries the denormalized counters (likes, dislikes, views, chapter count)
that the reconciliation machinery keeps consistent with the source rows.

Core Responsibility:

  - Catalogue: Publication status, author/artist credits, genre set.
  - Counters: chaptercount must eventually equal the number of live
    chapters referencing this Title after any write.
  - Lifecycle: Created by an authorized uploader, soft-deleted by owner
    or staff (flag + timestamp, never removed).
*/
package title

import "time"

// # Domain Enums

// Status represents the publication status of a title.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the publication is paused indefinitely.
	StatusHiatus Status = "hiatus"

	// StatusCancelled indicates the publication has been permanently discontinued.
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus, StatusCancelled:
		return true
	}
	return false
}

// # Core Entity

// Title is the parent aggregate of the content domain.
type Title struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"` // URL-safe identifier derived from Name
	Author   string `json:"author"`
	Artist   string `json:"artist"`
	Synopsis string `json:"synopsis"`
	Status   Status `json:"status"`
	CoverURL string `json:"cover_url"`
	Genres   []Genre `json:"genres,omitempty"`

	// Input-only junction IDs for genre assignment.
	GenreIDs []string `json:"genre_ids,omitempty"`

	// # Denormalized Counters
	// Maintained by the reaction fanout and the chapter-count reconciler.
	// Derived values; the source of truth is always the underlying rows.
	LikeCount    int64 `json:"like_count"`
	DislikeCount int64 `json:"dislike_count"`
	ViewCount    int64 `json:"view_count"`
	ChapterCount int64 `json:"chapter_count"`

	UploaderID string     `json:"uploader_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// Genre represents a genre classifier attached to a [Title].
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered title list query.
type Filter struct {
	Status     Status   `json:"status,omitempty"`
	GenreIDs   []string `json:"genre_ids,omitempty"` // Matches titles carrying any of these genres
	UploaderID string   `json:"uploader_id,omitempty"`
	Query      string   `json:"q,omitempty"`        // Substring search on name
	SortDir    string   `json:"sort_dir,omitempty"` // "asc" or "desc" by creation time
}

// # Partial Updates

// UpdateInput carries a partial-field title update. Nil pointers leave
// the stored value untouched.
type UpdateInput struct {
	Name     *string
	Author   *string
	Artist   *string
	Synopsis *string
	Status   *Status
	CoverURL *string
	GenreIDs []string // nil = unchanged; empty slice = clear all
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldAuthor   = "author"
	FieldArtist   = "artist"
	FieldSynopsis = "synopsis"
	FieldStatus   = "status"
	FieldCoverURL = "cover_url"
	FieldGenreIDs = "genre_ids"
)
