// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package chapter defines the ordered content unit under a Title.

A Chapter carries a numeric ordinal that is unique among the live
chapters of its parent title. Ordinals of soft-deleted chapters are
free for reuse. Pages are owned by their chapter and are written in
the same transaction as the chapter row.
*/
package chapter

import "time"

// # Core Entities

// Chapter is one ordered unit of content under a Title.
type Chapter struct {
	ID      string  `json:"id"`
	TitleID string  `json:"title_id"`
	Ordinal float64 `json:"ordinal"` // unique per live sibling set; 10.5 style extras allowed
	Name    string  `json:"name"`
	Volume  *int    `json:"volume,omitempty"`

	Pages []*Page `json:"pages,omitempty"`

	LikeCount    int64 `json:"like_count"`
	DislikeCount int64 `json:"dislike_count"`
	ViewCount    int64 `json:"view_count"`

	UploaderID string     `json:"uploader_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
}

// Page is one image inside a [Chapter], positioned by PageNumber.
type Page struct {
	ID         string `json:"id"`
	ChapterID  string `json:"-"`
	PageNumber int    `json:"page_number"`
	ImageURL   string `json:"image_url"`
	Width      int    `json:"width"`  // 800 when the source image declared none
	Height     int    `json:"height"` // 1200 when the source image declared none
}

// # Search & Filtering

// Filter holds the parameters for a chapter list query.
type Filter struct {
	SortDir string `json:"sort_dir,omitempty"` // "asc" or "desc" by ordinal
}

// # Partial Updates

// UpdateInput carries a partial-field chapter update. Nil pointers
// leave the stored value untouched.
type UpdateInput struct {
	Name    *string
	Ordinal *float64
	Volume  *int
}

// # Field Identifiers

const (
	FieldName    = "name"
	FieldOrdinal = "ordinal"
	FieldVolume  = "volume"
	FieldPages   = "pages"
	FieldTitleID = "title_id"
)
