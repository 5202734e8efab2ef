// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package reaction implements per-user like/dislike state on titles and
chapters.

One row exists per (user, target) pair at most. A reaction follows a
three-state machine per user and target:

	states: none, liked, disliked
	transitions:
	  none     -> liked     (+1 like)
	  none     -> disliked  (+1 dislike)
	  liked    -> none      (-1 like)        submit like again
	  liked    -> disliked  (-1 like, +1 dislike)
	  disliked -> none      (-1 dislike)     submit dislike again
	  disliked -> liked     (-1 dislike, +1 like)

Each transition mutates the single reaction row and applies its counter
delta to the target's denormalized tallies in the same logical
operation. The row write and the counter write are separate statements;
a crash between them leaves the tally stale until reconciliation, which
is accepted.
*/
package reaction

import "time"

// # Domain Enums

// Kind is the reaction value a user can hold on a target.
type Kind string

const (
	KindLike    Kind = "like"
	KindDislike Kind = "dislike"
)

// IsValid reports whether k is a recognised [Kind].
func (k Kind) IsValid() bool {
	return k == KindLike || k == KindDislike
}

// TargetKind identifies what kind of entity a reaction points at.
type TargetKind string

const (
	TargetTitle   TargetKind = "title"
	TargetChapter TargetKind = "chapter"
)

// IsValid reports whether t is a recognised [TargetKind].
func (t TargetKind) IsValid() bool {
	return t == TargetTitle || t == TargetChapter
}

// # Core Entity

// Reaction is the single durable row for one (user, target) pair.
type Reaction struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TargetKind TargetKind `json:"target_kind"`
	TargetID   string     `json:"target_id"`
	Kind       Kind       `json:"kind"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// # Results

// ToggleResult is the response contract for a reaction submission:
// the caller's resulting state and the target's updated tallies.
type ToggleResult struct {
	Reaction *Kind `json:"reaction"` // nil when the toggle cleared the reaction
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// # Field Identifiers

const (
	FieldKind       = "kind"
	FieldTargetKind = "target_kind"
	FieldTargetID   = "target_id"
)
