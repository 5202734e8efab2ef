// Copyright (c) 2026 Mangetsu. All rights reserved.

package reaction

import "context"

// # Reaction Data Access

// Repository defines the data access contract for reaction rows.
type Repository interface {

	/*
		FindByUserAndTarget returns the user's reaction row for a target,
		or (nil, nil) when the user holds no reaction.
	*/
	FindByUserAndTarget(context context.Context, userID string, targetKind TargetKind, targetID string) (*Reaction, error)

	/*
		Upsert inserts the row or, when the (user, target) pair already
		exists, overwrites its kind. Never creates a second row for the
		same pair.
	*/
	Upsert(context context.Context, reaction *Reaction) error

	/*
		Delete removes the reaction row.
	*/
	Delete(context context.Context, id string) error
}

// # Target Access

// TargetSnapshot is the slice of a reaction target the fanout needs.
type TargetSnapshot struct {
	OwnerID  string
	Likes    int64
	Dislikes int64
}

// TargetStore resolves reaction targets and applies counter deltas to
// their denormalized tallies.
type TargetStore interface {

	/*
		Resolve returns the live target's owner and current tallies.

		Returns:
		  - TargetSnapshot: Owner and baseline counters
		  - error: apperr.NotFound for absent or soft-deleted targets
	*/
	Resolve(context context.Context, targetKind TargetKind, targetID string) (TargetSnapshot, error)

	/*
		ApplyDelta atomically adjusts the target's like/dislike tallies.
	*/
	ApplyDelta(context context.Context, targetKind TargetKind, targetID string, likeDelta, dislikeDelta int64) error
}
