// Copyright (c) 2026 Mangetsu. All rights reserved.

package reaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/platform/validate"
	"github.com/mangetsu-app/mangetsu/internal/social/notification"
	"github.com/mangetsu-app/mangetsu/pkg/uuidv7"
)

// # Collaborator Contracts

// Notifier delivers best-effort notifications. Implemented by the
// notification service; Emit never returns an error.
type Notifier interface {
	Emit(context context.Context, notification *notification.Notification)
}

// StatsRecomputer overwrites a user's aggregate view/like statistics
// from the live source rows. Implemented by the account service.
type StatsRecomputer interface {
	RecomputeStats(context context.Context, userID string) error
}

// # Service Layer

// Service runs the reaction state machine and its fanout.
type Service struct {
	reactionRepo Repository
	targets      TargetStore
	notifier     Notifier
	stats        StatsRecomputer
	logger       *slog.Logger
}

// NewService constructs a new reaction [Service].
// notifier and stats may be nil; the corresponding fanout is then skipped.
func NewService(reactionRepo Repository, targets TargetStore, notifier Notifier, stats StatsRecomputer, logger *slog.Logger) *Service {
	return &Service{
		reactionRepo: reactionRepo,
		targets:      targets,
		notifier:     notifier,
		stats:        stats,
		logger:       logger,
	}
}

// # Toggle

/*
Toggle submits a reaction and returns the resulting state and tallies.

Description: Toggle semantics over the three-state machine:

  - No existing row: the reaction is recorded (+1 on its tally).
  - Same kind already held: the row is removed (-1 on its tally).
  - Opposite kind held: the row switches kind (-1 old, +1 new).

The row mutation and the counter delta are separate statements; a crash
between them leaves the tally stale until reconciliation. After the
primary writes, the fanout runs best effort: the target owner's
aggregate stats are recomputed and, when the actor is not the owner, a
notification is emitted. Neither can fail the toggle.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (The reacting user; anonymous is rejected)
  - targetKind: TargetKind (title or chapter)
  - targetID: string (UUID)
  - kind: Kind (like or dislike)

Returns:
  - ToggleResult: Resulting reaction state and updated tallies
  - error: Authorization, validation, or persistence errors
*/
func (service *Service) Toggle(context context.Context, claims *sec.AuthClaims, targetKind TargetKind, targetID string, kind Kind) (ToggleResult, error) {

	// Any authenticated user may react
	if err := sec.Authorize(claims, "", sec.RoleMember); err != nil {
		return ToggleResult{}, err
	}

	validator := &validate.Validator{}
	validator.Custom(FieldKind, !kind.IsValid(), fmt.Sprintf("unknown reaction %q", kind))
	validator.Custom(FieldTargetKind, !targetKind.IsValid(), fmt.Sprintf("unknown target kind %q", targetKind))
	validator.Required(FieldTargetID, targetID)
	if err := validator.Err(); err != nil {
		return ToggleResult{}, err
	}

	// Live target resolution; yields owner and baseline tallies
	snapshot, err := service.targets.Resolve(context, targetKind, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	existing, err := service.reactionRepo.FindByUserAndTarget(context, claims.UserID, targetKind, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	// State transition and its deterministic counter delta
	var likeDelta, dislikeDelta int64
	var resulting *Kind

	switch {
	case existing == nil:
		// none -> liked | disliked
		row := &Reaction{
			ID:         uuidv7.New(),
			UserID:     claims.UserID,
			TargetKind: targetKind,
			TargetID:   targetID,
			Kind:       kind,
		}
		if err := service.reactionRepo.Upsert(context, row); err != nil {
			return ToggleResult{}, err
		}
		resulting = &kind
		likeDelta, dislikeDelta = deltaFor(kind)

	case existing.Kind == kind:
		// liked -> none | disliked -> none
		if err := service.reactionRepo.Delete(context, existing.ID); err != nil {
			return ToggleResult{}, err
		}
		undoLike, undoDislike := deltaFor(kind)
		likeDelta, dislikeDelta = -undoLike, -undoDislike

	default:
		// liked -> disliked | disliked -> liked
		existing.Kind = kind
		if err := service.reactionRepo.Upsert(context, existing); err != nil {
			return ToggleResult{}, err
		}
		resulting = &kind
		oldLike, oldDislike := deltaFor(oppositeOf(kind))
		newLike, newDislike := deltaFor(kind)
		likeDelta, dislikeDelta = newLike-oldLike, newDislike-oldDislike
	}

	// Counter write; same logical operation as the row change
	if err := service.targets.ApplyDelta(context, targetKind, targetID, likeDelta, dislikeDelta); err != nil {
		return ToggleResult{}, err
	}

	service.logger.Info("reaction_toggled",
		slog.String("user_id", claims.UserID),
		slog.String("target_kind", string(targetKind)),
		slog.String("target_id", targetID),
		slog.String("kind", string(kind)),
	)

	service.fanout(context, claims, snapshot.OwnerID, targetKind, targetID, kind, resulting != nil)

	return ToggleResult{
		Reaction: resulting,
		Likes:    snapshot.Likes + likeDelta,
		Dislikes: snapshot.Dislikes + dislikeDelta,
	}, nil
}

// # Lookups

/*
GetReaction returns the caller's current reaction state and the
target's tallies without mutating anything.
*/
func (service *Service) GetReaction(context context.Context, claims *sec.AuthClaims, targetKind TargetKind, targetID string) (ToggleResult, error) {

	if err := sec.Authorize(claims, "", sec.RoleMember); err != nil {
		return ToggleResult{}, err
	}

	snapshot, err := service.targets.Resolve(context, targetKind, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	existing, err := service.reactionRepo.FindByUserAndTarget(context, claims.UserID, targetKind, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	result := ToggleResult{Likes: snapshot.Likes, Dislikes: snapshot.Dislikes}
	if existing != nil {
		result.Reaction = &existing.Kind
	}

	return result, nil
}

// # Internal Helpers

// deltaFor maps a reaction kind to its (+like, +dislike) contribution.
func deltaFor(kind Kind) (likeDelta, dislikeDelta int64) {
	if kind == KindLike {
		return 1, 0
	}
	return 0, 1
}

// oppositeOf returns the other reaction kind.
func oppositeOf(kind Kind) Kind {
	if kind == KindLike {
		return KindDislike
	}
	return KindLike
}

// fanout runs the secondary effects. Both are best effort and scoped
// to targets with a known owner.
func (service *Service) fanout(context context.Context, claims *sec.AuthClaims, ownerID string, targetKind TargetKind, targetID string, kind Kind, reacted bool) {
	if ownerID == "" {
		return
	}

	// Overwrite, not increment: recomputing from source rows keeps the
	// owner's aggregates drift-free.
	if service.stats != nil {
		if err := service.stats.RecomputeStats(context, ownerID); err != nil {
			service.logger.Error("owner_stats_recompute_failed",
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()),
			)
		}
	}

	// Never notify users about their own actions; clearing a reaction
	// is not notification-worthy either.
	if service.notifier == nil || claims.UserID == ownerID || !reacted {
		return
	}

	service.notifier.Emit(context, &notification.Notification{
		UserID:     ownerID,
		ActorID:    claims.UserID,
		Type:       notification.TypeReaction,
		Title:      "New reaction",
		Message:    fmt.Sprintf("%s reacted to your %s", claims.Username, targetKind),
		TargetKind: string(targetKind),
		TargetID:   targetID,
	})
}
