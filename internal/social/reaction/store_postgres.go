// Copyright (c) 2026 Mangetsu. All rights reserved.

package reaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/database/schema"
	"github.com/mangetsu-app/mangetsu/internal/platform/dberr"
)

// # PostgreSQL Repository

// reactionRepository implements [Repository] using pgx.
type reactionRepository struct {
	pool *pgxpool.Pool
}

// NewReactionRepository constructs a PostgreSQL backed reaction store.
func NewReactionRepository(pool *pgxpool.Pool) Repository {
	return &reactionRepository{pool: pool}
}

func (repository *reactionRepository) FindByUserAndTarget(context context.Context, userID string, targetKind TargetKind, targetID string) (*Reaction, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = $3
	`,
		schema.SocialReaction.ID, schema.SocialReaction.UserID, schema.SocialReaction.TargetKind,
		schema.SocialReaction.TargetID, schema.SocialReaction.Kind,
		schema.SocialReaction.CreatedAt, schema.SocialReaction.UpdatedAt,
		schema.SocialReaction.Table,
		schema.SocialReaction.UserID, schema.SocialReaction.TargetKind, schema.SocialReaction.TargetID,
	)

	var reaction Reaction
	err := repository.pool.QueryRow(context, query, userID, string(targetKind), targetID).Scan(
		&reaction.ID, &reaction.UserID, &reaction.TargetKind,
		&reaction.TargetID, &reaction.Kind,
		&reaction.CreatedAt, &reaction.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "find_reaction")
	}

	return &reaction, nil
}

/*
Upsert writes the single (user, target) row.

Description: The unique constraint on (userid, targetkind, targetid)
turns a repeat insert into a kind overwrite, so a pair can never hold
two rows even under concurrent submissions.
*/
func (repository *reactionRepository) Upsert(context context.Context, reaction *Reaction) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s, %s)
		DO UPDATE SET %s = EXCLUDED.%s, %s = NOW()
	`,
		schema.SocialReaction.Table,
		schema.SocialReaction.ID, schema.SocialReaction.UserID, schema.SocialReaction.TargetKind,
		schema.SocialReaction.TargetID, schema.SocialReaction.Kind,
		schema.SocialReaction.UserID, schema.SocialReaction.TargetKind, schema.SocialReaction.TargetID,
		schema.SocialReaction.Kind, schema.SocialReaction.Kind, schema.SocialReaction.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		reaction.ID, reaction.UserID, string(reaction.TargetKind), reaction.TargetID, string(reaction.Kind),
	)
	if err != nil {
		return dberr.Wrap(err, "upsert_reaction")
	}

	return nil
}

func (repository *reactionRepository) Delete(context context.Context, id string) error {

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.SocialReaction.Table, schema.SocialReaction.ID)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return dberr.Wrap(err, "delete_reaction")
	}

	return nil
}

// # PostgreSQL Target Store

// targetStore implements [TargetStore] over the title and chapter tables.
type targetStore struct {
	pool *pgxpool.Pool
}

// NewTargetStore constructs a PostgreSQL backed [TargetStore].
func NewTargetStore(pool *pgxpool.Pool) TargetStore {
	return &targetStore{pool: pool}
}

// columns returns the table and column names for a target kind.
func (store *targetStore) columns(targetKind TargetKind) (table, id, owner, likes, dislikes, deleted string, err error) {
	switch targetKind {
	case TargetTitle:
		t := schema.CoreTitle
		return t.Table, t.ID, t.UploaderID, t.LikeCount, t.DislikeCount, t.DeletedAt, nil
	case TargetChapter:
		c := schema.CoreChapter
		return c.Table, c.ID, c.UploaderID, c.LikeCount, c.DislikeCount, c.DeletedAt, nil
	default:
		return "", "", "", "", "", "", apperr.ValidationError(fmt.Sprintf("unknown target kind %q", targetKind))
	}
}

func (store *targetStore) Resolve(context context.Context, targetKind TargetKind, targetID string) (TargetSnapshot, error) {

	table, idCol, ownerCol, likesCol, dislikesCol, deletedCol, err := store.columns(targetKind)
	if err != nil {
		return TargetSnapshot{}, err
	}

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		ownerCol, likesCol, dislikesCol, table, idCol, deletedCol)

	var snapshot TargetSnapshot
	err = store.pool.QueryRow(context, query, targetID).Scan(&snapshot.OwnerID, &snapshot.Likes, &snapshot.Dislikes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TargetSnapshot{}, apperr.NotFound(string(targetKind))
		}
		return TargetSnapshot{}, dberr.Wrap(err, "resolve_reaction_target")
	}

	return snapshot, nil
}

/*
ApplyDelta atomically adjusts the target's tallies.

Description: GREATEST keeps a tally at zero if reconciliation drift
would otherwise push it negative.
*/
func (store *targetStore) ApplyDelta(context context.Context, targetKind TargetKind, targetID string, likeDelta, dislikeDelta int64) error {

	table, idCol, _, likesCol, dislikesCol, _, err := store.columns(targetKind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = GREATEST(0, %s + $1),
			%s = GREATEST(0, %s + $2)
		WHERE %s = $3
	`,
		table,
		likesCol, likesCol,
		dislikesCol, dislikesCol,
		idCol,
	)

	if _, err := store.pool.Exec(context, query, likeDelta, dislikeDelta, targetID); err != nil {
		return dberr.Wrap(err, "apply_reaction_delta")
	}

	return nil
}
