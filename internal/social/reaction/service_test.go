// Copyright (c) 2026 Mangetsu. All rights reserved.

package reaction

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/social/notification"
)

// # Test Doubles

type pairKey struct {
	userID     string
	targetKind TargetKind
	targetID   string
}

// fakeRepo enforces the one-row-per-pair invariant like the real
// unique constraint does.
type fakeRepo struct {
	rows map[pairKey]*Reaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[pairKey]*Reaction)}
}

func (f *fakeRepo) FindByUserAndTarget(_ context.Context, userID string, targetKind TargetKind, targetID string) (*Reaction, error) {
	return f.rows[pairKey{userID, targetKind, targetID}], nil
}

func (f *fakeRepo) Upsert(_ context.Context, r *Reaction) error {
	key := pairKey{r.UserID, r.TargetKind, r.TargetID}
	if existing, ok := f.rows[key]; ok {
		existing.Kind = r.Kind
		return nil
	}
	f.rows[key] = r
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	for key, r := range f.rows {
		if r.ID == id {
			delete(f.rows, key)
			return nil
		}
	}
	return nil
}

// fakeTargets holds one title-like target with tallies and an owner.
type fakeTargets struct {
	ownerID  string
	likes    int64
	dislikes int64
	missing  bool
}

func (f *fakeTargets) Resolve(_ context.Context, targetKind TargetKind, _ string) (TargetSnapshot, error) {
	if f.missing {
		return TargetSnapshot{}, apperr.NotFound(string(targetKind))
	}
	return TargetSnapshot{OwnerID: f.ownerID, Likes: f.likes, Dislikes: f.dislikes}, nil
}

func (f *fakeTargets) ApplyDelta(_ context.Context, _ TargetKind, _ string, likeDelta, dislikeDelta int64) error {
	f.likes += likeDelta
	f.dislikes += dislikeDelta
	return nil
}

// fakeNotifier records emissions.
type fakeNotifier struct {
	emitted []*notification.Notification
}

func (f *fakeNotifier) Emit(_ context.Context, n *notification.Notification) {
	f.emitted = append(f.emitted, n)
}

// fakeStats records recompute calls.
type fakeStats struct {
	recomputed []string
}

func (f *fakeStats) RecomputeStats(_ context.Context, userID string) error {
	f.recomputed = append(f.recomputed, userID)
	return nil
}

// # Helpers

type fixture struct {
	repo     *fakeRepo
	targets  *fakeTargets
	notifier *fakeNotifier
	stats    *fakeStats
	service  *Service
}

func newFixture() *fixture {
	repo := newFakeRepo()
	targets := &fakeTargets{ownerID: "owner-1", likes: 10, dislikes: 3}
	notifier := &fakeNotifier{}
	stats := &fakeStats{}
	service := NewService(repo, targets, notifier, stats, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{repo: repo, targets: targets, notifier: notifier, stats: stats, service: service}
}

func memberClaims(userID string) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: userID, Username: userID, Role: string(sec.RoleMember)}
}

func (fx *fixture) toggle(t *testing.T, userID string, kind Kind) ToggleResult {
	t.Helper()
	result, err := fx.service.Toggle(context.Background(), memberClaims(userID), TargetTitle, "t1", kind)
	require.NoError(t, err)
	return result
}

// # Tests

/*
TestService_Toggle_StateMachine exercises every permitted transition of
the three-state machine and its counter delta.
*/
func TestService_Toggle_StateMachine(t *testing.T) {
	t.Run("none_to_liked", func(t *testing.T) {
		fx := newFixture()
		result := fx.toggle(t, "u1", KindLike)

		require.NotNil(t, result.Reaction)
		assert.Equal(t, KindLike, *result.Reaction)
		assert.Equal(t, int64(11), result.Likes)
		assert.Equal(t, int64(3), result.Dislikes)
	})

	t.Run("like_like_nets_to_none", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "u1", KindLike)
		result := fx.toggle(t, "u1", KindLike)

		assert.Nil(t, result.Reaction)
		assert.Equal(t, int64(10), result.Likes)
		assert.Equal(t, int64(3), result.Dislikes)
		assert.Empty(t, fx.repo.rows)
	})

	t.Run("like_dislike_switches", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "u1", KindLike)
		result := fx.toggle(t, "u1", KindDislike)

		require.NotNil(t, result.Reaction)
		assert.Equal(t, KindDislike, *result.Reaction)
		assert.Equal(t, int64(10), result.Likes)
		assert.Equal(t, int64(4), result.Dislikes)
	})

	t.Run("dislike_dislike_nets_to_none", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "u1", KindDislike)
		result := fx.toggle(t, "u1", KindDislike)

		assert.Nil(t, result.Reaction)
		assert.Equal(t, int64(10), result.Likes)
		assert.Equal(t, int64(3), result.Dislikes)
	})

	t.Run("dislike_to_like", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "u1", KindDislike)
		result := fx.toggle(t, "u1", KindLike)

		require.NotNil(t, result.Reaction)
		assert.Equal(t, KindLike, *result.Reaction)
		assert.Equal(t, int64(11), result.Likes)
		assert.Equal(t, int64(3), result.Dislikes)
	})
}

/*
TestService_Toggle_SingleRowPerPair verifies the at-most-one-row
invariant across any toggle sequence, while two different users keep
independent rows.
*/
func TestService_Toggle_SingleRowPerPair(t *testing.T) {
	fx := newFixture()

	fx.toggle(t, "u1", KindLike)
	fx.toggle(t, "u1", KindDislike)
	fx.toggle(t, "u1", KindDislike)
	fx.toggle(t, "u1", KindLike)
	assert.Len(t, fx.repo.rows, 1)

	fx.toggle(t, "u2", KindLike)
	assert.Len(t, fx.repo.rows, 2)
	assert.Equal(t, int64(12), fx.targets.likes)
}

/*
TestService_Toggle_Anonymous checks that an anonymous submission is
rejected before any row or counter is touched.
*/
func TestService_Toggle_Anonymous(t *testing.T) {
	fx := newFixture()

	_, err := fx.service.Toggle(context.Background(), nil, TargetTitle, "t1", KindLike)

	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	assert.Empty(t, fx.repo.rows)
	assert.Equal(t, int64(10), fx.targets.likes)
}

/*
TestService_Toggle_Validation covers unknown kinds and missing targets.
*/
func TestService_Toggle_Validation(t *testing.T) {
	t.Run("unknown_kind", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.service.Toggle(context.Background(), memberClaims("u1"), TargetTitle, "t1", Kind("love"))
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("unknown_target_kind", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.service.Toggle(context.Background(), memberClaims("u1"), TargetKind("comment"), "t1", KindLike)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("deleted_target", func(t *testing.T) {
		fx := newFixture()
		fx.targets.missing = true
		_, err := fx.service.Toggle(context.Background(), memberClaims("u1"), TargetTitle, "t1", KindLike)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestService_Toggle_Fanout checks owner stats recompute, the self-notify
skip, and that clearing a reaction emits nothing.
*/
func TestService_Toggle_Fanout(t *testing.T) {
	t.Run("notifies_owner", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "u1", KindLike)

		require.Len(t, fx.notifier.emitted, 1)
		note := fx.notifier.emitted[0]
		assert.Equal(t, "owner-1", note.UserID)
		assert.Equal(t, "u1", note.ActorID)
		assert.Equal(t, notification.TypeReaction, note.Type)
		assert.Equal(t, []string{"owner-1"}, fx.stats.recomputed)
	})

	t.Run("skips_self_reaction", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "owner-1", KindLike)

		assert.Empty(t, fx.notifier.emitted)
		// Stats still recomputed; the owner's tallies changed
		assert.Equal(t, []string{"owner-1"}, fx.stats.recomputed)
	})

	t.Run("clearing_emits_nothing", func(t *testing.T) {
		fx := newFixture()
		fx.toggle(t, "u1", KindLike)
		fx.toggle(t, "u1", KindLike)

		assert.Len(t, fx.notifier.emitted, 1)
	})
}

/*
TestService_GetReaction checks the read-only state report.
*/
func TestService_GetReaction(t *testing.T) {
	fx := newFixture()
	fx.toggle(t, "u1", KindDislike)

	result, err := fx.service.GetReaction(context.Background(), memberClaims("u1"), TargetTitle, "t1")
	require.NoError(t, err)
	require.NotNil(t, result.Reaction)
	assert.Equal(t, KindDislike, *result.Reaction)

	other, err := fx.service.GetReaction(context.Background(), memberClaims("u2"), TargetTitle, "t1")
	require.NoError(t, err)
	assert.Nil(t, other.Reaction)
	assert.Equal(t, int64(4), other.Dislikes)
}
