// Copyright (c) 2026 Mangetsu. All rights reserved.

package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// # Test Doubles

type dedupKey struct {
	notificationType Type
	userID           string
	actorID          string
	targetKind       string
	targetID         string
}

// fakeRepo is an in-memory Repository with real dedup-window behavior.
type fakeRepo struct {
	stored    []*Notification
	lastSeen  map[dedupKey]time.Time
	createErr error
	existsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{lastSeen: make(map[dedupKey]time.Time)}
}

func (f *fakeRepo) key(n *Notification) dedupKey {
	return dedupKey{n.Type, n.UserID, n.ActorID, n.TargetKind, n.TargetID}
}

func (f *fakeRepo) Create(_ context.Context, n *Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.stored = append(f.stored, n)
	f.lastSeen[f.key(n)] = n.CreatedAt
	return nil
}

func (f *fakeRepo) ExistsRecent(_ context.Context, t Type, userID, actorID, targetKind, targetID string, window time.Duration) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	seen, ok := f.lastSeen[dedupKey{t, userID, actorID, targetKind, targetID}]
	return ok && time.Since(seen) < window, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range f.stored {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) MarkRead(_ context.Context, userID, id string) error {
	for _, n := range f.stored {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range f.stored {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeRepo) DeleteByTarget(_ context.Context, targetKind, targetID string) error {
	var kept []*Notification
	for _, n := range f.stored {
		if n.TargetKind != targetKind || n.TargetID != targetID {
			kept = append(kept, n)
		}
	}
	f.stored = kept
	return nil
}

// # Helpers

func reactionNote(actor string) *Notification {
	return &Notification{
		UserID:     "owner-1",
		ActorID:    actor,
		Type:       TypeReaction,
		Title:      "New reaction",
		Message:    "Someone liked your title",
		TargetKind: "title",
		TargetID:   "t1",
	}
}

// # Tests

/*
TestService_Emit_Dedup verifies the 24-hour dedup window: the same
(type, actor, recipient, target) tuple is stored once, fresh tuples are
stored separately, and stale entries stop counting.
*/
func TestService_Emit_Dedup(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	service.Emit(context.Background(), reactionNote("actor-1"))
	service.Emit(context.Background(), reactionNote("actor-1"))
	assert.Len(t, repo.stored, 1)

	// A different actor is not a duplicate
	service.Emit(context.Background(), reactionNote("actor-2"))
	assert.Len(t, repo.stored, 2)

	// Entries older than the window no longer suppress emission
	stale := repo.key(reactionNote("actor-1"))
	repo.lastSeen[stale] = time.Now().Add(-25 * time.Hour)
	service.Emit(context.Background(), reactionNote("actor-1"))
	assert.Len(t, repo.stored, 3)
}

/*
TestService_Emit_SwallowsFailures confirms emission never panics or
propagates storage errors.
*/
func TestService_Emit_SwallowsFailures(t *testing.T) {
	t.Run("create_failure", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = errors.New("db down")
		service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

		service.Emit(context.Background(), reactionNote("actor-1"))
		assert.Empty(t, repo.stored)
	})

	t.Run("dedup_check_failure", func(t *testing.T) {
		repo := newFakeRepo()
		repo.existsErr = errors.New("db down")
		service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

		service.Emit(context.Background(), reactionNote("actor-1"))
		assert.Empty(t, repo.stored)
	})
}

/*
TestService_Emit_AssignsID checks identity generation on emission.
*/
func TestService_Emit_AssignsID(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	note := reactionNote("actor-1")
	service.Emit(context.Background(), note)

	require.Len(t, repo.stored, 1)
	assert.NotEmpty(t, note.ID)
}

/*
TestService_DeleteByTarget checks cascade cleanup removes only entries
referencing the deleted entity.
*/
func TestService_DeleteByTarget(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	service.Emit(context.Background(), reactionNote("actor-1"))
	other := reactionNote("actor-1")
	other.TargetID = "t2"
	service.Emit(context.Background(), other)
	require.Len(t, repo.stored, 2)

	require.NoError(t, service.DeleteByTarget(context.Background(), "title", "t1"))
	require.Len(t, repo.stored, 1)
	assert.Equal(t, "t2", repo.stored[0].TargetID)
}
