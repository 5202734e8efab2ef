// Copyright (c) 2026 Mangetsu. All rights reserved.

package title

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/pkg/pointer"
)

// # Test Doubles

// fakeTitleRepo is an in-memory TitleRepository for service level tests.
type fakeTitleRepo struct {
	titles        map[string]*Title
	chapterCounts map[string]int64
	updateCalls   int
}

func newFakeTitleRepo() *fakeTitleRepo {
	return &fakeTitleRepo{
		titles:        make(map[string]*Title),
		chapterCounts: make(map[string]int64),
	}
}

func (f *fakeTitleRepo) List(_ context.Context, _ Filter, _, _ int) ([]*Title, int, error) {
	var out []*Title
	for _, t := range f.titles {
		if t.DeletedAt == nil {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (f *fakeTitleRepo) FindByID(_ context.Context, id string) (*Title, error) {
	t, ok := f.titles[id]
	if !ok || t.DeletedAt != nil {
		return nil, apperr.NotFound("Title")
	}
	return t, nil
}

func (f *fakeTitleRepo) Create(_ context.Context, t *Title) error {
	f.titles[t.ID] = t
	return nil
}

func (f *fakeTitleRepo) Update(_ context.Context, id string, input UpdateInput) error {
	f.updateCalls++
	t, ok := f.titles[id]
	if !ok {
		return apperr.NotFound("Title")
	}
	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	return nil
}

func (f *fakeTitleRepo) SoftDelete(_ context.Context, id string) error {
	t, ok := f.titles[id]
	if !ok || t.DeletedAt != nil {
		return apperr.NotFound("Title")
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

func (f *fakeTitleRepo) IncrementViewCount(_ context.Context, id string, delta int64) error {
	if t, ok := f.titles[id]; ok {
		t.ViewCount += delta
	}
	return nil
}

func (f *fakeTitleRepo) ReconcileChapterCount(_ context.Context, id string) (int64, error) {
	t, ok := f.titles[id]
	if !ok {
		return 0, apperr.NotFound("Title")
	}
	count := f.chapterCounts[id]
	t.ChapterCount = count
	return count, nil
}

// fakePurger records cascade cleanup calls and optionally fails.
type fakePurger struct {
	calls int
	err   error
}

func (f *fakePurger) DeleteByTarget(_ context.Context, _, _ string) error {
	f.calls++
	return f.err
}

// # Helpers

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func claimsFor(userID string, role sec.UserRole) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: userID, Role: string(role)}
}

// # Tests

/*
TestService_CreateTitle verifies the privilege gate and identity generation
on the title creation path.
*/
func TestService_CreateTitle(t *testing.T) {
	tests := []struct {
		name     string
		claims   *sec.AuthClaims
		wantCode string
	}{
		{"anonymous_rejected", nil, "UNAUTHORIZED"},
		{"member_forbidden", claimsFor("u1", sec.RoleMember), "FORBIDDEN"},
		{"uploader_allowed", claimsFor("u2", sec.RoleUploader), ""},
		{"admin_allowed", claimsFor("u3", sec.RoleAdmin), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTitleRepo()
			service := NewService(repo, nil, testLogger())

			input := &Title{Name: "Moonlit Garden", Status: StatusOngoing}
			err := service.CreateTitle(context.Background(), tt.claims, input)

			if tt.wantCode != "" {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, tt.wantCode, ae.Code)
				assert.Empty(t, repo.titles)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, input.ID)
			assert.Equal(t, "moonlit-garden", input.Slug)
			assert.Equal(t, tt.claims.UserID, input.UploaderID)
		})
	}
}

/*
TestService_CreateTitle_Validation checks that invalid metadata never
reaches the repository.
*/
func TestService_CreateTitle_Validation(t *testing.T) {
	repo := newFakeTitleRepo()
	service := NewService(repo, nil, testLogger())
	claims := claimsFor("u1", sec.RoleUploader)

	t.Run("missing_name", func(t *testing.T) {
		err := service.CreateTitle(context.Background(), claims, &Title{Status: StatusOngoing})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("bad_status", func(t *testing.T) {
		err := service.CreateTitle(context.Background(), claims, &Title{Name: "X", Status: Status("airing")})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	assert.Empty(t, repo.titles)
}

/*
TestService_UpdateTitle exercises the owner-or-moderator gate.
*/
func TestService_UpdateTitle(t *testing.T) {
	tests := []struct {
		name     string
		claims   *sec.AuthClaims
		wantCode string
	}{
		{"owner_allowed", claimsFor("owner-1", sec.RoleUploader), ""},
		{"moderator_allowed", claimsFor("staff-1", sec.RoleModerator), ""},
		{"other_uploader_forbidden", claimsFor("stranger", sec.RoleUploader), "FORBIDDEN"},
		{"member_forbidden", claimsFor("reader", sec.RoleMember), "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTitleRepo()
			repo.titles["t1"] = &Title{ID: "t1", Name: "Original", Status: StatusOngoing, UploaderID: "owner-1"}
			service := NewService(repo, nil, testLogger())

			err := service.UpdateTitle(context.Background(), tt.claims, "t1", UpdateInput{Name: pointer.To("Renamed")})

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.As(err).Code)
				assert.Equal(t, "Original", repo.titles["t1"].Name)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Renamed", repo.titles["t1"].Name)
		})
	}
}

/*
TestService_DeleteTitle verifies the soft delete and that the dependent
notification cleanup is best effort.
*/
func TestService_DeleteTitle(t *testing.T) {
	t.Run("owner_deletes_and_purges", func(t *testing.T) {
		repo := newFakeTitleRepo()
		repo.titles["t1"] = &Title{ID: "t1", Name: "A", UploaderID: "owner-1"}
		purger := &fakePurger{}
		service := NewService(repo, purger, testLogger())

		err := service.DeleteTitle(context.Background(), claimsFor("owner-1", sec.RoleUploader), "t1")
		require.NoError(t, err)
		assert.NotNil(t, repo.titles["t1"].DeletedAt)
		assert.Equal(t, 1, purger.calls)
	})

	t.Run("purge_failure_does_not_undo_delete", func(t *testing.T) {
		repo := newFakeTitleRepo()
		repo.titles["t1"] = &Title{ID: "t1", Name: "A", UploaderID: "owner-1"}
		purger := &fakePurger{err: errors.New("social store down")}
		service := NewService(repo, purger, testLogger())

		err := service.DeleteTitle(context.Background(), claimsFor("owner-1", sec.RoleUploader), "t1")
		require.NoError(t, err)
		assert.NotNil(t, repo.titles["t1"].DeletedAt)
	})

	t.Run("double_delete_reports_not_found", func(t *testing.T) {
		repo := newFakeTitleRepo()
		repo.titles["t1"] = &Title{ID: "t1", Name: "A", UploaderID: "owner-1"}
		service := NewService(repo, nil, testLogger())
		claims := claimsFor("owner-1", sec.RoleUploader)

		require.NoError(t, service.DeleteTitle(context.Background(), claims, "t1"))
		err := service.DeleteTitle(context.Background(), claims, "t1")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestService_ReconcileChapterCount confirms the repair operation is
idempotent: repeated runs converge on the same value.
*/
func TestService_ReconcileChapterCount(t *testing.T) {
	repo := newFakeTitleRepo()
	repo.titles["t1"] = &Title{ID: "t1", Name: "A", ChapterCount: 99}
	repo.chapterCounts["t1"] = 4
	service := NewService(repo, nil, testLogger())

	first, err := service.ReconcileChapterCount(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), first)
	assert.Equal(t, int64(4), repo.titles["t1"].ChapterCount)

	second, err := service.ReconcileChapterCount(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = service.ReconcileChapterCount(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
