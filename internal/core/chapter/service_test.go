// Copyright (c) 2026 Mangetsu. All rights reserved.

package chapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangetsu-app/mangetsu/internal/core/title"
	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/upload"
	"github.com/mangetsu-app/mangetsu/pkg/pointer"
)

// # Test Doubles

// fakeChapterRepo is an in-memory ChapterRepository.
type fakeChapterRepo struct {
	chapters   map[string]*Chapter
	createFail error // returned by the next Create when set
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{chapters: make(map[string]*Chapter)}
}

func (f *fakeChapterRepo) live(titleID string) []*Chapter {
	var out []*Chapter
	for _, c := range f.chapters {
		if c.TitleID == titleID && c.DeletedAt == nil {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeChapterRepo) ListByTitle(_ context.Context, titleID string, _ Filter, _, _ int) ([]*Chapter, int, error) {
	out := f.live(titleID)
	return out, len(out), nil
}

func (f *fakeChapterRepo) FindByID(_ context.Context, id string) (*Chapter, error) {
	c, ok := f.chapters[id]
	if !ok || c.DeletedAt != nil {
		return nil, apperr.NotFound("Chapter")
	}
	return c, nil
}

func (f *fakeChapterRepo) OrdinalTaken(_ context.Context, titleID string, ordinal float64, excludeID string) (bool, error) {
	for _, c := range f.live(titleID) {
		if c.ID != excludeID && c.Ordinal == ordinal {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChapterRepo) Create(_ context.Context, c *Chapter) error {
	if f.createFail != nil {
		return f.createFail
	}
	f.chapters[c.ID] = c
	return nil
}

func (f *fakeChapterRepo) Update(_ context.Context, id string, input UpdateInput) error {
	c, ok := f.chapters[id]
	if !ok {
		return apperr.NotFound("Chapter")
	}
	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Ordinal != nil {
		c.Ordinal = *input.Ordinal
	}
	if input.Volume != nil {
		c.Volume = input.Volume
	}
	return nil
}

func (f *fakeChapterRepo) SoftDelete(_ context.Context, id string) error {
	c, ok := f.chapters[id]
	if !ok || c.DeletedAt != nil {
		return apperr.NotFound("Chapter")
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (f *fakeChapterRepo) IncrementViewCount(_ context.Context, id string, delta int64) error {
	if c, ok := f.chapters[id]; ok {
		c.ViewCount += delta
	}
	return nil
}

// fakeCatalogue backs ParentCatalogue with the chapter repo so the
// reconciled counter tracks the live sibling count.
type fakeCatalogue struct {
	titles map[string]*title.Title
	repo   *fakeChapterRepo
}

func (f *fakeCatalogue) GetTitle(_ context.Context, id string) (*title.Title, error) {
	t, ok := f.titles[id]
	if !ok || t.DeletedAt != nil {
		return nil, apperr.NotFound("Title")
	}
	return t, nil
}

func (f *fakeCatalogue) RegisterView(_ context.Context, id string) error {
	t, ok := f.titles[id]
	if !ok {
		return apperr.NotFound("Title")
	}
	t.ViewCount++
	return nil
}

func (f *fakeCatalogue) ReconcileChapterCount(_ context.Context, id string) (int64, error) {
	t, ok := f.titles[id]
	if !ok {
		return 0, apperr.NotFound("Title")
	}
	count := int64(len(f.repo.live(id)))
	t.ChapterCount = count
	return count, nil
}

// fakeIngestor mimics the sequential-with-abort upload pipeline.
type fakeIngestor struct {
	calls     int
	failAt    int      // 0-based file index that fails; -1 = never
	discarded []string // keys handed to Discard
}

func (f *fakeIngestor) IngestBatch(_ context.Context, folder string, files []upload.File) ([]upload.Result, error) {
	f.calls++
	results := make([]upload.Result, 0, len(files))
	for index, file := range files {
		if index == f.failAt {
			return nil, apperr.Internal(errors.New("storage unreachable"))
		}
		results = append(results, upload.Result{
			OriginalName: file.Name,
			Filename:     fmt.Sprintf("%s/%d-deadbeef.jpg", folder, index),
			URL:          fmt.Sprintf("https://cdn.mangetsu.app/%s/%d-deadbeef.jpg", folder, index),
			Size:         file.Size,
			Type:         file.ContentType,
		})
	}
	return results, nil
}

func (f *fakeIngestor) Discard(_ context.Context, keys []string) {
	f.discarded = append(f.discarded, keys...)
}

// # Helpers

type fixture struct {
	repo      *fakeChapterRepo
	catalogue *fakeCatalogue
	ingestor  *fakeIngestor
	service   *Service
}

func newFixture() *fixture {
	repo := newFakeChapterRepo()
	catalogue := &fakeCatalogue{
		titles: map[string]*title.Title{
			"t1": {ID: "t1", Name: "Moonlit Garden", UploaderID: "owner-1"},
		},
		repo: repo,
	}
	ingestor := &fakeIngestor{failAt: -1}
	service := NewService(repo, catalogue, ingestor, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{repo: repo, catalogue: catalogue, ingestor: ingestor, service: service}
}

func uploaderClaims() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "owner-1", Role: string(sec.RoleUploader)}
}

func pages(n int) []upload.File {
	out := make([]upload.File, 0, n)
	for i := 0; i < n; i++ {
		body := "fakejpeg"
		out = append(out, upload.File{
			Name:        fmt.Sprintf("page-%02d.jpg", i+1),
			Size:        int64(len(body)),
			ContentType: "image/jpeg",
			Reader:      strings.NewReader(body),
		})
	}
	return out
}

// # Tests

/*
TestService_CreateChapter_Success walks the happy publication path and
checks page numbering, ownership, and the repaired parent counter.
*/
func TestService_CreateChapter_Success(t *testing.T) {
	fx := newFixture()

	chapter, err := fx.service.CreateChapter(context.Background(), uploaderClaims(), CreateInput{
		TitleID: "t1", Ordinal: 1, Name: "First Light", Pages: pages(3),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, chapter.ID)
	assert.Equal(t, "owner-1", chapter.UploaderID)
	require.Len(t, chapter.Pages, 3)
	for i, page := range chapter.Pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.Contains(t, page.ImageURL, "pages/")
		assert.Equal(t, constants.PageDefaultWidth, page.Width)
		assert.Equal(t, constants.PageDefaultHeight, page.Height)
	}

	assert.Equal(t, int64(1), fx.catalogue.titles["t1"].ChapterCount)
}

/*
TestService_CreateChapter_DiscardsPagesOnWriteFailure verifies that a
failed chapter insert hands every uploaded page key back to the ingestor
for cleanup instead of leaving orphaned objects.
*/
func TestService_CreateChapter_DiscardsPagesOnWriteFailure(t *testing.T) {
	fx := newFixture()
	fx.repo.createFail = apperr.Internal(errors.New("connection reset"))

	_, err := fx.service.CreateChapter(context.Background(), uploaderClaims(), CreateInput{
		TitleID: "t1", Ordinal: 1, Name: "First Light", Pages: pages(3),
	})
	require.Error(t, err)

	assert.Empty(t, fx.repo.chapters)
	require.Len(t, fx.ingestor.discarded, 3)
	for _, key := range fx.ingestor.discarded {
		assert.Contains(t, key, "pages/")
	}
}

/*
TestService_CreateChapter_OrdinalConflict verifies a conflicting ordinal
is rejected before any page reaches storage.
*/
func TestService_CreateChapter_OrdinalConflict(t *testing.T) {
	fx := newFixture()
	fx.repo.chapters["c1"] = &Chapter{ID: "c1", TitleID: "t1", Ordinal: 2, UploaderID: "owner-1"}

	_, err := fx.service.CreateChapter(context.Background(), uploaderClaims(), CreateInput{
		TitleID: "t1", Ordinal: 2, Name: "Duplicate", Pages: pages(2),
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Contains(t, ae.Message, "2")

	// No storage traffic and no new record
	assert.Zero(t, fx.ingestor.calls)
	assert.Len(t, fx.repo.chapters, 1)
}

/*
TestService_CreateChapter_UploadAbort checks that a mid-batch storage
failure leaves no chapter record behind.
*/
func TestService_CreateChapter_UploadAbort(t *testing.T) {
	fx := newFixture()
	fx.ingestor.failAt = 1

	_, err := fx.service.CreateChapter(context.Background(), uploaderClaims(), CreateInput{
		TitleID: "t1", Ordinal: 1, Name: "Doomed", Pages: pages(3),
	})

	require.Error(t, err)
	assert.Empty(t, fx.repo.chapters)
	assert.Equal(t, int64(0), fx.catalogue.titles["t1"].ChapterCount)
}

/*
TestService_CreateChapter_Authorization checks the privilege gate.
*/
func TestService_CreateChapter_Authorization(t *testing.T) {
	tests := []struct {
		name     string
		claims   *sec.AuthClaims
		wantCode string
	}{
		{"anonymous", nil, "UNAUTHORIZED"},
		{"member", &sec.AuthClaims{UserID: "u9", Role: string(sec.RoleMember)}, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture()

			_, err := fx.service.CreateChapter(context.Background(), tt.claims, CreateInput{
				TitleID: "t1", Ordinal: 1, Name: "X", Pages: pages(1),
			})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.As(err).Code)
			assert.Zero(t, fx.ingestor.calls)
		})
	}
}

/*
TestService_FreedOrdinalReuse covers the delete-then-recreate scenario:
soft-deleting the chapter at ordinal 2 frees the ordinal and repairs the
counter, and a new chapter may take ordinal 2 afterwards.
*/
func TestService_FreedOrdinalReuse(t *testing.T) {
	fx := newFixture()
	claims := uploaderClaims()

	for _, ordinal := range []float64{1, 2, 3} {
		_, err := fx.service.CreateChapter(context.Background(), claims, CreateInput{
			TitleID: "t1", Ordinal: ordinal, Name: fmt.Sprintf("Chapter %g", ordinal), Pages: pages(1),
		})
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), fx.catalogue.titles["t1"].ChapterCount)

	var middle string
	for id, c := range fx.repo.chapters {
		if c.Ordinal == 2 {
			middle = id
		}
	}
	require.NotEmpty(t, middle)

	require.NoError(t, fx.service.DeleteChapter(context.Background(), claims, middle))
	assert.Equal(t, int64(2), fx.catalogue.titles["t1"].ChapterCount)

	// The freed ordinal is no longer a conflict
	recreated, err := fx.service.CreateChapter(context.Background(), claims, CreateInput{
		TitleID: "t1", Ordinal: 2, Name: "Chapter 2, Take Two", Pages: pages(1),
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2), recreated.Ordinal)
	assert.Equal(t, int64(3), fx.catalogue.titles["t1"].ChapterCount)
}

/*
TestService_UpdateChapter_OrdinalConflict checks sibling conflicts on
update exclude the chapter itself.
*/
func TestService_UpdateChapter_OrdinalConflict(t *testing.T) {
	fx := newFixture()
	fx.repo.chapters["c1"] = &Chapter{ID: "c1", TitleID: "t1", Ordinal: 1, Name: "One", UploaderID: "owner-1"}
	fx.repo.chapters["c2"] = &Chapter{ID: "c2", TitleID: "t1", Ordinal: 2, Name: "Two", UploaderID: "owner-1"}
	claims := uploaderClaims()

	t.Run("same_ordinal_is_not_a_conflict", func(t *testing.T) {
		require.NoError(t, fx.service.UpdateChapter(context.Background(), claims, "c1", UpdateInput{Ordinal: pointer.To(1.0)}))
	})

	t.Run("sibling_ordinal_conflicts", func(t *testing.T) {
		err := fx.service.UpdateChapter(context.Background(), claims, "c1", UpdateInput{Ordinal: pointer.To(2.0)})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		assert.Equal(t, float64(1), fx.repo.chapters["c1"].Ordinal)
	})

	t.Run("free_ordinal_is_accepted", func(t *testing.T) {
		require.NoError(t, fx.service.UpdateChapter(context.Background(), claims, "c1", UpdateInput{Ordinal: pointer.To(2.5)}))
		assert.Equal(t, 2.5, fx.repo.chapters["c1"].Ordinal)
	})
}

/*
TestService_DeleteChapter_Authorization checks ownership rules on the
delete path.
*/
func TestService_DeleteChapter_Authorization(t *testing.T) {
	fx := newFixture()
	fx.repo.chapters["c1"] = &Chapter{ID: "c1", TitleID: "t1", Ordinal: 1, UploaderID: "owner-1"}

	err := fx.service.DeleteChapter(context.Background(), &sec.AuthClaims{UserID: "stranger", Role: string(sec.RoleUploader)}, "c1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Nil(t, fx.repo.chapters["c1"].DeletedAt)

	require.NoError(t, fx.service.DeleteChapter(context.Background(), &sec.AuthClaims{UserID: "mod", Role: string(sec.RoleModerator)}, "c1"))
	assert.NotNil(t, fx.repo.chapters["c1"].DeletedAt)
}
