// Copyright (c) 2026 Mangetsu. All rights reserved.

package visitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
)

type fakeRepo struct {
	recorded []*Visitor
	failNext bool
}

func (f *fakeRepo) RecordVisit(_ context.Context, visitor *Visitor) error {
	if f.failNext {
		return errors.New("pool exhausted")
	}
	f.recorded = append(f.recorded, visitor)
	return nil
}

func (f *fakeRepo) ListVisitors(_ context.Context, _, _ int) ([]*Visitor, int, error) {
	return f.recorded, len(f.recorded), nil
}

func (f *fakeRepo) Summarize(_ context.Context) (*Summary, error) {
	return &Summary{TotalVisitors: int64(len(f.recorded))}, nil
}

func newService(repo *fakeRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_Track_ClassifiesAgent(t *testing.T) {
	repo := &fakeRepo{}
	service := newService(repo)

	service.Track("203.0.113.9", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")

	require.Len(t, repo.recorded, 1)
	visitor := repo.recorded[0]
	assert.Equal(t, "203.0.113.9", visitor.IP)
	assert.Equal(t, "mobile", visitor.Device)
	assert.Equal(t, "safari", visitor.Browser)
	assert.Equal(t, "ios", visitor.OS)
}

func TestService_Track_SkipsEmptyIP(t *testing.T) {
	repo := &fakeRepo{}
	service := newService(repo)

	service.Track("", "curl/8.0")

	assert.Empty(t, repo.recorded)
}

func TestService_Track_SwallowsStoreFailure(t *testing.T) {
	repo := &fakeRepo{failNext: true}
	service := newService(repo)

	// Must not panic or propagate
	service.Track("203.0.113.9", "curl/8.0")

	assert.Empty(t, repo.recorded)
}

func TestService_AdminReads_RequireAdmin(t *testing.T) {
	repo := &fakeRepo{}
	service := newService(repo)
	member := &sec.AuthClaims{UserID: "u1", Role: string(sec.RoleMember)}
	admin := &sec.AuthClaims{UserID: "a1", Role: string(sec.RoleAdmin)}

	_, _, err := service.ListVisitors(context.Background(), member, 20, 0)
	require.Error(t, err)

	_, err = service.Summarize(context.Background(), member)
	require.Error(t, err)

	_, _, err = service.ListVisitors(context.Background(), admin, 20, 0)
	assert.NoError(t, err)

	summary, err := service.Summarize(context.Background(), admin)
	require.NoError(t, err)
	assert.NotNil(t, summary)
}
