// Copyright (c) 2026 Mangetsu. All rights reserved.

package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
)

// # Test Doubles

// fakeObjectStore records Put calls and can be primed to fail at a
// given call index.
type fakeObjectStore struct {
	objects  map[string][]byte
	putOrder []string
	failAt   int // 0-based Put index that fails; -1 = never
	putCalls int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte), failAt: -1}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	index := f.putCalls
	f.putCalls++
	if index == f.failAt {
		return errors.New("storage unreachable")
	}
	body, _ := io.ReadAll(r)
	f.objects[key] = body
	f.putOrder = append(f.putOrder, key)
	return nil
}

func (f *fakeObjectStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/signed-put/" + key, nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/signed-get/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.mangetsu.app/" + key
}

func (f *fakeObjectStore) Bucket() string { return "mangetsu-assets" }

// # Helpers

func testService(store *fakeObjectStore) *Service {
	return NewService(store, 1<<20, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func jpeg(name, body string) File {
	return File{Name: name, Size: int64(len(body)), ContentType: "image/jpeg", Reader: strings.NewReader(body)}
}

// # Tests

var keyPattern = regexp.MustCompile(`^pages/\d{13}-[0-9a-f]{8}\.jpg$`)

/*
TestService_DeriveKey checks the key format and that two keys derived in
the same instant never collide.
*/
func TestService_DeriveKey(t *testing.T) {
	service := testService(newFakeObjectStore())

	first := service.DeriveKey("pages", "scan_001.jpg", "image/jpeg")
	second := service.DeriveKey("pages", "scan_001.jpg", "image/jpeg")

	assert.Regexp(t, keyPattern, first)
	assert.Regexp(t, keyPattern, second)
	assert.NotEqual(t, first, second)
}

/*
TestService_DeriveKey_Extension verifies the original filename's
extension wins when safe and falls back to the declared type otherwise.
*/
func TestService_DeriveKey_Extension(t *testing.T) {
	service := testService(newFakeObjectStore())

	tests := []struct {
		name         string
		originalName string
		contentType  string
		wantSuffix   string
	}{
		{"original_extension_kept", "scan_001.png", "image/png", ".png"},
		{"uppercase_normalized", "SCAN_001.JPEG", "image/jpeg", ".jpeg"},
		{"unsafe_extension_falls_back", "page.exe", "image/jpeg", ".jpg"},
		{"missing_name_falls_back", "", "image/webp", ".webp"},
		{"unknown_everything", "payload", "application/octet-stream", ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := service.DeriveKey("pages", tt.originalName, tt.contentType)
			assert.True(t, strings.HasSuffix(key, tt.wantSuffix), "key %q should end with %q", key, tt.wantSuffix)
		})
	}
}

/*
TestService_Ingest_Validation verifies rejected payloads never reach
object storage.
*/
func TestService_Ingest_Validation(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"unsupported_type", File{Name: "x.gif", Size: 10, ContentType: "image/gif", Reader: strings.NewReader("0123456789")}},
		{"empty_payload", File{Name: "x.jpg", Size: 0, ContentType: "image/jpeg", Reader: strings.NewReader("")}},
		{"oversized_payload", File{Name: "x.jpg", Size: 2 << 20, ContentType: "image/jpeg", Reader: strings.NewReader("big")}},
		{"missing_name", File{Name: "", Size: 10, ContentType: "image/jpeg", Reader: strings.NewReader("0123456789")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeObjectStore()
			service := testService(store)

			_, err := service.Ingest(context.Background(), "covers", tt.file)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			assert.Zero(t, store.putCalls)
		})
	}
}

/*
TestService_Ingest_Success checks the stored object and the returned
asset descriptor.
*/
func TestService_Ingest_Success(t *testing.T) {
	store := newFakeObjectStore()
	service := testService(store)

	result, err := service.Ingest(context.Background(), "pages", jpeg("page-01.jpg", "fakejpegbytes"))
	require.NoError(t, err)

	assert.Equal(t, "page-01.jpg", result.OriginalName)
	assert.Regexp(t, keyPattern, result.Filename)
	assert.Equal(t, "https://cdn.mangetsu.app/"+result.Filename, result.URL)
	assert.Equal(t, int64(len("fakejpegbytes")), result.Size)
	assert.Equal(t, "image/jpeg", result.Type)
	assert.Equal(t, []byte("fakejpegbytes"), store.objects[result.Filename])
}

/*
TestService_IngestBatch_Order verifies results come back in input order.
*/
func TestService_IngestBatch_Order(t *testing.T) {
	store := newFakeObjectStore()
	service := testService(store)

	files := []File{jpeg("a.jpg", "aa"), jpeg("b.jpg", "bb"), jpeg("c.jpg", "cc")}
	results, err := service.IngestBatch(context.Background(), "pages", files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		assert.Equal(t, name, results[i].OriginalName)
		assert.Equal(t, results[i].Filename, store.putOrder[i])
	}
}

/*
TestService_IngestBatch_AbortOnFailure checks the sequential-with-abort
contract: files before the failure stay in storage, nothing after the
failure is uploaded, and the caller gets the error.
*/
func TestService_IngestBatch_AbortOnFailure(t *testing.T) {
	store := newFakeObjectStore()
	store.failAt = 1
	service := testService(store)

	files := []File{jpeg("a.jpg", "aa"), jpeg("b.jpg", "bb"), jpeg("c.jpg", "cc")}
	results, err := service.IngestBatch(context.Background(), "pages", files)

	require.Error(t, err)
	assert.Nil(t, results)
	assert.Equal(t, "INTERNAL_ERROR", apperr.As(err).Code)

	// The first object is an orphan in storage; the third was never sent.
	assert.Len(t, store.objects, 1)
	assert.Equal(t, 2, store.putCalls)
}

/*
TestService_IngestBatch_ValidatesBeforeUpload ensures a malformed file
anywhere in the batch prevents all uploads.
*/
func TestService_IngestBatch_ValidatesBeforeUpload(t *testing.T) {
	store := newFakeObjectStore()
	service := testService(store)

	files := []File{
		jpeg("a.jpg", "aa"),
		{Name: "b.gif", Size: 2, ContentType: "image/gif", Reader: strings.NewReader("bb")},
	}

	_, err := service.IngestBatch(context.Background(), "pages", files)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Zero(t, store.putCalls)
}

/*
TestService_PresignUpload checks the delegated upload contract.
*/
func TestService_PresignUpload(t *testing.T) {
	service := testService(newFakeObjectStore())

	t.Run("valid", func(t *testing.T) {
		result, err := service.PresignUpload(context.Background(), "covers", "image/png")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(result.PresignedURL, "https://storage.test/signed-put/"))
		assert.True(t, strings.HasPrefix(result.FileKey, "covers/"))
		assert.True(t, strings.HasSuffix(result.FileKey, ".png"))
		assert.Equal(t, "mangetsu-assets", result.Bucket)
		assert.Equal(t, int64(900), result.ExpiresIn)
	})

	t.Run("unknown_folder", func(t *testing.T) {
		_, err := service.PresignUpload(context.Background(), "../etc", "image/png")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}
