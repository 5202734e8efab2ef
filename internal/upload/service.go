// Copyright (c) 2026 Mangetsu. All rights reserved.

package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/storage"
	"github.com/mangetsu-app/mangetsu/internal/platform/validate"
)

// # MIME Policy

// allowedTypes is the accepted image MIME set. Everything else is
// rejected before any storage call is made.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// allowedExtensions is the extension set a client-supplied filename may
// contribute to the storage key. Anything else falls back to the
// extension implied by the declared content type.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// allowedFolders prevents clients from writing outside the known
// asset taxonomy via the presign endpoint.
var allowedFolders = map[string]bool{
	constants.FolderCovers:  true,
	constants.FolderPages:   true,
	constants.FolderAvatars: true,
}

// # Service Layer

// Service is the asset ingestion pipeline.
type Service struct {
	store    storage.ObjectStore
	maxBytes int64
	logger   *slog.Logger
}

// NewService constructs the ingestion [Service].
func NewService(store storage.ObjectStore, maxBytes int64, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// # Validation

/*
validateFile checks a payload's declared type and size against policy.

Returns:
  - error: apperr.ValidationError naming the offending field
*/
func (service *Service) validateFile(file File) error {
	validator := &validate.Validator{}
	validator.Required(FieldFilename, file.Name)

	if _, ok := allowedTypes[file.ContentType]; !ok {
		validator.Custom(FieldContentType, true, fmt.Sprintf("unsupported type %q; allowed: image/jpeg, image/png, image/webp", file.ContentType))
	}

	if file.Size <= 0 {
		validator.Custom(FieldFile, true, "empty payload")
	} else if file.Size > service.maxBytes {
		validator.Custom(FieldFile, true, fmt.Sprintf("payload of %d bytes exceeds the %d byte limit", file.Size, service.maxBytes))
	}

	return validator.Err()
}

// # Key Derivation

/*
DeriveKey builds a globally-unique storage key for a payload.

Description: Combines the logical folder, the current unix-millisecond
timestamp, an 8-hex-char random disambiguator, and the original
filename's extension. An unknown or missing extension falls back to the
one implied by the declared content type. The timestamp alone is not
unique under concurrent uploads inside the same millisecond; the random
suffix is.
*/
func (service *Service) DeriveKey(folder, originalName, contentType string) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)

	ext := Extension(originalName)
	if !allowedExtensions[ext] {
		ext = allowedTypes[contentType]
	}
	if ext == "" {
		ext = ".bin"
	}

	return fmt.Sprintf("%s/%d-%s%s", folder, time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
}

// # Ingestion

/*
Ingest validates and stores a single payload.

Parameters:
  - context: context.Context
  - folder: string (Logical asset folder, e.g. "covers")
  - file: File (The payload)

Returns:
  - Result: Final key, canonical URL, and echoed metadata
  - error: Validation errors, or apperr.Internal on storage failure
*/
func (service *Service) Ingest(context context.Context, folder string, file File) (Result, error) {

	if err := service.validateFile(file); err != nil {
		return Result{}, err
	}

	key := service.DeriveKey(folder, file.Name, file.ContentType)

	if err := service.store.Put(context, key, file.Reader, file.Size, file.ContentType); err != nil {
		service.logger.Error("asset_upload_failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return Result{}, apperr.Internal(err)
	}

	service.logger.Info("asset_uploaded",
		slog.String("key", key),
		slog.Int64("size", file.Size),
		slog.String("type", file.ContentType),
	)

	return Result{
		OriginalName: file.Name,
		Filename:     key,
		URL:          service.resolveURL(context, key),
		Size:         file.Size,
		Type:         file.ContentType,
	}, nil
}

/*
IngestBatch stores a batch of payloads sequentially, in input order.

Description: The whole batch is validated up front so a malformed file
in position k never causes files 1..k-1 to be uploaded. After that,
upload failure at position k aborts the batch; objects 1..k-1 stay in
storage as unreferenced orphans and the error is returned to the caller.
There is no compensating delete.

Returns:
  - []Result: One entry per payload, in input order
  - error: The first validation or storage error encountered
*/
func (service *Service) IngestBatch(context context.Context, folder string, files []File) ([]Result, error) {

	if len(files) == 0 {
		return nil, apperr.ValidationError("no files in batch")
	}

	// Full-batch validation before the first byte is uploaded
	for _, file := range files {
		if err := service.validateFile(file); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(files))
	for index, file := range files {
		result, err := service.Ingest(context, folder, file)
		if err != nil {
			service.logger.Error("asset_batch_aborted",
				slog.Int("failed_index", index),
				slog.Int("uploaded", len(results)),
			)
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

/*
Discard removes stored objects best-effort.

Description: Used to clean up uploaded assets whose owning record was
never written. Each failure is logged and skipped; a leftover object is
preferable to failing the caller's error path.
*/
func (service *Service) Discard(context context.Context, keys []string) {
	for _, key := range keys {
		if err := service.store.Delete(context, key); err != nil {
			service.logger.Warn("asset_discard_failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
}

// # Delegated Uploads

/*
PresignUpload authorizes a direct client-to-storage upload.

Description: Derives the final key server-side so clients cannot choose
arbitrary keys, then signs a PUT URL for it. The folder must belong to
the known asset taxonomy.

Returns:
  - PresignResult: Signed URL, final key, bucket, and TTL in seconds
  - error: Validation errors, or apperr.Internal on signing failure
*/
func (service *Service) PresignUpload(context context.Context, folder, contentType string) (PresignResult, error) {

	validator := &validate.Validator{}
	if !allowedFolders[folder] {
		validator.Custom(FieldFolder, true, fmt.Sprintf("unknown folder %q", folder))
	}
	if _, ok := allowedTypes[contentType]; !ok {
		validator.Custom(FieldContentType, true, fmt.Sprintf("unsupported type %q", contentType))
	}
	if err := validator.Err(); err != nil {
		return PresignResult{}, err
	}

	key := service.DeriveKey(folder, "", contentType)

	signedURL, err := service.store.PresignPut(context, key, constants.PresignPutTTL)
	if err != nil {
		service.logger.Error("presign_failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return PresignResult{}, apperr.Internal(err)
	}

	return PresignResult{
		PresignedURL: signedURL,
		FileKey:      key,
		Bucket:       service.store.Bucket(),
		ExpiresIn:    int64(constants.PresignPutTTL.Seconds()),
	}, nil
}

// # Internal Helpers

// resolveURL prefers the stable CDN URL and falls back to a signed GET.
func (service *Service) resolveURL(context context.Context, key string) string {
	if publicURL := service.store.PublicURL(key); publicURL != "" {
		return publicURL
	}

	signedURL, err := service.store.PresignGet(context, key, constants.PresignGetTTL)
	if err != nil {
		service.logger.Warn("presign_get_failed", slog.String("key", key))
		return ""
	}
	return signedURL
}

// Extension extracts a lowercase file extension incl. the dot.
func Extension(filename string) string {
	return strings.ToLower(path.Ext(filename))
}
