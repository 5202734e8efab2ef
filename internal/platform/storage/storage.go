// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package storage provides the object-storage collaborator for binary assets.

It wraps a MinIO/S3-compatible client behind a narrow interface so the
upload pipeline never touches SDK types directly.

Core Responsibilities:

  - Durability: Cover and page images are persisted outside the database.
  - Addressing: Objects are keyed, never pathed; public URLs are derived.
  - Delegation: Signed upload/download URLs let clients talk to storage directly.

Timeouts, retries, and credential handling are delegated entirely to the
underlying SDK; a failed call is surfaced as a terminal error to the caller.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// # Contracts

// ObjectStore defines the object-storage operations the platform relies on.
type ObjectStore interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// PresignPut generates a signed URL authorizing a direct client upload.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)

	// PresignGet generates a signed download URL for a private object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL resolves the canonical public URL for a stored key.
	PublicURL(key string) string

	// Bucket returns the bucket objects are stored in.
	Bucket() string
}

// # MinIO Implementation

// MinioStore implements [ObjectStore] for MinIO/S3-compatible storage.
type MinioStore struct {
	client       *minio.Client
	bucket       string
	publicDomain string
}

// Options holds the connection settings for [NewMinioStore].
type Options struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	PublicDomain string // optional CDN base URL; "" falls back to presigned GETs
}

// NewMinioStore connects to the storage endpoint and ensures the bucket exists.
func NewMinioStore(ctx context.Context, opts Options, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to init client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(checkCtx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: failed to create bucket: %w", err)
		}
	}

	logger.Info("object storage connected",
		slog.String("endpoint", opts.Endpoint),
		slog.String("bucket", opts.Bucket),
	)

	return &MinioStore{
		client:       client,
		bucket:       opts.Bucket,
		publicDomain: strings.TrimSuffix(opts.PublicDomain, "/"),
	}, nil
}

// Put uploads an object under key with the declared content type.
func (store *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := store.client.PutObject(ctx, store.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: failed to put object %q: %w", key, err)
	}
	return nil
}

// PresignPut generates a signed URL authorizing a direct client upload.
func (store *MinioStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	signed, err := store.client.PresignedPutObject(ctx, store.bucket, key, expiry)
	if err != nil {
		return "", fmt.Errorf("storage: failed to presign put for %q: %w", key, err)
	}
	return signed.String(), nil
}

// PresignGet generates a signed download URL for a private object.
func (store *MinioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	signed, err := store.client.PresignedGetObject(ctx, store.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("storage: failed to presign get for %q: %w", key, err)
	}
	return signed.String(), nil
}

// Delete removes an object from the bucket.
func (store *MinioStore) Delete(ctx context.Context, key string) error {
	if err := store.client.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: failed to delete object %q: %w", key, err)
	}
	return nil
}

// PublicURL resolves the canonical public URL for a stored key.
//
// When a CDN domain is configured the URL is stable and cacheable;
// otherwise callers should use [MinioStore.PresignGet] instead.
func (store *MinioStore) PublicURL(key string) string {
	if store.publicDomain == "" {
		return ""
	}
	return store.publicDomain + "/" + key
}

// Bucket returns the configured bucket name.
func (store *MinioStore) Bucket() string {
	return store.bucket
}

// Healthy verifies the bucket is still reachable. Used by readiness probes.
func (store *MinioStore) Healthy(ctx context.Context) error {
	exists, err := store.client.BucketExists(ctx, store.bucket)
	if err != nil {
		return fmt.Errorf("storage: health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage: bucket %q is gone", store.bucket)
	}
	return nil
}
