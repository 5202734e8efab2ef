// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Uploads: Asset folder taxonomy and presign lifetimes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mangetsu-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Large enough to accept multi-page chapter uploads on slow links.
	DefaultReadTimeout = 120 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 90 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "mangetsu.app"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"
)

// # Uploads & Asset Storage

const (
	// FolderCovers is the object-storage prefix for title cover images.
	FolderCovers = "covers"

	// FolderPages is the object-storage prefix for chapter page images.
	FolderPages = "pages"

	// FolderAvatars is the object-storage prefix for user avatars.
	FolderAvatars = "avatars"

	// PresignPutTTL is the lifetime of a presigned upload URL.
	PresignPutTTL = 15 * time.Minute

	// PresignGetTTL is the lifetime of a presigned download URL, used only
	// when no public CDN domain is configured.
	PresignGetTTL = 1 * time.Hour

	// MultipartMemoryLimit is how much of a multipart body is held in
	// memory before spilling to temporary files.
	MultipartMemoryLimit = 32 << 20

	// PageDefaultWidth is the width recorded for a page whose source
	// image declares no dimensions. Pages are streamed to storage
	// without decoding, so dimensions are never read from the payload.
	PageDefaultWidth = 800

	// PageDefaultHeight is the height counterpart of [PageDefaultWidth].
	PageDefaultHeight = 1200
)

// # Notifications

const (
	// NotificationDedupWindow is the rolling window inside which an
	// equivalent notification (same type, actor, recipient, target) is
	// considered a duplicate and not stored again.
	NotificationDedupWindow = 24 * time.Hour
)

// # Analytics

const (
	// VisitorSessionGap is how long a client must be idle before its next
	// page view counts as a new visit.
	VisitorSessionGap = 30 * time.Minute
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore      = "core"
	SchemaUsers     = "users"
	SchemaSocial    = "social"
	SchemaAnalytics = "analytics"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResetToken  = "auth:reset_token:"
	RedisPrefixVerifyToken = "auth:verify_token:"
)
