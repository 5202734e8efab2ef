// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package upload implements the binary asset ingestion pipeline.

It sits between the HTTP layer and object storage: payloads are
validated (MIME type, size), given a globally unique storage key, and
pushed to the store. Batches are sequential; the first failing payload
aborts the rest of the batch while already-uploaded objects stay in
storage. No chapter or title record references them at that point, so
they are unreachable orphans rather than corrupt state.

Key format: <folder>/<unix-millis>-<8-hex-random>.<ext>. The random
suffix keeps keys unique when the same user uploads twice inside one
millisecond.
*/
package upload

import "io"

// # Payload Types

// File is one inbound binary payload with its declared metadata.
type File struct {
	Name        string    // original client-side filename
	Size        int64     // declared size in bytes
	ContentType string    // declared MIME type
	Reader      io.Reader // payload body, consumed exactly once
}

// Result describes one successfully stored asset.
type Result struct {
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"` // final storage key
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// PresignResult authorizes a direct client-to-storage upload.
type PresignResult struct {
	PresignedURL string `json:"presignedUrl"`
	FileKey      string `json:"fileKey"`
	Bucket       string `json:"bucket"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

// # Field Identifiers

const (
	FieldFile        = "file"
	FieldFilename    = "filename"
	FieldContentType = "content_type"
	FieldFolder      = "folder"
)
