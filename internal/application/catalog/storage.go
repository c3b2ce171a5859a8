package catalog

import (
	"context"
	"strings"
	"time"
)

// AllowedContentTypes is the whitelist of content types accepted for study
// material uploads. SVG is excluded because it can carry scripts.
var AllowedContentTypes = map[string]bool{
	// Documents
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	// Scanned notes and diagrams
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	// Text
	"text/plain": true,
	"text/csv":   true,
	// Bundled material
	"application/zip": true,
}

// ObjectStorageService defines the object storage operations the upload flow
// needs. Implemented by the infrastructure layer (S3-compatible backends).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// isAllowedContentType checks a content type against the whitelist
func isAllowedContentType(contentType string) bool {
	return AllowedContentTypes[strings.ToLower(contentType)]
}
