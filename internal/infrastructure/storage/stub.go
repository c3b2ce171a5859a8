// Package storage provides object storage implementations for file uploads.
package storage

import (
	"context"
	"errors"
	"time"

	catalogapp "github.com/studyhub/backend/internal/application/catalog"
)

var errMissingStorageKey = errors.New("storage key is required")

// StubObjectStorage satisfies ObjectStorageService without talking to a
// real backend. Deployments without S3 credentials fall back to it so the
// catalog keeps working: links point at a placeholder host and every
// confirmation check succeeds.
type StubObjectStorage struct {
	// BaseURL is the host prefixed to generated links.
	BaseURL string
}

// NewStubObjectStorage creates a stub pointing at a placeholder host.
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: "https://storage.example.com"}
}

var _ catalogapp.ObjectStorageService = (*StubObjectStorage)(nil)

func (s *StubObjectStorage) signedURL(op, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errMissingStorageKey
	}
	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/" + op + "/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// GenerateUploadURL returns a placeholder upload link.
func (s *StubObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	return s.signedURL("upload", storageKey, expiresIn)
}

// GenerateDownloadURL returns a placeholder download link.
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.signedURL("download", storageKey, expiresIn)
}

// DeleteObject succeeds without deleting anything.
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errMissingStorageKey
	}
	return nil
}

// ObjectExists reports true for every key so the upload confirmation flow
// stays usable without a backend.
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errMissingStorageKey
	}
	return true, nil
}
