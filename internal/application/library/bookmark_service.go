package library

import (
	"context"
	"errors"

	"github.com/google/uuid"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/library"
	"github.com/studyhub/backend/internal/domain/shared"
)

// BookmarkService handles bookmark-related business operations
type BookmarkService struct {
	bookmarkRepo library.BookmarkRepository
	fileRepo     catalog.FileRepository
}

// NewBookmarkService creates a new BookmarkService
func NewBookmarkService(bookmarkRepo library.BookmarkRepository, fileRepo catalog.FileRepository) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		fileRepo:     fileRepo,
	}
}

// Add bookmarks a file for the user. Re-adding an existing bookmark is a
// no-op so the operation stays safe to retry.
func (s *BookmarkService) Add(ctx context.Context, userID, fileID uuid.UUID) error {
	if _, err := s.fileRepo.FindByID(ctx, fileID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_FILE", "File not found")
		}
		return err
	}
	return s.bookmarkRepo.Add(ctx, userID, fileID)
}

// Remove deletes the user's bookmark for a file; removing a missing
// bookmark is a no-op
func (s *BookmarkService) Remove(ctx context.Context, userID, fileID uuid.UUID) error {
	return s.bookmarkRepo.Remove(ctx, userID, fileID)
}

// List returns the user's bookmarked files, most recently bookmarked first.
// Bookmarks whose file has since been deleted are silently skipped.
func (s *BookmarkService) List(ctx context.Context, userID uuid.UUID) (*BookmarkListResponse, error) {
	fileIDs, err := s.bookmarkRepo.ListFileIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(fileIDs) == 0 {
		return &BookmarkListResponse{Files: []catalogapp.FileResponse{}}, nil
	}

	files, err := s.fileRepo.FindByIDs(ctx, fileIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.File, len(files))
	for i := range files {
		byID[files[i].ID] = &files[i]
	}

	responses := make([]catalogapp.FileResponse, 0, len(fileIDs))
	for _, id := range fileIDs {
		if file, ok := byID[id]; ok {
			responses = append(responses, catalogapp.ToFileResponse(file))
		}
	}

	return &BookmarkListResponse{
		Files: responses,
		Total: len(responses),
	}, nil
}

// IsBookmarked reports whether the user has bookmarked the file
func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	return s.bookmarkRepo.IsBookmarked(ctx, userID, fileID)
}
