package library

import (
	"context"

	"github.com/google/uuid"
)

// BookmarkRepository defines the interface for bookmark persistence
type BookmarkRepository interface {
	// Add saves a bookmark; adding one that already exists is a no-op
	Add(ctx context.Context, userID, fileID uuid.UUID) error

	// Remove deletes a bookmark; removing a missing one is a no-op
	Remove(ctx context.Context, userID, fileID uuid.UUID) error

	// ListFileIDs lists the user's bookmarked file IDs, most recent first
	ListFileIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// IsBookmarked reports whether the user has bookmarked the file
	IsBookmarked(ctx context.Context, userID, fileID uuid.UUID) (bool, error)
}
