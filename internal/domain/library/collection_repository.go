package library

import (
	"context"

	"github.com/google/uuid"
)

// CollectionRepository defines the interface for collection persistence
type CollectionRepository interface {
	// FindByID finds a collection by its ID, with membership loaded in
	// insertion order
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)

	// FindByCreator lists a user's collections with membership loaded
	FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]Collection, error)

	// Save creates or updates a collection
	Save(ctx context.Context, collection *Collection) error

	// Delete deletes a collection and its membership rows
	Delete(ctx context.Context, id uuid.UUID) error

	// AddFile appends a file to the collection as a single atomic set-add;
	// adding an existing member is a no-op
	AddFile(ctx context.Context, collectionID, fileID uuid.UUID) error

	// RemoveFile removes a file from the collection; removing a missing
	// member is a no-op
	RemoveFile(ctx context.Context, collectionID, fileID uuid.UUID) error

	// ContainsFileForUser reports whether at least one of the user's
	// collections contains the file
	ContainsFileForUser(ctx context.Context, userID, fileID uuid.UUID) (bool, error)
}
