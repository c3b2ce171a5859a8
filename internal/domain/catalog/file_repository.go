package catalog

import (
	"context"

	"github.com/google/uuid"
)

// SearchFilter narrows a file search. Query is matched case-insensitively
// as a substring of the file name; branch and subject slugs are optional.
type SearchFilter struct {
	Query       string
	BranchSlug  string
	SubjectSlug string
	Limit       int
}

// FileRepository defines the interface for file persistence
type FileRepository interface {
	// FindByID finds a file by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*File, error)

	// FindBySlug finds a file by its slug
	FindBySlug(ctx context.Context, slug string) (*File, error)

	// FindBySubjectID lists the subject's files sorted lexicographically by
	// relative path. The ordering is load-bearing: it keeps files of the
	// same sub-folder contiguous for the grouping step.
	FindBySubjectID(ctx context.Context, subjectID uuid.UUID) ([]File, error)

	// FindByIDs finds files by their IDs, preserving no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]File, error)

	// Search finds files by case-insensitive file name substring with
	// optional branch and subject scoping
	Search(ctx context.Context, filter SearchFilter) ([]File, error)

	// Save creates or updates a file
	Save(ctx context.Context, file *File) error

	// Delete deletes a file
	Delete(ctx context.Context, id uuid.UUID) error

	// Like atomically increments the file's like counter
	Like(ctx context.Context, id uuid.UUID) error

	// Unlike atomically decrements the file's like counter, never below zero
	Unlike(ctx context.Context, id uuid.UUID) error
}
