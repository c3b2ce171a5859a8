package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/shared"
)

// BranchRepository defines the interface for branch persistence
type BranchRepository interface {
	// FindByID finds a branch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)

	// FindBySlug finds a branch by its slug
	FindBySlug(ctx context.Context, slug string) (*Branch, error)

	// FindAll finds all branches matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Branch, error)

	// Save creates or updates a branch
	Save(ctx context.Context, branch *Branch) error

	// Delete deletes a branch
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByShortName checks if a branch with the given short name exists
	ExistsByShortName(ctx context.Context, shortName string) (bool, error)

	// ExistsBySlug checks if a branch with the given slug exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// HasSubjects checks if any subject still references the branch
	HasSubjects(ctx context.Context, branchID uuid.UUID) (bool, error)

	// Count counts branches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
