package catalog

import (
	"context"

	"github.com/google/uuid"
)

// SubjectRepository defines the interface for subject persistence
type SubjectRepository interface {
	// FindByID finds a subject by its ID, with branch membership loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Subject, error)

	// FindBySlug finds a subject by its slug, with branch membership loaded
	FindBySlug(ctx context.Context, slug string) (*Subject, error)

	// FindByIDs finds subjects by their IDs, without branch membership
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Subject, error)

	// FindBySelector lists subjects scoped by exactly one selector dimension
	FindBySelector(ctx context.Context, selector SubjectSelector) ([]Subject, error)

	// Save creates or updates a subject and replaces its branch membership
	Save(ctx context.Context, subject *Subject) error

	// Delete deletes a subject and its branch membership rows
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCourseCode checks if a subject with the given course code exists
	ExistsByCourseCode(ctx context.Context, courseCode string) (bool, error)

	// HasFiles checks if any file still references the subject
	HasFiles(ctx context.Context, subjectID uuid.UUID) (bool, error)

	// LoadBranches loads the subject's branch membership from the join table
	LoadBranches(ctx context.Context, subject *Subject) error
}
