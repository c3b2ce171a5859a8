package catalog

import (
	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/shared"
)

// SubjectSelector picks exactly one way to scope a subject listing: by
// branch ID, by branch slug, or the global subjects. Construct it through
// the helpers below; the zero value is invalid.
type SubjectSelector struct {
	branchID   *uuid.UUID
	branchSlug *string
	global     bool
}

// ByBranchID selects subjects belonging to the branch with the given ID
func ByBranchID(id uuid.UUID) SubjectSelector {
	return SubjectSelector{branchID: &id}
}

// ByBranchSlug selects subjects belonging to the branch with the given slug
func ByBranchSlug(slug string) SubjectSelector {
	return SubjectSelector{branchSlug: &slug}
}

// GlobalSubjects selects subjects marked visible regardless of branch
func GlobalSubjects() SubjectSelector {
	return SubjectSelector{global: true}
}

// Validate ensures exactly one selector dimension is set
func (s SubjectSelector) Validate() error {
	n := 0
	if s.branchID != nil {
		n++
	}
	if s.branchSlug != nil {
		n++
	}
	if s.global {
		n++
	}
	if n != 1 {
		return shared.NewDomainError("INVALID_SELECTOR", "Exactly one of branch ID, branch slug, or global must be supplied")
	}
	return nil
}

// BranchID returns the branch ID selector, if set
func (s SubjectSelector) BranchID() (uuid.UUID, bool) {
	if s.branchID == nil {
		return uuid.Nil, false
	}
	return *s.branchID, true
}

// BranchSlug returns the branch slug selector, if set
func (s SubjectSelector) BranchSlug() (string, bool) {
	if s.branchSlug == nil {
		return "", false
	}
	return *s.branchSlug, true
}

// IsGlobal reports whether the selector targets global subjects
func (s SubjectSelector) IsGlobal() bool {
	return s.global
}
