package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
)

// SubjectService handles subject-related business operations
type SubjectService struct {
	subjectRepo catalog.SubjectRepository
	branchRepo  catalog.BranchRepository
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(subjectRepo catalog.SubjectRepository, branchRepo catalog.BranchRepository) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		branchRepo:  branchRepo,
	}
}

// Create creates a new subject with its branch membership
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*SubjectResponse, error) {
	exists, err := s.subjectRepo.ExistsByCourseCode(ctx, req.CourseCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Subject with this course code already exists")
	}

	if err := s.ensureBranchesExist(ctx, req.BranchIDs); err != nil {
		return nil, err
	}

	subject, err := catalog.NewSubject(req.Name, req.CourseCode, req.BranchIDs, req.IsGlobal)
	if err != nil {
		return nil, err
	}

	if err := s.subjectRepo.Save(ctx, subject); err != nil {
		return nil, err
	}

	resp := ToSubjectResponse(subject)
	return &resp, nil
}

// ListBySelector lists subjects scoped by branch ID, branch slug, or the
// global pool. Exactly one dimension must be set.
func (s *SubjectService) ListBySelector(ctx context.Context, selector catalog.SubjectSelector) ([]SubjectResponse, error) {
	if err := selector.Validate(); err != nil {
		return nil, err
	}

	subjects, err := s.subjectRepo.FindBySelector(ctx, selector)
	if err != nil {
		return nil, err
	}

	responses := make([]SubjectResponse, len(subjects))
	for i, subject := range subjects {
		responses[i] = ToSubjectResponse(&subject)
	}
	return responses, nil
}

// Get resolves a subject by slug first, UUID second
func (s *SubjectService) Get(ctx context.Context, slugOrID string) (*SubjectResponse, error) {
	subject, err := s.resolve(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	resp := ToSubjectResponse(subject)
	return &resp, nil
}

// Update updates a subject; the slug is regenerated only when the name or
// course code changes
func (s *SubjectService) Update(ctx context.Context, id uuid.UUID, req UpdateSubjectRequest) (*SubjectResponse, error) {
	subject, err := s.subjectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := subject.Name
	if req.Name != nil {
		name = *req.Name
	}
	courseCode := subject.CourseCode
	if req.CourseCode != nil {
		courseCode = *req.CourseCode
	}
	branchIDs := subject.BranchIDs
	if req.BranchIDs != nil {
		branchIDs = *req.BranchIDs
		if err := s.ensureBranchesExist(ctx, branchIDs); err != nil {
			return nil, err
		}
	}
	isGlobal := subject.IsGlobal
	if req.IsGlobal != nil {
		isGlobal = *req.IsGlobal
	}

	if courseCode != subject.CourseCode {
		exists, err := s.subjectRepo.ExistsByCourseCode(ctx, courseCode)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Subject with this course code already exists")
		}
	}

	if err := subject.Update(name, courseCode, branchIDs, isGlobal); err != nil {
		return nil, err
	}

	if err := s.subjectRepo.Save(ctx, subject); err != nil {
		return nil, err
	}

	resp := ToSubjectResponse(subject)
	return &resp, nil
}

// Delete deletes a subject unless files still reference it
func (s *SubjectService) Delete(ctx context.Context, id uuid.UUID) error {
	subject, err := s.subjectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hasFiles, err := s.subjectRepo.HasFiles(ctx, subject.ID)
	if err != nil {
		return err
	}
	if hasFiles {
		return shared.NewDomainError("STILL_REFERENCED", "Cannot delete subject with associated files")
	}

	return s.subjectRepo.Delete(ctx, id)
}

// ensureBranchesExist verifies every referenced branch exists
func (s *SubjectService) ensureBranchesExist(ctx context.Context, branchIDs []uuid.UUID) error {
	for _, branchID := range branchIDs {
		if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_BRANCH", "Referenced branch not found")
			}
			return err
		}
	}
	return nil
}

// resolve looks a subject up by slug, falling back to UUID
func (s *SubjectService) resolve(ctx context.Context, slugOrID string) (*catalog.Subject, error) {
	subject, err := s.subjectRepo.FindBySlug(ctx, slugOrID)
	if err == nil {
		return subject, nil
	}
	if id, parseErr := uuid.Parse(slugOrID); parseErr == nil {
		return s.subjectRepo.FindByID(ctx, id)
	}
	return nil, err
}
