package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
)

// BranchService handles branch-related business operations
type BranchService struct {
	branchRepo catalog.BranchRepository
}

// NewBranchService creates a new BranchService
func NewBranchService(branchRepo catalog.BranchRepository) *BranchService {
	return &BranchService{branchRepo: branchRepo}
}

// Create creates a new branch
func (s *BranchService) Create(ctx context.Context, req CreateBranchRequest) (*BranchResponse, error) {
	exists, err := s.branchRepo.ExistsByShortName(ctx, req.ShortName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch with this short name already exists")
	}

	branch, err := catalog.NewBranch(req.Name, req.ShortName)
	if err != nil {
		return nil, err
	}

	taken, err := s.branchRepo.ExistsBySlug(ctx, branch.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch with this name already exists")
	}

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}

	resp := ToBranchResponse(branch)
	return &resp, nil
}

// List retrieves all branches ordered by name
func (s *BranchService) List(ctx context.Context) ([]BranchResponse, error) {
	branches, err := s.branchRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	responses := make([]BranchResponse, len(branches))
	for i, b := range branches {
		responses[i] = ToBranchResponse(&b)
	}
	return responses, nil
}

// Get resolves a branch by slug first, UUID second
func (s *BranchService) Get(ctx context.Context, slugOrID string) (*BranchResponse, error) {
	branch, err := s.resolve(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// Update updates a branch; the slug follows the name
func (s *BranchService) Update(ctx context.Context, id uuid.UUID, req UpdateBranchRequest) (*BranchResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := branch.Name
	if req.Name != nil {
		name = *req.Name
	}
	shortName := branch.ShortName
	if req.ShortName != nil {
		shortName = *req.ShortName
	}

	if shortName != branch.ShortName {
		exists, err := s.branchRepo.ExistsByShortName(ctx, shortName)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch with this short name already exists")
		}
	}

	if err := branch.Update(name, shortName); err != nil {
		return nil, err
	}

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}

	resp := ToBranchResponse(branch)
	return &resp, nil
}

// Delete deletes a branch unless subjects still reference it
func (s *BranchService) Delete(ctx context.Context, id uuid.UUID) error {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hasSubjects, err := s.branchRepo.HasSubjects(ctx, branch.ID)
	if err != nil {
		return err
	}
	if hasSubjects {
		return shared.NewDomainError("STILL_REFERENCED", "Cannot delete branch with associated subjects")
	}

	return s.branchRepo.Delete(ctx, id)
}

// resolve looks a branch up by slug, falling back to UUID
func (s *BranchService) resolve(ctx context.Context, slugOrID string) (*catalog.Branch, error) {
	branch, err := s.branchRepo.FindBySlug(ctx, slugOrID)
	if err == nil {
		return branch, nil
	}
	if id, parseErr := uuid.Parse(slugOrID); parseErr == nil {
		return s.branchRepo.FindByID(ctx, id)
	}
	return nil, err
}
