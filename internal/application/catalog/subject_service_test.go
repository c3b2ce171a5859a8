package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
)

func newTestSubject(t *testing.T, name, courseCode string, branchIDs []uuid.UUID, isGlobal bool) *catalog.Subject {
	t.Helper()
	subject, err := catalog.NewSubject(name, courseCode, branchIDs, isGlobal)
	require.NoError(t, err)
	return subject
}

func TestSubjectService_Create(t *testing.T) {
	t.Run("creates subject with course code in slug", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		branch := newTestBranch(t, "Chemical Engineering", "CHE")
		subjectRepo.On("ExistsByCourseCode", mock.Anything, "CH 1101 N").Return(false, nil)
		branchRepo.On("FindByID", mock.Anything, branch.ID).Return(branch, nil)
		subjectRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Subject")).Return(nil)

		resp, err := svc.Create(context.Background(), CreateSubjectRequest{
			Name:       "Engineering Chemistry",
			CourseCode: "CH 1101 N",
			BranchIDs:  []uuid.UUID{branch.ID},
		})

		require.NoError(t, err)
		assert.Equal(t, "engineering-chemistry-ch-1101-n", resp.Slug)
		assert.Equal(t, []uuid.UUID{branch.ID}, resp.BranchIDs)
	})

	t.Run("rejects duplicate course code", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		subjectRepo.On("ExistsByCourseCode", mock.Anything, "CH 1101 N").Return(true, nil)

		_, err := svc.Create(context.Background(), CreateSubjectRequest{
			Name:       "Engineering Chemistry",
			CourseCode: "CH 1101 N",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("rejects unknown branch reference", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		badID := uuid.New()
		subjectRepo.On("ExistsByCourseCode", mock.Anything, "MA 1201").Return(false, nil)
		branchRepo.On("FindByID", mock.Anything, badID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(context.Background(), CreateSubjectRequest{
			Name:       "Mathematics II",
			CourseCode: "MA 1201",
			BranchIDs:  []uuid.UUID{badID},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_BRANCH", domainErr.Code)
		subjectRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestSubjectService_ListBySelector(t *testing.T) {
	t.Run("lists global subjects", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		selector := catalog.GlobalSubjects()
		subjects := []catalog.Subject{
			*newTestSubject(t, "Engineering Mathematics", "MA 1101", nil, true),
		}
		subjectRepo.On("FindBySelector", mock.Anything, selector).Return(subjects, nil)

		responses, err := svc.ListBySelector(context.Background(), selector)

		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.True(t, responses[0].IsGlobal)
	})

	t.Run("rejects unset selector", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		_, err := svc.ListBySelector(context.Background(), catalog.SubjectSelector{})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_SELECTOR", domainErr.Code)
		subjectRepo.AssertNotCalled(t, "FindBySelector", mock.Anything, mock.Anything)
	})

	t.Run("branch slug selector propagates not found", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		selector := catalog.ByBranchSlug("no-such-branch")
		subjectRepo.On("FindBySelector", mock.Anything, selector).Return([]catalog.Subject{}, shared.ErrNotFound)

		_, err := svc.ListBySelector(context.Background(), selector)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSubjectService_Update(t *testing.T) {
	t.Run("course code change regenerates slug", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		subject := newTestSubject(t, "Engineering Chemistry", "CH 1101", nil, false)
		subjectRepo.On("FindByID", mock.Anything, subject.ID).Return(subject, nil)
		subjectRepo.On("ExistsByCourseCode", mock.Anything, "CH 1101 N").Return(false, nil)
		subjectRepo.On("Save", mock.Anything, subject).Return(nil)

		code := "CH 1101 N"
		resp, err := svc.Update(context.Background(), subject.ID, UpdateSubjectRequest{CourseCode: &code})

		require.NoError(t, err)
		assert.Equal(t, "engineering-chemistry-ch-1101-n", resp.Slug)
	})

	t.Run("membership-only change keeps slug", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		branch := newTestBranch(t, "Chemical Engineering", "CHE")
		subject := newTestSubject(t, "Engineering Chemistry", "CH 1101", nil, false)
		originalSlug := subject.Slug

		subjectRepo.On("FindByID", mock.Anything, subject.ID).Return(subject, nil)
		branchRepo.On("FindByID", mock.Anything, branch.ID).Return(branch, nil)
		subjectRepo.On("Save", mock.Anything, subject).Return(nil)

		branchIDs := []uuid.UUID{branch.ID}
		resp, err := svc.Update(context.Background(), subject.ID, UpdateSubjectRequest{BranchIDs: &branchIDs})

		require.NoError(t, err)
		assert.Equal(t, originalSlug, resp.Slug)
		assert.Equal(t, branchIDs, resp.BranchIDs)
	})
}

func TestSubjectService_Delete(t *testing.T) {
	t.Run("refuses to delete subject with files", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		subject := newTestSubject(t, "Engineering Chemistry", "CH 1101", nil, false)
		subjectRepo.On("FindByID", mock.Anything, subject.ID).Return(subject, nil)
		subjectRepo.On("HasFiles", mock.Anything, subject.ID).Return(true, nil)

		err := svc.Delete(context.Background(), subject.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STILL_REFERENCED", domainErr.Code)
		subjectRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes unreferenced subject", func(t *testing.T) {
		subjectRepo := new(MockSubjectRepository)
		branchRepo := new(MockBranchRepository)
		svc := NewSubjectService(subjectRepo, branchRepo)

		subject := newTestSubject(t, "Engineering Chemistry", "CH 1101", nil, false)
		subjectRepo.On("FindByID", mock.Anything, subject.ID).Return(subject, nil)
		subjectRepo.On("HasFiles", mock.Anything, subject.ID).Return(false, nil)
		subjectRepo.On("Delete", mock.Anything, subject.ID).Return(nil)

		err := svc.Delete(context.Background(), subject.ID)

		assert.NoError(t, err)
		subjectRepo.AssertExpectations(t)
	})
}
