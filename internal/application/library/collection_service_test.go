package library

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/library"
	"github.com/studyhub/backend/internal/domain/shared"
)

func newTestCollection(t *testing.T, creatorID uuid.UUID, name string) *library.Collection {
	t.Helper()
	collection, err := library.NewCollection(creatorID, name)
	require.NoError(t, err)
	return collection
}

func TestCollectionService_Create(t *testing.T) {
	t.Run("creates an empty collection", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		svc := NewCollectionService(collectionRepo, new(MockFileRepository))

		userID := uuid.New()
		collectionRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *library.Collection) bool {
			return c.CreatorID == userID && c.Name == "Semester 3" && len(c.FileIDs) == 0
		})).Return(nil)

		resp, err := svc.Create(context.Background(), userID, CreateCollectionRequest{Name: "  Semester 3  "})

		require.NoError(t, err)
		assert.Equal(t, "Semester 3", resp.Name)
		assert.Equal(t, 0, resp.FileCount)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		svc := NewCollectionService(collectionRepo, new(MockFileRepository))

		_, err := svc.Create(context.Background(), uuid.New(), CreateCollectionRequest{Name: "   "})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
		collectionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCollectionService_Get(t *testing.T) {
	t.Run("resolves files in membership order", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		fileRepo := new(MockFileRepository)
		svc := NewCollectionService(collectionRepo, fileRepo)

		userID := uuid.New()
		collection := newTestCollection(t, userID, "Exam Prep")
		first := newTestFile(t, "first.pdf")
		second := newTestFile(t, "second.pdf")
		collection.AddFile(first.ID)
		collection.AddFile(second.ID)

		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
		fileRepo.On("FindByIDs", mock.Anything, collection.FileIDs).Return([]catalog.File{*second, *first}, nil)

		resp, err := svc.Get(context.Background(), userID, collection.ID)

		require.NoError(t, err)
		require.Len(t, resp.Files, 2)
		assert.Equal(t, "first.pdf", resp.Files[0].FileName)
		assert.Equal(t, "second.pdf", resp.Files[1].FileName)
		assert.Equal(t, 2, resp.FileCount)
	})

	t.Run("forbids access by a non-owner", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		svc := NewCollectionService(collectionRepo, new(MockFileRepository))

		collection := newTestCollection(t, uuid.New(), "Private")
		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)

		_, err := svc.Get(context.Background(), uuid.New(), collection.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("unknown collection yields not found", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		svc := NewCollectionService(collectionRepo, new(MockFileRepository))

		id := uuid.New()
		collectionRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Get(context.Background(), uuid.New(), id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCollectionService_AddFile(t *testing.T) {
	t.Run("adds an existing file", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		fileRepo := new(MockFileRepository)
		svc := NewCollectionService(collectionRepo, fileRepo)

		userID := uuid.New()
		collection := newTestCollection(t, userID, "Exam Prep")
		file := newTestFile(t, "notes.pdf")

		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
		fileRepo.On("FindByID", mock.Anything, file.ID).Return(file, nil)
		collectionRepo.On("AddFile", mock.Anything, collection.ID, file.ID).Return(nil)

		err := svc.AddFile(context.Background(), userID, collection.ID, file.ID)

		assert.NoError(t, err)
		collectionRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown file", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		fileRepo := new(MockFileRepository)
		svc := NewCollectionService(collectionRepo, fileRepo)

		userID := uuid.New()
		collection := newTestCollection(t, userID, "Exam Prep")
		fileID := uuid.New()

		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
		fileRepo.On("FindByID", mock.Anything, fileID).Return(nil, shared.ErrNotFound)

		err := svc.AddFile(context.Background(), userID, collection.ID, fileID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_FILE", domainErr.Code)
		collectionRepo.AssertNotCalled(t, "AddFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("forbids adding to someone else's collection", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		fileRepo := new(MockFileRepository)
		svc := NewCollectionService(collectionRepo, fileRepo)

		collection := newTestCollection(t, uuid.New(), "Private")
		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)

		err := svc.AddFile(context.Background(), uuid.New(), collection.ID, uuid.New())

		assert.ErrorIs(t, err, shared.ErrForbidden)
		fileRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestCollectionService_RemoveFile(t *testing.T) {
	collectionRepo := new(MockCollectionRepository)
	svc := NewCollectionService(collectionRepo, new(MockFileRepository))

	userID := uuid.New()
	collection := newTestCollection(t, userID, "Exam Prep")
	fileID := uuid.New()

	collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
	collectionRepo.On("RemoveFile", mock.Anything, collection.ID, fileID).Return(nil)

	err := svc.RemoveFile(context.Background(), userID, collection.ID, fileID)

	assert.NoError(t, err)
	collectionRepo.AssertExpectations(t)
}

func TestCollectionService_Delete(t *testing.T) {
	t.Run("deletes an owned collection", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		svc := NewCollectionService(collectionRepo, new(MockFileRepository))

		userID := uuid.New()
		collection := newTestCollection(t, userID, "Old Stuff")

		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
		collectionRepo.On("Delete", mock.Anything, collection.ID).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), userID, collection.ID))
	})

	t.Run("forbids deleting someone else's collection", func(t *testing.T) {
		collectionRepo := new(MockCollectionRepository)
		svc := NewCollectionService(collectionRepo, new(MockFileRepository))

		collection := newTestCollection(t, uuid.New(), "Private")
		collectionRepo.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)

		err := svc.Delete(context.Background(), uuid.New(), collection.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
		collectionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestCollectionService_List(t *testing.T) {
	collectionRepo := new(MockCollectionRepository)
	svc := NewCollectionService(collectionRepo, new(MockFileRepository))

	userID := uuid.New()
	first := newTestCollection(t, userID, "Semester 3")
	first.AddFile(uuid.New())
	second := newTestCollection(t, userID, "Semester 4")

	collectionRepo.On("FindByCreator", mock.Anything, userID).Return([]library.Collection{*first, *second}, nil)

	responses, err := svc.List(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "Semester 3", responses[0].Name)
	assert.Equal(t, 1, responses[0].FileCount)
	assert.Equal(t, 0, responses[1].FileCount)
}

func TestCollectionService_ContainsFile(t *testing.T) {
	collectionRepo := new(MockCollectionRepository)
	svc := NewCollectionService(collectionRepo, new(MockFileRepository))

	userID := uuid.New()
	fileID := uuid.New()
	collectionRepo.On("ContainsFileForUser", mock.Anything, userID, fileID).Return(true, nil)

	contains, err := svc.ContainsFile(context.Background(), userID, fileID)

	require.NoError(t, err)
	assert.True(t, contains)
}
