package library

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/library"
)

// MockBookmarkRepository is a mock implementation of library.BookmarkRepository
type MockBookmarkRepository struct {
	mock.Mock
}

func (m *MockBookmarkRepository) Add(ctx context.Context, userID, fileID uuid.UUID) error {
	args := m.Called(ctx, userID, fileID)
	return args.Error(0)
}

func (m *MockBookmarkRepository) Remove(ctx context.Context, userID, fileID uuid.UUID) error {
	args := m.Called(ctx, userID, fileID)
	return args.Error(0)
}

func (m *MockBookmarkRepository) ListFileIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockBookmarkRepository) IsBookmarked(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, fileID)
	return args.Bool(0), args.Error(1)
}

// MockCollectionRepository is a mock implementation of library.CollectionRepository
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*library.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Collection), args.Error(1)
}

func (m *MockCollectionRepository) FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]library.Collection, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]library.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Save(ctx context.Context, collection *library.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCollectionRepository) AddFile(ctx context.Context, collectionID, fileID uuid.UUID) error {
	args := m.Called(ctx, collectionID, fileID)
	return args.Error(0)
}

func (m *MockCollectionRepository) RemoveFile(ctx context.Context, collectionID, fileID uuid.UUID) error {
	args := m.Called(ctx, collectionID, fileID)
	return args.Error(0)
}

func (m *MockCollectionRepository) ContainsFileForUser(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, fileID)
	return args.Bool(0), args.Error(1)
}

// MockFileRepository is a mock implementation of catalog.FileRepository
type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.File), args.Error(1)
}

func (m *MockFileRepository) FindBySlug(ctx context.Context, slug string) (*catalog.File, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.File), args.Error(1)
}

func (m *MockFileRepository) FindBySubjectID(ctx context.Context, subjectID uuid.UUID) ([]catalog.File, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).([]catalog.File), args.Error(1)
}

func (m *MockFileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.File, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.File), args.Error(1)
}

func (m *MockFileRepository) Search(ctx context.Context, filter catalog.SearchFilter) ([]catalog.File, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.File), args.Error(1)
}

func (m *MockFileRepository) Save(ctx context.Context, file *catalog.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) Like(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) Unlike(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
