package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
)

// MockBranchRepository is a mock implementation of catalog.BranchRepository
type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Branch, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Branch, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Branch), args.Error(1)
}

func (m *MockBranchRepository) Save(ctx context.Context, branch *catalog.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBranchRepository) ExistsByShortName(ctx context.Context, shortName string) (bool, error) {
	args := m.Called(ctx, shortName)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchRepository) HasSubjects(ctx context.Context, branchID uuid.UUID) (bool, error) {
	args := m.Called(ctx, branchID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBranchRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSubjectRepository is a mock implementation of catalog.SubjectRepository
type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Subject), args.Error(1)
}

func (m *MockSubjectRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Subject, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Subject), args.Error(1)
}

func (m *MockSubjectRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Subject, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Subject), args.Error(1)
}

func (m *MockSubjectRepository) FindBySelector(ctx context.Context, selector catalog.SubjectSelector) ([]catalog.Subject, error) {
	args := m.Called(ctx, selector)
	return args.Get(0).([]catalog.Subject), args.Error(1)
}

func (m *MockSubjectRepository) Save(ctx context.Context, subject *catalog.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubjectRepository) ExistsByCourseCode(ctx context.Context, courseCode string) (bool, error) {
	args := m.Called(ctx, courseCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubjectRepository) HasFiles(ctx context.Context, subjectID uuid.UUID) (bool, error) {
	args := m.Called(ctx, subjectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubjectRepository) LoadBranches(ctx context.Context, subject *catalog.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
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

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

// staticIndexFunc adapts a function to the StaticIndex interface
type staticIndexFunc func(subjectSlug string) []catalog.FileRecord

func (f staticIndexFunc) Lookup(subjectSlug string) []catalog.FileRecord {
	return f(subjectSlug)
}
