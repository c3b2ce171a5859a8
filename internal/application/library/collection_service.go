package library

import (
	"context"
	"errors"

	"github.com/google/uuid"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/library"
	"github.com/studyhub/backend/internal/domain/shared"
)

// CollectionService handles collection-related business operations.
// Every mutating or reading operation checks ownership after resolving the
// collection, so a stranger probing a known ID gets Forbidden rather than
// NotFound.
type CollectionService struct {
	collectionRepo library.CollectionRepository
	fileRepo       catalog.FileRepository
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(collectionRepo library.CollectionRepository, fileRepo catalog.FileRepository) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		fileRepo:       fileRepo,
	}
}

// Create creates a new, empty collection owned by the user
func (s *CollectionService) Create(ctx context.Context, userID uuid.UUID, req CreateCollectionRequest) (*CollectionSummaryResponse, error) {
	collection, err := library.NewCollection(userID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.collectionRepo.Save(ctx, collection); err != nil {
		return nil, err
	}

	resp := ToCollectionSummaryResponse(collection)
	return &resp, nil
}

// List returns the user's collections without materializing member files
func (s *CollectionService) List(ctx context.Context, userID uuid.UUID) ([]CollectionSummaryResponse, error) {
	collections, err := s.collectionRepo.FindByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]CollectionSummaryResponse, len(collections))
	for i := range collections {
		responses[i] = ToCollectionSummaryResponse(&collections[i])
	}
	return responses, nil
}

// Get returns a collection with its member files resolved, in the order the
// user added them
func (s *CollectionService) Get(ctx context.Context, userID, collectionID uuid.UUID) (*CollectionResponse, error) {
	collection, err := s.ownedCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}

	files, err := s.resolveFiles(ctx, collection.FileIDs)
	if err != nil {
		return nil, err
	}

	resp := ToCollectionResponse(collection, files)
	return &resp, nil
}

// AddFile adds a file to the user's collection; adding an existing member
// is a no-op
func (s *CollectionService) AddFile(ctx context.Context, userID, collectionID, fileID uuid.UUID) error {
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return err
	}

	if _, err := s.fileRepo.FindByID(ctx, fileID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_FILE", "File not found")
		}
		return err
	}

	return s.collectionRepo.AddFile(ctx, collectionID, fileID)
}

// RemoveFile removes a file from the user's collection; removing a missing
// member is a no-op
func (s *CollectionService) RemoveFile(ctx context.Context, userID, collectionID, fileID uuid.UUID) error {
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return err
	}
	return s.collectionRepo.RemoveFile(ctx, collectionID, fileID)
}

// Delete deletes the user's collection and its membership rows
func (s *CollectionService) Delete(ctx context.Context, userID, collectionID uuid.UUID) error {
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return err
	}
	return s.collectionRepo.Delete(ctx, collectionID)
}

// ContainsFile reports whether any of the user's collections contains the file
func (s *CollectionService) ContainsFile(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	return s.collectionRepo.ContainsFileForUser(ctx, userID, fileID)
}

// ownedCollection resolves a collection and verifies the user owns it
func (s *CollectionService) ownedCollection(ctx context.Context, userID, collectionID uuid.UUID) (*library.Collection, error) {
	collection, err := s.collectionRepo.FindByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if err := collection.EnsureOwnedBy(userID); err != nil {
		return nil, err
	}
	return collection, nil
}

// resolveFiles loads member files and returns them in membership order,
// skipping members whose file has since been deleted
func (s *CollectionService) resolveFiles(ctx context.Context, fileIDs []uuid.UUID) ([]catalogapp.FileResponse, error) {
	if len(fileIDs) == 0 {
		return []catalogapp.FileResponse{}, nil
	}

	files, err := s.fileRepo.FindByIDs(ctx, fileIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.File, len(files))
	for i := range files {
		byID[files[i].ID] = &files[i]
	}

	responses := make([]catalogapp.FileResponse, 0, len(fileIDs))
	for _, id := range fileIDs {
		if file, ok := byID[id]; ok {
			responses = append(responses, catalogapp.ToFileResponse(file))
		}
	}
	return responses, nil
}
