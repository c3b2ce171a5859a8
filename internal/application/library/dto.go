package library

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	"github.com/studyhub/backend/internal/domain/library"
)

// CreateCollectionRequest carries the payload for creating a collection
type CreateCollectionRequest struct {
	Name string `json:"name" binding:"required,max=150"`
}

// CollectionResponse is the API view of a collection with its member files
type CollectionResponse struct {
	ID        uuid.UUID                 `json:"id"`
	Name      string                    `json:"name"`
	CreatorID uuid.UUID                 `json:"creatorId"`
	Files     []catalogapp.FileResponse `json:"files"`
	FileCount int                       `json:"fileCount"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// ToCollectionResponse converts a collection plus its resolved files into the
// API view. Files must already be in membership order.
func ToCollectionResponse(collection *library.Collection, files []catalogapp.FileResponse) CollectionResponse {
	if files == nil {
		files = []catalogapp.FileResponse{}
	}
	return CollectionResponse{
		ID:        collection.ID,
		Name:      collection.Name,
		CreatorID: collection.CreatorID,
		Files:     files,
		FileCount: len(files),
		CreatedAt: collection.CreatedAt,
		UpdatedAt: collection.UpdatedAt,
	}
}

// CollectionSummaryResponse is the list view of a collection, without the
// member files materialized
type CollectionSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FileCount int       `json:"fileCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToCollectionSummaryResponse converts a collection into its list view
func ToCollectionSummaryResponse(collection *library.Collection) CollectionSummaryResponse {
	return CollectionSummaryResponse{
		ID:        collection.ID,
		Name:      collection.Name,
		FileCount: len(collection.FileIDs),
		CreatedAt: collection.CreatedAt,
		UpdatedAt: collection.UpdatedAt,
	}
}

// BookmarkListResponse is the API view of a user's bookmarked files
type BookmarkListResponse struct {
	Files []catalogapp.FileResponse `json:"files"`
	Total int                       `json:"total"`
}
