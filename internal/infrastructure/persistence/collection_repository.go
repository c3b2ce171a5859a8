package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/library"
	"github.com/studyhub/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCollectionRepository implements CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by its ID, with membership loaded in
// insertion order
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*library.Collection, error) {
	var collection library.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadFiles(ctx, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// FindByCreator lists a user's collections with membership loaded
func (r *GormCollectionRepository) FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]library.Collection, error) {
	var collections []library.Collection
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at ASC").
		Find(&collections).Error; err != nil {
		return nil, err
	}
	for i := range collections {
		if err := r.loadFiles(ctx, &collections[i]); err != nil {
			return nil, err
		}
	}
	return collections, nil
}

// Save creates or updates a collection and replaces its membership rows
func (r *GormCollectionRepository) Save(ctx context.Context, collection *library.Collection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(collection).Error; err != nil {
			return err
		}

		if err := tx.Where("collection_id = ?", collection.ID).
			Delete(&library.CollectionFile{}).Error; err != nil {
			return err
		}

		if len(collection.FileIDs) > 0 {
			members := make([]library.CollectionFile, len(collection.FileIDs))
			for i, fileID := range collection.FileIDs {
				members[i] = library.CollectionFile{
					CollectionID: collection.ID,
					FileID:       fileID,
					Position:     i,
					CreatedAt:    time.Now(),
				}
			}
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes a collection and its membership rows
func (r *GormCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).
			Delete(&library.CollectionFile{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&library.Collection{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// AddFile appends a file to the collection. The conflict clause gives
// set-add semantics: re-adding an existing member changes nothing and
// concurrent duplicate adds converge to a single row.
func (r *GormCollectionRepository) AddFile(ctx context.Context, collectionID, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Model(&library.CollectionFile{}).
			Where("collection_id = ?", collectionID).
			Count(&next).Error; err != nil {
			return err
		}

		member := library.CollectionFile{
			CollectionID: collectionID,
			FileID:       fileID,
			Position:     int(next),
			CreatedAt:    time.Now(),
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
}

// RemoveFile removes a file from the collection; removing a missing member
// is a no-op
func (r *GormCollectionRepository) RemoveFile(ctx context.Context, collectionID, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("collection_id = ? AND file_id = ?", collectionID, fileID).
		Delete(&library.CollectionFile{}).Error
}

// ContainsFileForUser reports whether at least one of the user's
// collections contains the file
func (r *GormCollectionRepository) ContainsFileForUser(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&library.CollectionFile{}).
		Joins("JOIN collections ON collections.id = collection_files.collection_id").
		Where("collections.creator_id = ? AND collection_files.file_id = ?", userID, fileID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// loadFiles loads the collection's membership in insertion order
func (r *GormCollectionRepository) loadFiles(ctx context.Context, collection *library.Collection) error {
	var members []library.CollectionFile
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collection.ID).
		Order("position ASC").
		Find(&members).Error; err != nil {
		return err
	}

	fileIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		fileIDs[i] = m.FileID
	}
	collection.FileIDs = fileIDs

	return nil
}

// Ensure GormCollectionRepository implements CollectionRepository
var _ library.CollectionRepository = (*GormCollectionRepository)(nil)
