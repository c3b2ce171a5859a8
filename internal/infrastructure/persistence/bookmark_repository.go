package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/library"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBookmarkRepository implements BookmarkRepository using GORM
type GormBookmarkRepository struct {
	db *gorm.DB
}

// NewGormBookmarkRepository creates a new GormBookmarkRepository
func NewGormBookmarkRepository(db *gorm.DB) *GormBookmarkRepository {
	return &GormBookmarkRepository{db: db}
}

// Add saves a bookmark. The conflict clause absorbs duplicate adds, so
// concurrent requests from the same user converge to a single row.
func (r *GormBookmarkRepository) Add(ctx context.Context, userID, fileID uuid.UUID) error {
	bookmark := library.Bookmark{
		UserID:    userID,
		FileID:    fileID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&bookmark).Error
}

// Remove deletes a bookmark; removing a missing one is a no-op
func (r *GormBookmarkRepository) Remove(ctx context.Context, userID, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Delete(&library.Bookmark{}).Error
}

// ListFileIDs lists the user's bookmarked file IDs, most recent first
func (r *GormBookmarkRepository) ListFileIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var bookmarks []library.Bookmark
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		return nil, err
	}

	fileIDs := make([]uuid.UUID, len(bookmarks))
	for i, b := range bookmarks {
		fileIDs[i] = b.FileID
	}
	return fileIDs, nil
}

// IsBookmarked reports whether the user has bookmarked the file
func (r *GormBookmarkRepository) IsBookmarked(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&library.Bookmark{}).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormBookmarkRepository implements BookmarkRepository
var _ library.BookmarkRepository = (*GormBookmarkRepository)(nil)
