package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// defaultSearchLimit caps search results when the caller does not set one
const defaultSearchLimit = 50

// GormFileRepository implements FileRepository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GormFileRepository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// FindByID finds a file by its ID
func (r *GormFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.File, error) {
	var file catalog.File
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// FindBySlug finds a file by its slug
func (r *GormFileRepository) FindBySlug(ctx context.Context, slug string) (*catalog.File, error) {
	var file catalog.File
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// FindBySubjectID lists the subject's files sorted lexicographically by
// relative path, keeping same-folder files contiguous for grouping
func (r *GormFileRepository) FindBySubjectID(ctx context.Context, subjectID uuid.UUID) ([]catalog.File, error) {
	var files []catalog.File
	if err := r.db.WithContext(ctx).
		Where("subject_id = ? AND status = ?", subjectID, catalog.FileStatusActive).
		Order("relative_path ASC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// FindByIDs finds files by their IDs
func (r *GormFileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.File, error) {
	if len(ids) == 0 {
		return []catalog.File{}, nil
	}
	var files []catalog.File
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Search finds files by case-insensitive file name substring with optional
// branch and subject scoping via the subject and membership tables
func (r *GormFileRepository) Search(ctx context.Context, filter catalog.SearchFilter) ([]catalog.File, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := r.db.WithContext(ctx).
		Model(&catalog.File{}).
		Where("files.file_name ILIKE ?", "%"+filter.Query+"%").
		Where("files.status = ?", catalog.FileStatusActive)

	if filter.SubjectSlug != "" {
		query = query.
			Joins("JOIN subjects ON subjects.id = files.subject_id").
			Where("subjects.slug = ?", filter.SubjectSlug)
	} else if filter.BranchSlug != "" {
		query = query.
			Joins("JOIN subjects ON subjects.id = files.subject_id").
			Joins("JOIN subject_branches ON subject_branches.subject_id = subjects.id").
			Joins("JOIN branches ON branches.id = subject_branches.branch_id").
			Where("branches.slug = ?", filter.BranchSlug)
	}

	var files []catalog.File
	if err := query.
		Order("files.relative_path ASC").
		Limit(limit).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Save creates or updates a file
func (r *GormFileRepository) Save(ctx context.Context, file *catalog.File) error {
	return r.db.WithContext(ctx).Save(file).Error
}

// Delete deletes a file
func (r *GormFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.File{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Like atomically increments the file's like counter. A single UPDATE keeps
// concurrent likes from losing each other's increments.
func (r *GormFileRepository) Like(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.File{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Unlike atomically decrements the file's like counter. The WHERE guard
// clamps the counter at zero; a decrement on an already-zero counter is a
// no-op rather than an error.
func (r *GormFileRepository) Unlike(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.File{}).
		Where("id = ? AND likes > 0", id).
		UpdateColumn("likes", gorm.Expr("likes - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing file from a clamped decrement
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&catalog.File{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// Ensure GormFileRepository implements FileRepository
var _ catalog.FileRepository = (*GormFileRepository)(nil)
