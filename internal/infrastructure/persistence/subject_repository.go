package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSubjectRepository implements SubjectRepository using GORM
type GormSubjectRepository struct {
	db *gorm.DB
}

// NewGormSubjectRepository creates a new GormSubjectRepository
func NewGormSubjectRepository(db *gorm.DB) *GormSubjectRepository {
	return &GormSubjectRepository{db: db}
}

// FindByID finds a subject by its ID, with branch membership loaded
func (r *GormSubjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subject, error) {
	var subject catalog.Subject
	if err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.LoadBranches(ctx, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindBySlug finds a subject by its slug, with branch membership loaded
func (r *GormSubjectRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Subject, error) {
	var subject catalog.Subject
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.LoadBranches(ctx, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindByIDs finds subjects by their IDs, without branch membership
func (r *GormSubjectRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Subject, error) {
	if len(ids) == 0 {
		return []catalog.Subject{}, nil
	}
	var subjects []catalog.Subject
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

// FindBySelector lists subjects scoped by exactly one selector dimension
func (r *GormSubjectRepository) FindBySelector(ctx context.Context, selector catalog.SubjectSelector) ([]catalog.Subject, error) {
	if err := selector.Validate(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&catalog.Subject{})

	switch {
	case selector.IsGlobal():
		query = query.Where("is_global = ?", true)
	default:
		branchID, ok := selector.BranchID()
		if !ok {
			slug, _ := selector.BranchSlug()
			var branch catalog.Branch
			if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&branch).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, shared.ErrNotFound
				}
				return nil, err
			}
			branchID = branch.ID
		}
		query = query.
			Joins("JOIN subject_branches ON subjects.id = subject_branches.subject_id").
			Where("subject_branches.branch_id = ?", branchID)
	}

	var subjects []catalog.Subject
	if err := query.Order("subjects.name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	for i := range subjects {
		if err := r.LoadBranches(ctx, &subjects[i]); err != nil {
			return nil, err
		}
	}
	return subjects, nil
}

// Save creates or updates a subject and replaces its branch membership
func (r *GormSubjectRepository) Save(ctx context.Context, subject *catalog.Subject) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(subject).Error; err != nil {
			return err
		}

		if err := tx.Where("subject_id = ?", subject.ID).
			Delete(&catalog.SubjectBranch{}).Error; err != nil {
			return err
		}

		if len(subject.BranchIDs) > 0 {
			memberships := make([]catalog.SubjectBranch, len(subject.BranchIDs))
			for i, branchID := range subject.BranchIDs {
				memberships[i] = catalog.SubjectBranch{
					SubjectID: subject.ID,
					BranchID:  branchID,
					CreatedAt: time.Now(),
				}
			}
			if err := tx.Create(&memberships).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes a subject and its branch membership rows
func (r *GormSubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subject_id = ?", id).
			Delete(&catalog.SubjectBranch{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&catalog.Subject{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByCourseCode checks if a subject with the given course code exists
func (r *GormSubjectRepository) ExistsByCourseCode(ctx context.Context, courseCode string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Subject{}).
		Where("LOWER(course_code) = ?", strings.ToLower(courseCode)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasFiles checks if any file still references the subject
func (r *GormSubjectRepository) HasFiles(ctx context.Context, subjectID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.File{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LoadBranches loads the subject's branch membership from the join table
func (r *GormSubjectRepository) LoadBranches(ctx context.Context, subject *catalog.Subject) error {
	var memberships []catalog.SubjectBranch
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subject.ID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return err
	}

	branchIDs := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		branchIDs[i] = m.BranchID
	}
	subject.BranchIDs = branchIDs

	return nil
}

// Ensure GormSubjectRepository implements SubjectRepository
var _ catalog.SubjectRepository = (*GormSubjectRepository)(nil)
