package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/shared"
)

// Subject represents a course offered within one or more branches.
// Global subjects (e.g. "Syllabus", "Question Papers") are visible
// regardless of branch selection and may belong to no branch at all.
type Subject struct {
	shared.BaseEntity
	Name       string `gorm:"type:varchar(150);not null"`
	CourseCode string `gorm:"type:varchar(50);not null;uniqueIndex"`
	IsGlobal   bool   `gorm:"not null;default:false"`
	Slug       string `gorm:"type:varchar(220);not null;uniqueIndex"`

	// BranchIDs holds the branch membership, persisted through the
	// subject_branches join table rather than a column.
	BranchIDs []uuid.UUID `gorm:"-"`
}

// TableName returns the table name for GORM
func (Subject) TableName() string {
	return "subjects"
}

// SubjectBranch links a subject to one of its branches
type SubjectBranch struct {
	SubjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (SubjectBranch) TableName() string {
	return "subject_branches"
}

// NewSubject creates a new subject. The slug is derived from the name and
// course code together so that same-named subjects in different departments
// do not collide.
func NewSubject(name, courseCode string, branchIDs []uuid.UUID, isGlobal bool) (*Subject, error) {
	if err := validateSubjectName(name); err != nil {
		return nil, err
	}
	if err := validateCourseCode(courseCode); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	courseCode = strings.TrimSpace(courseCode)

	return &Subject{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		CourseCode: courseCode,
		IsGlobal:   isGlobal,
		Slug:       Slugify(name, courseCode),
		BranchIDs:  dedupeIDs(branchIDs),
	}, nil
}

// Update updates the subject's identity fields. The slug is regenerated if
// and only if the name or course code changed.
func (s *Subject) Update(name, courseCode string, branchIDs []uuid.UUID, isGlobal bool) error {
	if err := validateSubjectName(name); err != nil {
		return err
	}
	if err := validateCourseCode(courseCode); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	courseCode = strings.TrimSpace(courseCode)

	if name != s.Name || courseCode != s.CourseCode {
		s.Slug = Slugify(name, courseCode)
	}
	s.Name = name
	s.CourseCode = courseCode
	s.IsGlobal = isGlobal
	s.BranchIDs = dedupeIDs(branchIDs)
	s.Touch()

	return nil
}

// BelongsTo reports whether the subject is a member of the given branch
func (s *Subject) BelongsTo(branchID uuid.UUID) bool {
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validateSubjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Subject name cannot be empty")
	}
	if len(name) > 150 {
		return shared.NewDomainError("INVALID_NAME", "Subject name cannot exceed 150 characters")
	}
	return nil
}

func validateCourseCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_COURSE_CODE", "Course code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_COURSE_CODE", "Course code cannot exceed 50 characters")
	}
	return nil
}
