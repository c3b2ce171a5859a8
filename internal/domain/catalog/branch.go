package catalog

import (
	"strings"

	"github.com/studyhub/backend/internal/domain/shared"
)

// Branch represents an academic department or program, e.g. Computer Science
type Branch struct {
	shared.BaseEntity
	Name      string `gorm:"type:varchar(150);not null"`
	ShortName string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Slug      string `gorm:"type:varchar(180);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new branch with a slug derived from its name
func NewBranch(name, shortName string) (*Branch, error) {
	if err := validateBranchName(name); err != nil {
		return nil, err
	}
	if err := validateShortName(shortName); err != nil {
		return nil, err
	}

	return &Branch{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		ShortName:  strings.TrimSpace(shortName),
		Slug:       Slugify(name),
	}, nil
}

// Update updates the branch's name and short name. The slug is regenerated
// only when the name actually changes, since renaming alters the public URL.
func (b *Branch) Update(name, shortName string) error {
	if err := validateBranchName(name); err != nil {
		return err
	}
	if err := validateShortName(shortName); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name != b.Name {
		b.Name = name
		b.Slug = Slugify(name)
	}
	b.ShortName = strings.TrimSpace(shortName)
	b.Touch()

	return nil
}

func validateBranchName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}
	if len(name) > 150 {
		return shared.NewDomainError("INVALID_NAME", "Branch name cannot exceed 150 characters")
	}
	return nil
}

func validateShortName(shortName string) error {
	shortName = strings.TrimSpace(shortName)
	if shortName == "" {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Branch short name cannot be empty")
	}
	if len(shortName) > 30 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Branch short name cannot exceed 30 characters")
	}
	return nil
}
