package library

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/shared"
)

// Collection is a user-curated, user-owned named group of files.
// Only the creator may read or mutate it.
type Collection struct {
	shared.BaseEntity
	Name      string    `gorm:"type:varchar(150);not null"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index"`

	// FileIDs holds the ordered membership, persisted through the
	// collection_files join table rather than a column.
	FileIDs []uuid.UUID `gorm:"-"`
}

// TableName returns the table name for GORM
func (Collection) TableName() string {
	return "collections"
}

// CollectionFile links a collection to a member file. Position preserves
// insertion order so a collection lists its files the way the user added them.
type CollectionFile struct {
	CollectionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position     int       `gorm:"not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (CollectionFile) TableName() string {
	return "collection_files"
}

// NewCollection creates a new, empty collection. The name is required and
// trimmed; duplicate names across a user's collections are allowed.
func NewCollection(creatorID uuid.UUID, name string) (*Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Collection name cannot be empty")
	}
	if len(name) > 150 {
		return nil, shared.NewDomainError("INVALID_NAME", "Collection name cannot exceed 150 characters")
	}
	if creatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Collection must have a creator")
	}

	return &Collection{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		CreatorID:  creatorID,
	}, nil
}

// EnsureOwnedBy returns Forbidden when the given user is not the creator.
// Callers resolve the collection first, so NotFound stays distinct from
// Forbidden.
func (c *Collection) EnsureOwnedBy(userID uuid.UUID) error {
	if c.CreatorID != userID {
		return shared.ErrForbidden
	}
	return nil
}

// AddFile appends a file to the collection. Re-adding a file already
// present is a no-op, not an error.
func (c *Collection) AddFile(fileID uuid.UUID) {
	if c.ContainsFile(fileID) {
		return
	}
	c.FileIDs = append(c.FileIDs, fileID)
	c.Touch()
}

// RemoveFile removes a file from the collection if present
func (c *Collection) RemoveFile(fileID uuid.UUID) {
	for i, id := range c.FileIDs {
		if id == fileID {
			c.FileIDs = append(c.FileIDs[:i], c.FileIDs[i+1:]...)
			c.Touch()
			return
		}
	}
}

// ContainsFile reports whether the file is a member of the collection
func (c *Collection) ContainsFile(fileID uuid.UUID) bool {
	for _, id := range c.FileIDs {
		if id == fileID {
			return true
		}
	}
	return false
}
