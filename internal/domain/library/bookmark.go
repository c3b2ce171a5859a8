package library

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark marks a file as saved by a user. Membership is a set: adding an
// existing bookmark or removing a missing one are both no-ops.
type Bookmark struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Bookmark) TableName() string {
	return "bookmarks"
}
