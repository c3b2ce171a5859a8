package identity

import (
	"strings"
	"time"

	"github.com/studyhub/backend/internal/domain/shared"
)

// UserRole represents the user's capability level
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User represents a portal account backed by a Google identity.
// There is no local password; accounts exist only through OAuth sign-in.
type User struct {
	shared.BaseEntity
	GoogleID    string   `gorm:"type:varchar(64);not null;uniqueIndex"`
	Email       string   `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string   `gorm:"type:varchar(150);not null"`
	FirstName   string   `gorm:"type:varchar(100)"`
	Image       string   `gorm:"type:text"`
	Role        UserRole `gorm:"type:varchar(20);not null;default:'student'"`
	LastLoginAt *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user from a Google profile
func NewUser(googleID, email, displayName, firstName, image string) (*User, error) {
	if strings.TrimSpace(googleID) == "" {
		return nil, shared.NewDomainError("INVALID_GOOGLE_ID", "Google ID cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email
	}

	return &User{
		BaseEntity:  shared.NewBaseEntity(),
		GoogleID:    googleID,
		Email:       email,
		DisplayName: displayName,
		FirstName:   strings.TrimSpace(firstName),
		Image:       image,
		Role:        RoleStudent,
	}, nil
}

// IsAdmin reports whether the user may use the admin console
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PromoteToAdmin grants the admin role
func (u *User) PromoteToAdmin() {
	if u.Role == RoleAdmin {
		return
	}
	u.Role = RoleAdmin
	u.Touch()
}

// RefreshProfile updates the fields mirrored from Google on each sign-in
func (u *User) RefreshProfile(displayName, firstName, image string) {
	if displayName = strings.TrimSpace(displayName); displayName != "" {
		u.DisplayName = displayName
	}
	if firstName = strings.TrimSpace(firstName); firstName != "" {
		u.FirstName = firstName
	}
	if image != "" {
		u.Image = image
	}
	u.Touch()
}

// RecordLogin stamps the last successful sign-in time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}
