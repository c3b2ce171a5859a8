package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/identity"
	"github.com/studyhub/backend/internal/infrastructure/auth"
)

// UserResponse is the API view of a portal account
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	FirstName   string     `json:"firstName,omitempty"`
	Image       string     `json:"image,omitempty"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToUserResponse converts a user entity to its API view
func ToUserResponse(user *identity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		FirstName:   user.FirstName,
		Image:       user.Image,
		Role:        string(user.Role),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// LoginResult bundles the signed-in user with their token pair
type LoginResult struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// RefreshRequest carries the payload for refreshing a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
