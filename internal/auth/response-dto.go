package auth

import (
	"time"

	"github.com/google/uuid"

	"ewait/internal/users"
)

type AuthResponse struct {
	User UserResponse `json:"user"`
	// LocationID is set on registration only
	LocationID *uuid.UUID `json:"locationId,omitempty"`
	TokenPair
}

// UserResponse omits credentials and billing identifiers
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          users.Role `json:"role"`
	Plan          users.Plan `json:"plan"`
	PlanExpiresAt *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toUserResponse(user *users.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		Plan:          user.Plan,
		PlanExpiresAt: user.PlanExpiresAt,
		CreatedAt:     user.CreatedAt,
	}
}
