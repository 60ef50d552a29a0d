package dto

import (
	"time"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain maps a domain user to its response view.
func UserFromDomain(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email.String(),
		Role:      string(user.Role),
		Bio:       user.Bio,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
	if user.AvatarURL != nil {
		resp.AvatarURL = user.AvatarURL.String()
	}
	return resp
}

// UsersFromDomain maps a slice of users.
func UsersFromDomain(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = UserFromDomain(&users[i])
	}
	return out
}
