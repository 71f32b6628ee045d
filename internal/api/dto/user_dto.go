package dto

import "github.com/vex-labs/ticket-view/internal/domain"

// UserResponse represents a user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreateUserRequest payload.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest payload. Absent or null fields are kept.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// NewUserResponse maps a user view.
func NewUserResponse(u domain.UserView) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAtDisplay}
}
