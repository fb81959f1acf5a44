package dto

import (
	"time"

	"github.com/psd401/aistudio-auth/models"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Roles        []string   `json:"roles"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FromUser converts a models.User to UserResponse. roles is resolved
// separately through the role store.
func FromUser(u *models.User, roles []string) UserResponse {
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Roles:        roles,
		LastSignInAt: u.LastSignInAt,
		CreatedAt:    u.CreatedAt,
	}
}

// MeResponse is the payload of GET /api/auth/me.
type MeResponse struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// UpdateUserRoleRequest is the body of PUT /api/admin/users/:id/role.
type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}
