package dto

import "github.com/psd401/aistudio-auth/models"

// RoleResponse represents a role in API responses.
type RoleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	IsSystem    bool     `json:"is_system"`
	Tools       []string `json:"tools,omitempty"`
}

// FromRole converts a models.Role to RoleResponse.
func FromRole(r *models.Role, tools []string) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Tools:       tools,
	}
}

// CreateRoleRequest is the body of POST /api/admin/roles.
type CreateRoleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateRoleRequest is the body of PUT /api/admin/roles/:id.
type UpdateRoleRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
