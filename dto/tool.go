package dto

import "github.com/psd401/aistudio-auth/models"

// ToolResponse represents a tool in API responses.
type ToolResponse struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
}

// FromTool converts a models.Tool to ToolResponse.
func FromTool(t *models.Tool) ToolResponse {
	return ToolResponse{ID: t.ID, Identifier: t.Identifier, Name: t.Name, IsActive: t.IsActive}
}

// FromTools converts a slice of models.Tool to responses.
func FromTools(tools []models.Tool) []ToolResponse {
	out := make([]ToolResponse, len(tools))
	for i := range tools {
		out[i] = FromTool(&tools[i])
	}
	return out
}

// CreateToolRequest is the body of POST /api/admin/tools.
type CreateToolRequest struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

// UpdateToolRequest is the body of PUT /api/admin/tools/:id.
type UpdateToolRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
