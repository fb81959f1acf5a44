package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/dto"
)

// HandleListRoles returns all roles with their tool grants.
func (s *Server) HandleListRoles(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	roles, err := s.roles.ListRoles(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		tools, err := s.roles.ListToolsForRole(c.Request.Context(), roles[i].ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		out = append(out, dto.FromRole(&roles[i], tools))
	}
	respondOK(c, out)
}

// HandleCreateRole creates a non-system role.
func (s *Server) HandleCreateRole(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	var body dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		respondStatus(c, http.StatusBadRequest, "name is required")
		return
	}
	role, err := s.roles.CreateRole(c.Request.Context(), body.Name, body.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, dto.FromRole(role, nil))
}

// HandleUpdateRole updates a role's name and/or description.
func (s *Server) HandleUpdateRole(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondStatus(c, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := s.roles.UpdateRole(c.Request.Context(), id, body.Name, body.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, dto.FromRole(role, nil))
}

// HandleDeleteRole deletes a role. System roles are refused with 409.
func (s *Server) HandleDeleteRole(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.roles.DeleteRole(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// HandleAssignToolToRole grants a tool through a role.
func (s *Server) HandleAssignToolToRole(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	roleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	toolID, ok := parseID(c, "toolId")
	if !ok {
		return
	}
	if err := s.roles.AssignToolToRole(c.Request.Context(), roleID, toolID); err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// HandleRemoveToolFromRole revokes a role's tool grant.
func (s *Server) HandleRemoveToolFromRole(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	roleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	toolID, ok := parseID(c, "toolId")
	if !ok {
		return
	}
	if err := s.roles.RemoveToolFromRole(c.Request.Context(), roleID, toolID); err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, nil)
}
