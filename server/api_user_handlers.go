package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/dto"
	"github.com/psd401/aistudio-auth/models"
)

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondStatus(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// HandleListUsers returns every user with their role names.
func (s *Server) HandleListUsers(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	users, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		roles, err := s.roles.ListRolesForUser(c.Request.Context(), users[i].ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		out = append(out, dto.FromUser(&users[i], roles))
	}
	respondOK(c, out)
}

// HandleUpdateUserRole replaces the user's roles with the single requested
// hierarchy role. The revoke-all-then-assign runs atomically so no reader
// observes the user role-less mid-promotion.
func (s *Server) HandleUpdateUserRole(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondStatus(c, http.StatusBadRequest, "invalid request body")
		return
	}
	roleName, ok := models.ParseRoleName(body.Role)
	if !ok {
		respondStatus(c, http.StatusBadRequest, "role must be one of student, staff, administrator")
		return
	}
	if _, err := s.users.GetByID(c.Request.Context(), userID); err != nil {
		s.respondError(c, err)
		return
	}
	role, err := s.roles.GetRoleByName(c.Request.Context(), string(roleName))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.roles.ReplaceUserRoles(c.Request.Context(), userID, role.ID); err != nil {
		s.respondError(c, err)
		return
	}
	roles, err := s.roles.ListRolesForUser(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"userId": userID, "roles": roles})
}
