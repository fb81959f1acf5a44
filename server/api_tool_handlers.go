package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/dto"
)

// HandleListTools returns the tool catalog, inactive tools included.
func (s *Server) HandleListTools(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	tools, err := s.tools.ListTools(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, dto.FromTools(tools))
}

// HandleCreateTool registers a new tool, active by default.
func (s *Server) HandleCreateTool(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	var body dto.CreateToolRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Identifier == "" || body.Name == "" {
		respondStatus(c, http.StatusBadRequest, "identifier and name are required")
		return
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	tool, err := s.tools.CreateTool(c.Request.Context(), body.Identifier, body.Name, active)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondCreated(c, dto.FromTool(tool))
}

// HandleUpdateTool updates a tool's name or active flag. Deactivating a
// tool removes it from every user's effective tool set.
func (s *Server) HandleUpdateTool(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateToolRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondStatus(c, http.StatusBadRequest, "invalid request body")
		return
	}
	tool, err := s.tools.UpdateTool(c.Request.Context(), id, body.Name, body.IsActive)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, dto.FromTool(tool))
}
