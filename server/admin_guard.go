package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/models"
)

// Rejection is a ready-to-send refusal from a guard.
type Rejection struct {
	Status int
	Body   Envelope
}

// Write sends the rejection. The caller must return immediately after.
func (r *Rejection) Write(c *gin.Context) {
	c.AbortWithStatusJSON(r.Status, r.Body)
}

func rejectUnauthorized() *Rejection {
	return &Rejection{
		Status: http.StatusUnauthorized,
		Body:   Envelope{IsSuccess: false, Message: "authentication required"},
	}
}

func rejectForbidden() *Rejection {
	return &Rejection{
		Status: http.StatusForbidden,
		Body:   Envelope{IsSuccess: false, Message: "administrator role required"},
	}
}

// RequireAdmin returns nil when the request carries a session whose user
// holds the administrator role, otherwise a rejection: 401 without a
// session, 403 without the role.
func (s *Server) RequireAdmin(c *gin.Context) *Rejection {
	sess := s.sessionFrom(c)
	if sess == nil {
		return rejectUnauthorized()
	}
	if !s.engine.HasRole(c.Request.Context(), sess, models.RoleAdministrator) {
		return rejectForbidden()
	}
	return nil
}
