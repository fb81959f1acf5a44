package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/dto"
	"github.com/psd401/aistudio-auth/idtoken"
	"github.com/psd401/aistudio-auth/models"
)

// HandleHealth is the public liveness probe.
func (s *Server) HandleHealth(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

// currentUser resolves the request session to a user row, provisioning on
// first sight. Cached per request in the gin context.
func (s *Server) currentUser(c *gin.Context) (*models.User, *idtoken.Session, bool) {
	sess := s.sessionFrom(c)
	if sess == nil {
		return nil, nil, false
	}
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*models.User); ok {
			return u, sess, true
		}
	}
	first, last := splitName(sess.Email)
	u, err := s.users.EnsureUser(c.Request.Context(), sess.Subject, sess.Email, first, last)
	if err != nil {
		s.logger.Printf("ensure user %q: %v", sess.Subject, err)
		return nil, sess, false
	}
	c.Set(ctxKeyUser, u)
	return u, sess, true
}

// splitName derives placeholder name parts from the email local part until
// the directory sync fills in real names.
func splitName(email string) (string, string) {
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "", ""
	}
	first, last, ok := strings.Cut(local, ".")
	if !ok {
		return local, ""
	}
	return first, last
}

// HandleMe returns the signed-in user's identity, or a 401 envelope.
func (s *Server) HandleMe(c *gin.Context) {
	u, _, ok := s.currentUser(c)
	if !ok {
		respondStatus(c, http.StatusUnauthorized, "authentication required")
		return
	}
	respondOK(c, dto.MeResponse{UserID: u.ID, Email: u.Email})
}

// HandleUserTools returns the signed-in user's effective tool identifiers.
func (s *Server) HandleUserTools(c *gin.Context) {
	_, sess, ok := s.currentUser(c)
	if !ok {
		respondStatus(c, http.StatusUnauthorized, "authentication required")
		return
	}
	respondOK(c, s.engine.UserTools(c.Request.Context(), sess))
}
