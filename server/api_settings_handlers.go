package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/store"
)

// redactSecrets blanks secret values in production responses. Non-production
// environments return them as stored so operators can inspect configuration.
func (s *Server) redactSecrets(settings []store.SystemSetting) []store.SystemSetting {
	if !s.cfg.IsProduction() {
		return settings
	}
	out := make([]store.SystemSetting, len(settings))
	copy(out, settings)
	for i := range out {
		if out[i].IsSecret {
			out[i].Value = ""
		}
	}
	return out
}

// HandleListSettings returns all system settings.
func (s *Server) HandleListSettings(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	settings, err := s.settings.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, s.redactSecrets(settings))
}

// HandleGetSetting returns a single setting by key.
func (s *Server) HandleGetSetting(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	setting, err := s.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := s.redactSecrets([]store.SystemSetting{*setting})
	respondOK(c, out[0])
}

// HandleUpsertSetting creates or updates a setting.
func (s *Server) HandleUpsertSetting(c *gin.Context) {
	if rej := s.RequireAdmin(c); rej != nil {
		rej.Write(c)
		return
	}
	var body store.SystemSetting
	if err := c.ShouldBindJSON(&body); err != nil || body.Key == "" {
		respondStatus(c, http.StatusBadRequest, "key is required")
		return
	}
	if err := s.settings.Upsert(c.Request.Context(), body); err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, nil)
}
