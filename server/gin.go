package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDMiddleware tags each request for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// NewGinEngine builds the router. The route gate runs on every request;
// admin handlers additionally call RequireAdmin themselves.
func NewGinEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(s.RouteGate())

	r.GET("/api/health", s.HandleHealth)

	auth := r.Group("/api/auth")
	{
		auth.GET("/me", s.HandleMe)
		auth.GET("/user-tools", s.HandleUserTools)
	}

	admin := r.Group("/api/admin")
	{
		admin.GET("/users", s.HandleListUsers)
		admin.PUT("/users/:id/role", s.HandleUpdateUserRole)

		admin.GET("/roles", s.HandleListRoles)
		admin.POST("/roles", s.HandleCreateRole)
		admin.PUT("/roles/:id", s.HandleUpdateRole)
		admin.DELETE("/roles/:id", s.HandleDeleteRole)
		admin.POST("/roles/:id/tools/:toolId", s.HandleAssignToolToRole)
		admin.DELETE("/roles/:id/tools/:toolId", s.HandleRemoveToolFromRole)

		admin.GET("/tools", s.HandleListTools)
		admin.POST("/tools", s.HandleCreateTool)
		admin.PUT("/tools/:id", s.HandleUpdateTool)

		if s.settings != nil {
			admin.GET("/settings", s.HandleListSettings)
			admin.GET("/settings/:key", s.HandleGetSetting)
			admin.PUT("/settings", s.HandleUpsertSetting)
		}
	}

	return r
}
