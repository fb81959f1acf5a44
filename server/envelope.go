package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/store"
)

// Envelope is the uniform API response body.
type Envelope struct {
	IsSuccess bool        `json:"isSuccess"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{IsSuccess: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{IsSuccess: true, Data: data})
}

func respondStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{IsSuccess: false, Message: message})
}

// respondError maps store sentinels to statuses. Anything unrecognized is
// infrastructure: the client gets a generic 500 and the detail stays in the
// server log.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalid):
		respondStatus(c, http.StatusBadRequest, "invalid request")
	case errors.Is(err, store.ErrNotFound):
		respondStatus(c, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrProtectedRole):
		respondStatus(c, http.StatusConflict, "system role is protected")
	case errors.Is(err, store.ErrConflict):
		respondStatus(c, http.StatusConflict, "conflicting record exists")
	default:
		s.logger.Printf("internal error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondStatus(c, http.StatusInternalServerError, "internal error")
	}
}
