package server

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/idtoken"
)

const ctxKeySession = "aistudio.session"
const ctxKeyUser = "aistudio.user"

// SignInPath is where unauthenticated browser navigation is redirected.
const SignInPath = "/signin"

// publicPaths are allowed without a session, matched exactly.
var publicPaths = map[string]bool{
	"/":           true,
	SignInPath:    true,
	"/signout":    true,
	"/api/health": true,
}

// publicPrefixes are allowed without a session, matched by prefix.
var publicPrefixes = []string{
	"/api/auth/",
}

// staticExtensions short-circuit asset requests before session resolution.
var staticExtensions = map[string]bool{
	".css": true, ".js": true, ".map": true, ".ico": true, ".png": true,
	".jpg": true, ".svg": true, ".woff": true, ".woff2": true, ".txt": true,
}

func isPublicPath(p string) bool {
	if publicPaths[p] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func isStaticAsset(p string) bool {
	if strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/assets/") {
		return true
	}
	return staticExtensions[path.Ext(p)]
}

// RouteGate is the coarse authentication gate, run before any handler. It
// checks identity only; role and tool checks belong to the handlers behind
// it. Unmatched paths without a session never fall through to ALLOW.
func (s *Server) RouteGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if isPublicPath(p) || isStaticAsset(p) {
			c.Next()
			return
		}
		cred := idtoken.CredentialFromRequest(c.Request)
		if sess := s.verifier.Resolve(c.Request.Context(), cred); sess != nil {
			c.Set(ctxKeySession, sess)
			c.Next()
			return
		}
		// API clients get a JSON denial; browser navigation is sent to
		// sign-in with the requested path preserved for post-login return.
		if strings.HasPrefix(p, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{IsSuccess: false, Message: "authentication required"})
			return
		}
		target := SignInPath + "?callbackUrl=" + url.QueryEscape(p)
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// sessionFrom returns the request's verified session, resolving it lazily
// for routes the gate allowed through without one.
func (s *Server) sessionFrom(c *gin.Context) *idtoken.Session {
	if v, ok := c.Get(ctxKeySession); ok {
		if sess, ok := v.(*idtoken.Session); ok {
			return sess
		}
	}
	cred := idtoken.CredentialFromRequest(c.Request)
	sess := s.verifier.Resolve(c.Request.Context(), cred)
	if sess != nil {
		c.Set(ctxKeySession, sess)
	}
	return sess
}
