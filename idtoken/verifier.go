// Package idtoken turns an inbound request credential into a verified
// Session. Verification failures are not errors here: an absent or invalid
// credential simply yields no session, and role checks downstream fail
// closed on a nil session.
package idtoken

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the identity-provider token for
// browser navigation. API clients use the Authorization header instead.
const SessionCookieName = "aistudio_session"

// Session is the verified outcome of checking an inbound credential. It
// carries identity only; roles are resolved downstream.
type Session struct {
	Subject string
	Email   string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier validates identity-provider tokens against a fixed issuer,
// audience and signing key.
type Verifier struct {
	keyfunc jwt.Keyfunc
	opts    []jwt.ParserOption
}

// NewVerifier builds a Verifier for HMAC-signed tokens.
func NewVerifier(issuer, audience string, secret []byte) *Verifier {
	return NewVerifierWithKeyfunc(issuer, audience, []string{"HS256", "HS384", "HS512"},
		func(*jwt.Token) (interface{}, error) { return secret, nil })
}

// NewVerifierWithKeyfunc builds a Verifier with a caller-supplied keyfunc,
// for deployments where the identity provider publishes rotating keys.
func NewVerifierWithKeyfunc(issuer, audience string, methods []string, kf jwt.Keyfunc) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{keyfunc: kf, opts: opts}
}

// Resolve verifies credential and returns the session it proves, or nil if
// the credential is absent, malformed, expired, or fails issuer/audience/
// signature checks. It never returns an error for those cases.
func (v *Verifier) Resolve(ctx context.Context, credential string) *Session {
	if v == nil || strings.TrimSpace(credential) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return nil
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, v.keyfunc, v.opts...)
	if err != nil || !token.Valid {
		return nil
	}
	if claims.Subject == "" {
		return nil
	}
	return &Session{Subject: claims.Subject, Email: claims.Email}
}

// CredentialFromRequest extracts the raw credential from the Authorization
// Bearer header, falling back to the session cookie.
func CredentialFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
