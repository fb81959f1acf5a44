// Package permission implements the access decision engine: it answers role
// and tool questions about a session against the persisted role store,
// through a short-lived cache. Every predicate fails closed — a nil session,
// an unknown user, a store error or a timeout all read as "no access", and
// nothing here ever mutates role state.
package permission

import (
	"context"
	"time"

	"github.com/psd401/aistudio-auth/idtoken"
	"github.com/psd401/aistudio-auth/models"
	"github.com/psd401/aistudio-auth/store"
)

// RoleReader is the slice of the role store the engine consults.
type RoleReader interface {
	ListRolesForUser(ctx context.Context, userID int64) ([]string, error)
	ListToolsForUser(ctx context.Context, userID int64) ([]string, error)
}

// UserReader resolves verified identities to user rows.
type UserReader interface {
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
}

const defaultLookupTimeout = 5 * time.Second

// Engine answers access questions. Safe for concurrent use.
type Engine struct {
	users   UserReader
	roles   RoleReader
	cache   Cache
	timeout time.Duration
}

// NewEngine builds an Engine. cache must not be nil; use NopCache to disable
// caching.
func NewEngine(users UserReader, roles RoleReader, cache Cache) *Engine {
	return &Engine{users: users, roles: roles, cache: cache, timeout: defaultLookupTimeout}
}

// SetLookupTimeout overrides the per-lookup store timeout.
func (e *Engine) SetLookupTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// ResolveUser maps a session to its user row. False for nil sessions and
// unknown subjects.
func (e *Engine) ResolveUser(ctx context.Context, sess *idtoken.Session) (*models.User, bool) {
	if sess == nil || sess.Subject == "" {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	u, err := e.users.GetBySubject(ctx, sess.Subject)
	if err != nil {
		return nil, false
	}
	return u, true
}

// HasRole reports whether the session's user holds the named role.
func (e *Engine) HasRole(ctx context.Context, sess *idtoken.Session, role models.RoleName) bool {
	u, ok := e.ResolveUser(ctx, sess)
	if !ok {
		return false
	}
	names, ok := e.rolesForID(ctx, u.ID)
	if !ok {
		return false
	}
	for _, n := range names {
		if n == string(role) {
			return true
		}
	}
	return false
}

// HasToolAccess reports whether any of the user's roles grants the tool.
func (e *Engine) HasToolAccess(ctx context.Context, sess *idtoken.Session, toolIdentifier string) bool {
	for _, t := range e.UserTools(ctx, sess) {
		if t == toolIdentifier {
			return true
		}
	}
	return false
}

// UserTools returns the session user's effective tool set: the union across
// held roles of each role's active tools. Empty for nil sessions.
func (e *Engine) UserTools(ctx context.Context, sess *idtoken.Session) []string {
	u, ok := e.ResolveUser(ctx, sess)
	if !ok {
		return []string{}
	}
	tools, ok := e.toolsFor(ctx, u.ID)
	if !ok {
		return []string{}
	}
	return tools
}

// HighestRole returns the top-ranked recognized role the user holds, or
// false if the user holds none. Unrecognized role names carry no rank and
// are skipped.
func (e *Engine) HighestRole(ctx context.Context, userID int64) (models.RoleName, bool) {
	names, ok := e.rolesForID(ctx, userID)
	if !ok {
		return "", false
	}
	return models.HighestRole(names)
}

// InvalidateUser drops cached lookups for one user. Called synchronously by
// role store write paths before they return.
func (e *Engine) InvalidateUser(userID int64) { e.cache.InvalidateUser(userID) }

// InvalidateAll clears the cache, for writes whose affected user set is not
// cheaply known (role deletion, tool grants).
func (e *Engine) InvalidateAll() { e.cache.InvalidateAll() }

var _ store.CacheInvalidator = (*Engine)(nil)

// rolesForID is read-through: a miss or expiry always falls back to the
// store; it never converts "not cached" into "denied".
func (e *Engine) rolesForID(ctx context.Context, userID int64) ([]string, bool) {
	key := cacheKey(kindRoles, userID)
	if v, ok := e.cache.Get(key); ok {
		return v, true
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	names, err := e.roles.ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, false
	}
	e.cache.Set(key, names)
	return names, true
}

func (e *Engine) toolsFor(ctx context.Context, userID int64) ([]string, bool) {
	key := cacheKey(kindTools, userID)
	if v, ok := e.cache.Get(key); ok {
		return v, true
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	tools, err := e.roles.ListToolsForUser(ctx, userID)
	if err != nil {
		return nil, false
	}
	e.cache.Set(key, tools)
	return tools, true
}
