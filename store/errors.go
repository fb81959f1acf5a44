package store

import "errors"

// Sentinel errors for the persistence layer. Handlers map these to HTTP
// statuses at the boundary; raw database errors never reach a response body.
var (
	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrProtectedRole indicates an attempt to delete or rename a system role.
	ErrProtectedRole = errors.New("store: system role is protected")
	// ErrConflict indicates a uniqueness conflict (duplicate name/identifier).
	ErrConflict = errors.New("store: conflicting record exists")
	// ErrInvalid indicates malformed input rejected before touching the database.
	ErrInvalid = errors.New("store: invalid input")
)

// CacheInvalidator receives synchronous invalidation callbacks from write
// paths so permission reads in the same process observe the write.
type CacheInvalidator interface {
	InvalidateUser(userID int64)
	InvalidateAll()
}
