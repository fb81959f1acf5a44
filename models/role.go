package models

import (
	"strings"
	"time"
)

// RoleName identifies one of the ranked built-in roles. The hierarchy is a
// closed set; role names outside it may exist in the roles table but carry
// no rank.
type RoleName string

const (
	RoleStudent       RoleName = "student"
	RoleStaff         RoleName = "staff"
	RoleAdministrator RoleName = "administrator"
)

// roleRanks orders the built-in roles, higher rank wins.
var roleRanks = map[RoleName]int{
	RoleStudent:       1,
	RoleStaff:         2,
	RoleAdministrator: 3,
}

// ParseRoleName maps a raw string to a ranked RoleName. Unknown names are
// rejected here so raw strings never reach the decision engine.
func ParseRoleName(s string) (RoleName, bool) {
	name := RoleName(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRanks[name]; !ok {
		return "", false
	}
	return name, true
}

// Rank returns the hierarchy position, or 0 for unranked names.
func (r RoleName) Rank() int { return roleRanks[r] }

// HighestRole returns the highest-ranked recognized role among names, or
// false when none of them is in the hierarchy.
func HighestRole(names []string) (RoleName, bool) {
	var best RoleName
	for _, n := range names {
		if r, ok := ParseRoleName(n); ok && r.Rank() > best.Rank() {
			best = r
		}
	}
	return best, best != ""
}

// Role is a named permission bucket. System roles are installed by seed data
// and protected from deletion.
type Role struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex" json:"name"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	IsSystem    bool      `gorm:"column:is_system" json:"is_system"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Role) TableName() string { return "roles" }

// UserRole links a user to a role. Composite key keeps assignment idempotent.
type UserRole struct {
	UserID     int64     `gorm:"column:user_id;primaryKey"`
	RoleID     int64     `gorm:"column:role_id;primaryKey"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (UserRole) TableName() string { return "user_roles" }
