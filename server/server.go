// Package server exposes the authorization core over HTTP: a coarse
// route-level gate, per-handler admin guards, and the admin/auth API.
package server

import (
	"context"
	"log"
	"os"

	"github.com/psd401/aistudio-auth/idtoken"
	"github.com/psd401/aistudio-auth/models"
	"github.com/psd401/aistudio-auth/permission"
	"github.com/psd401/aistudio-auth/store"
)

// SessionVerifier resolves a raw credential into a verified session.
type SessionVerifier interface {
	Resolve(ctx context.Context, credential string) *idtoken.Session
}

// UserDirectory is the slice of the user store the handlers need.
type UserDirectory interface {
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	EnsureUser(ctx context.Context, subject, email, firstName, lastName string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// RoleDirectory is the slice of the role store the handlers need.
type RoleDirectory interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	GetRoleByID(ctx context.Context, id int64) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	CreateRole(ctx context.Context, name string, description *string) (*models.Role, error)
	UpdateRole(ctx context.Context, id int64, name *string, description *string) (*models.Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListRolesForUser(ctx context.Context, userID int64) ([]string, error)
	ReplaceUserRoles(ctx context.Context, userID, roleID int64) error
	AssignToolToRole(ctx context.Context, roleID, toolID int64) error
	RemoveToolFromRole(ctx context.Context, roleID, toolID int64) error
	ListToolsForRole(ctx context.Context, roleID int64) ([]string, error)
}

// ToolDirectory is the slice of the tool store the handlers need.
type ToolDirectory interface {
	ListTools(ctx context.Context) ([]models.Tool, error)
	GetToolByID(ctx context.Context, id int64) (*models.Tool, error)
	CreateTool(ctx context.Context, identifier, name string, isActive bool) (*models.Tool, error)
	UpdateTool(ctx context.Context, id int64, name *string, isActive *bool) (*models.Tool, error)
}

// SettingsDirectory is the slice of the settings store the handlers need.
type SettingsDirectory interface {
	List(ctx context.Context) ([]store.SystemSetting, error)
	Get(ctx context.Context, key string) (*store.SystemSetting, error)
	Upsert(ctx context.Context, setting store.SystemSetting) error
}

// Server wires the verifier, stores and decision engine behind the HTTP API.
type Server struct {
	cfg      *AppConfig
	logger   *log.Logger
	verifier SessionVerifier
	users    UserDirectory
	roles    RoleDirectory
	tools    ToolDirectory
	settings SettingsDirectory
	engine   *permission.Engine
}

// NewServer builds a Server. settings may be nil when the settings API is
// not mounted (some deployments manage settings out of band).
func NewServer(cfg *AppConfig, verifier SessionVerifier, users UserDirectory, roles RoleDirectory, tools ToolDirectory, settings SettingsDirectory, engine *permission.Engine) *Server {
	return &Server{
		cfg:      cfg,
		logger:   log.New(os.Stdout, "[aistudio-auth] ", log.LstdFlags),
		verifier: verifier,
		users:    users,
		roles:    roles,
		tools:    tools,
		settings: settings,
		engine:   engine,
	}
}

// SetLogger replaces the server logger.
func (s *Server) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}
