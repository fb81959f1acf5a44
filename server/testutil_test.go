package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psd401/aistudio-auth/idtoken"
	"github.com/psd401/aistudio-auth/models"
	"github.com/psd401/aistudio-auth/permission"
	"github.com/psd401/aistudio-auth/store"
)

// fakeVerifier maps opaque bearer tokens to sessions.
type fakeVerifier struct {
	sessions map[string]*idtoken.Session
}

func (f *fakeVerifier) Resolve(_ context.Context, cred string) *idtoken.Session {
	return f.sessions[cred]
}

// fakeEnv is an in-memory implementation of the directory interfaces, with
// the same cache-invalidation contract as the gorm stores.
type fakeEnv struct {
	nextID     int64
	bySubject  map[string]*models.User
	byID       map[int64]*models.User
	roleByID   map[int64]*models.Role
	roleByName map[string]*models.Role
	toolByID   map[int64]*models.Tool
	userRoles  map[int64]map[int64]bool
	roleTools  map[int64]map[int64]bool
	inv        store.CacheInvalidator
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		bySubject:  map[string]*models.User{},
		byID:       map[int64]*models.User{},
		roleByID:   map[int64]*models.Role{},
		roleByName: map[string]*models.Role{},
		toolByID:   map[int64]*models.Tool{},
		userRoles:  map[int64]map[int64]bool{},
		roleTools:  map[int64]map[int64]bool{},
	}
}

func (f *fakeEnv) id() int64 { f.nextID++; return f.nextID }

func (f *fakeEnv) invalidateUser(id int64) {
	if f.inv != nil {
		f.inv.InvalidateUser(id)
	}
}

func (f *fakeEnv) invalidateAll() {
	if f.inv != nil {
		f.inv.InvalidateAll()
	}
}

func (f *fakeEnv) addRole(name string, system bool) *models.Role {
	r := &models.Role{ID: f.id(), Name: name, IsSystem: system}
	f.roleByID[r.ID] = r
	f.roleByName[name] = r
	return r
}

func (f *fakeEnv) addTool(identifier string, active bool) *models.Tool {
	t := &models.Tool{ID: f.id(), Identifier: identifier, Name: identifier, IsActive: active}
	f.toolByID[t.ID] = t
	return t
}

func (f *fakeEnv) addUser(subject, email string, roleNames ...string) *models.User {
	u := &models.User{ID: f.id(), ExternalSubject: subject, Email: email}
	f.bySubject[subject] = u
	f.byID[u.ID] = u
	f.userRoles[u.ID] = map[int64]bool{}
	for _, n := range roleNames {
		f.userRoles[u.ID][f.roleByName[n].ID] = true
	}
	return u
}

// UserDirectory

func (f *fakeEnv) GetBySubject(_ context.Context, subject string) (*models.User, error) {
	if u, ok := f.bySubject[subject]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEnv) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEnv) EnsureUser(_ context.Context, subject, email, firstName, lastName string) (*models.User, error) {
	if u, ok := f.bySubject[subject]; ok {
		return u, nil
	}
	u := &models.User{ID: f.id(), ExternalSubject: subject, Email: email, FirstName: firstName, LastName: lastName}
	f.bySubject[subject] = u
	f.byID[u.ID] = u
	f.userRoles[u.ID] = map[int64]bool{}
	return u, nil
}

func (f *fakeEnv) ListUsers(_ context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RoleDirectory

func (f *fakeEnv) ListRoles(_ context.Context) ([]models.Role, error) {
	out := []models.Role{}
	for _, r := range f.roleByID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeEnv) GetRoleByID(_ context.Context, id int64) (*models.Role, error) {
	if r, ok := f.roleByID[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEnv) GetRoleByName(_ context.Context, name string) (*models.Role, error) {
	if r, ok := f.roleByName[name]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEnv) CreateRole(_ context.Context, name string, description *string) (*models.Role, error) {
	if _, ok := f.roleByName[name]; ok {
		return nil, store.ErrConflict
	}
	r := &models.Role{ID: f.id(), Name: name, Description: description}
	f.roleByID[r.ID] = r
	f.roleByName[name] = r
	return r, nil
}

func (f *fakeEnv) UpdateRole(_ context.Context, id int64, name *string, description *string) (*models.Role, error) {
	r, ok := f.roleByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name != nil && *name != r.Name {
		if r.IsSystem {
			return nil, store.ErrProtectedRole
		}
		delete(f.roleByName, r.Name)
		r.Name = *name
		f.roleByName[r.Name] = r
	}
	if description != nil {
		r.Description = description
	}
	return r, nil
}

func (f *fakeEnv) DeleteRole(_ context.Context, id int64) error {
	r, ok := f.roleByID[id]
	if !ok {
		return store.ErrNotFound
	}
	if r.IsSystem {
		return store.ErrProtectedRole
	}
	delete(f.roleByID, id)
	delete(f.roleByName, r.Name)
	for _, held := range f.userRoles {
		delete(held, id)
	}
	delete(f.roleTools, id)
	f.invalidateAll()
	return nil
}

func (f *fakeEnv) ListRolesForUser(_ context.Context, userID int64) ([]string, error) {
	names := []string{}
	for roleID := range f.userRoles[userID] {
		names = append(names, f.roleByID[roleID].Name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeEnv) ReplaceUserRoles(_ context.Context, userID, roleID int64) error {
	if _, ok := f.roleByID[roleID]; !ok {
		return store.ErrNotFound
	}
	f.userRoles[userID] = map[int64]bool{roleID: true}
	f.invalidateUser(userID)
	return nil
}

func (f *fakeEnv) AssignToolToRole(_ context.Context, roleID, toolID int64) error {
	if _, ok := f.roleByID[roleID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := f.toolByID[toolID]; !ok {
		return store.ErrNotFound
	}
	if f.roleTools[roleID] == nil {
		f.roleTools[roleID] = map[int64]bool{}
	}
	f.roleTools[roleID][toolID] = true
	f.invalidateAll()
	return nil
}

func (f *fakeEnv) RemoveToolFromRole(_ context.Context, roleID, toolID int64) error {
	delete(f.roleTools[roleID], toolID)
	f.invalidateAll()
	return nil
}

func (f *fakeEnv) ListToolsForRole(_ context.Context, roleID int64) ([]string, error) {
	ids := []string{}
	for toolID := range f.roleTools[roleID] {
		ids = append(ids, f.toolByID[toolID].Identifier)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeEnv) ListToolsForUser(_ context.Context, userID int64) ([]string, error) {
	seen := map[string]bool{}
	for roleID := range f.userRoles[userID] {
		for toolID := range f.roleTools[roleID] {
			if t := f.toolByID[toolID]; t.IsActive {
				seen[t.Identifier] = true
			}
		}
	}
	ids := []string{}
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ToolDirectory

func (f *fakeEnv) ListTools(_ context.Context) ([]models.Tool, error) {
	out := []models.Tool{}
	for _, t := range f.toolByID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (f *fakeEnv) GetToolByID(_ context.Context, id int64) (*models.Tool, error) {
	if t, ok := f.toolByID[id]; ok {
		return t, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEnv) CreateTool(_ context.Context, identifier, name string, isActive bool) (*models.Tool, error) {
	for _, t := range f.toolByID {
		if t.Identifier == identifier {
			return nil, store.ErrConflict
		}
	}
	t := &models.Tool{ID: f.id(), Identifier: identifier, Name: name, IsActive: isActive}
	f.toolByID[t.ID] = t
	f.invalidateAll()
	return t, nil
}

func (f *fakeEnv) UpdateTool(_ context.Context, id int64, name *string, isActive *bool) (*models.Tool, error) {
	t, ok := f.toolByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if isActive != nil {
		t.IsActive = *isActive
	}
	f.invalidateAll()
	return t, nil
}

// newTestServer builds the router over the in-memory env with the three
// system roles, two tools (one inactive), an administrator and a student.
func newTestServer(t *testing.T) (*gin.Engine, *Server, *fakeEnv) {
	return newTestServerWith(t, &AppConfig{Env: "test"}, nil)
}

// newTestServerWith is newTestServer with a caller-chosen config and an
// optional settings directory (nil leaves the settings routes unmounted).
func newTestServerWith(t *testing.T, cfg *AppConfig, settings SettingsDirectory) (*gin.Engine, *Server, *fakeEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := newFakeEnv()
	env.addRole("student", true)
	env.addRole("staff", true)
	env.addRole("administrator", true)
	chat := env.addTool("chat", true)
	env.addTool("assistants", false)
	if err := env.AssignToolToRole(context.Background(), env.roleByName["student"].ID, chat.ID); err != nil {
		t.Fatalf("seed tool grant: %v", err)
	}
	env.addUser("subj-admin", "admin@district.org", "administrator")
	env.addUser("subj-alice", "alice@district.org", "student")

	verifier := &fakeVerifier{sessions: map[string]*idtoken.Session{
		"admin-token": {Subject: "subj-admin", Email: "admin@district.org"},
		"alice-token": {Subject: "subj-alice", Email: "alice@district.org"},
		"fresh-token": {Subject: "subj-fresh", Email: "fresh@district.org"},
	}}

	engine := permission.NewEngine(env, env, permission.NewTTLCache(time.Minute))
	env.inv = engine

	srv := NewServer(cfg, verifier, env, env, env, settings, engine)
	return NewGinEngine(srv), srv, env
}

func doRequest(r *gin.Engine, method, target, token string, body []byte) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, target, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", w.Body.String(), err)
	}
	return env
}
