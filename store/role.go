package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/psd401/aistudio-auth/models"
)

// RoleStore is the source of truth for user-role and role-tool mappings.
// Every write path invalidates the permission cache before returning so
// in-process reads observe the write immediately.
type RoleStore struct {
	DB          *gorm.DB
	invalidator CacheInvalidator
}

func NewRoleStore(db *gorm.DB) *RoleStore { return &RoleStore{DB: db} }

// SetCacheInvalidator wires the permission cache owner. Optional; writes
// work without it, but read-your-writes then only holds at TTL granularity.
func (s *RoleStore) SetCacheInvalidator(inv CacheInvalidator) { s.invalidator = inv }

func (s *RoleStore) invalidateUser(userID int64) {
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(userID)
	}
}

func (s *RoleStore) invalidateAll() {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}
}

// ListRoles returns all roles ordered by name.
func (s *RoleStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	err := s.DB.WithContext(ctx).Order("name ASC").Find(&roles).Error
	return roles, err
}

// GetRoleByID returns the role or ErrNotFound.
func (s *RoleStore) GetRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	var r models.Role
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoleByName returns the role or ErrNotFound. Names are stored lowercase.
func (s *RoleStore) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	err := s.DB.WithContext(ctx).Where("name = ?", strings.ToLower(strings.TrimSpace(name))).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRole inserts a new non-system role. Duplicate names map to ErrConflict.
func (s *RoleStore) CreateRole(ctx context.Context, name string, description *string) (*models.Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrInvalid
	}
	r := models.Role{Name: name, Description: description, CreatedAt: time.Now().UTC()}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &r, nil
}

// UpdateRole updates description always, name only for non-system roles.
func (s *RoleStore) UpdateRole(ctx context.Context, id int64, name *string, description *string) (*models.Role, error) {
	existing, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if description != nil {
		updates["description"] = *description
	}
	if name != nil {
		newName := strings.ToLower(strings.TrimSpace(*name))
		if newName == "" {
			return nil, ErrInvalid
		}
		if newName != existing.Name {
			if existing.IsSystem {
				return nil, ErrProtectedRole
			}
			updates["name"] = newName
		}
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrConflict
			}
			return nil, err
		}
		if _, renamed := updates["name"]; renamed {
			// A rename changes every holder's role-name set, and the
			// holder set is not cheaply known.
			s.invalidateAll()
		}
	}
	return s.GetRoleByID(ctx, id)
}

// DeleteRole removes a role and its assignments. System roles fail with
// ErrProtectedRole; the failure is an error, never a silent no-op.
func (s *RoleStore) DeleteRole(ctx context.Context, id int64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Role
		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if r.IsSystem {
			return ErrProtectedRole
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RoleTool{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
	if err != nil {
		return err
	}
	// Affected user set is not cheaply known after the rows are gone.
	s.invalidateAll()
	return nil
}

// ListRolesForUser returns the user's role names. Always a set, never nil.
func (s *RoleStore) ListRolesForUser(ctx context.Context, userID int64) ([]string, error) {
	names := []string{}
	err := s.DB.WithContext(ctx).
		Table("roles r").
		Select("r.name").
		Joins("JOIN user_roles ur ON ur.role_id = r.id").
		Where("ur.user_id = ?", userID).
		Order("r.name ASC").
		Scan(&names).Error
	return names, err
}

// ListToolsForUser returns identifiers of active tools reachable through any
// of the user's roles.
func (s *RoleStore) ListToolsForUser(ctx context.Context, userID int64) ([]string, error) {
	ids := []string{}
	err := s.DB.WithContext(ctx).
		Table("tools t").
		Distinct("t.identifier").
		Joins("JOIN role_tools rt ON rt.tool_id = t.id").
		Joins("JOIN user_roles ur ON ur.role_id = rt.role_id").
		Where("ur.user_id = ? AND t.is_active", userID).
		Order("t.identifier ASC").
		Scan(&ids).Error
	return ids, err
}

// AssignRole grants roleID to userID. Assigning a held role is a no-op.
func (s *RoleStore) AssignRole(ctx context.Context, userID, roleID int64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		ur := models.UserRole{UserID: userID, RoleID: roleID, AssignedAt: time.Now().UTC()}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ur).Error
	})
	if err != nil {
		return err
	}
	s.invalidateUser(userID)
	return nil
}

// RevokeRole removes the assignment. Revoking a role the user does not hold
// is a no-op, not an error.
func (s *RoleStore) RevokeRole(ctx context.Context, userID, roleID int64) error {
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error; err != nil {
		return err
	}
	s.invalidateUser(userID)
	return nil
}

// ReplaceUserRoles atomically revokes every role the user holds and assigns
// roleID. Used by promote/demote so no reader observes the user role-less.
func (s *RoleStore) ReplaceUserRoles(ctx context.Context, userID, roleID int64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		ur := models.UserRole{UserID: userID, RoleID: roleID, AssignedAt: time.Now().UTC()}
		return tx.Create(&ur).Error
	})
	if err != nil {
		return err
	}
	s.invalidateUser(userID)
	return nil
}

// AssignToolToRole grants toolID through roleID. Idempotent.
func (s *RoleStore) AssignToolToRole(ctx context.Context, roleID, toolID int64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.Tool{}).Where("id = ?", toolID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		rt := models.RoleTool{RoleID: roleID, ToolID: toolID, GrantedAt: time.Now().UTC()}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rt).Error
	})
	if err != nil {
		return err
	}
	// Grant affects every holder of the role.
	s.invalidateAll()
	return nil
}

// RemoveToolFromRole revokes the grant. Idempotent.
func (s *RoleStore) RemoveToolFromRole(ctx context.Context, roleID, toolID int64) error {
	if err := s.DB.WithContext(ctx).
		Where("role_id = ? AND tool_id = ?", roleID, toolID).
		Delete(&models.RoleTool{}).Error; err != nil {
		return err
	}
	s.invalidateAll()
	return nil
}

// ListToolsForRole returns identifiers granted to the role, active or not.
func (s *RoleStore) ListToolsForRole(ctx context.Context, roleID int64) ([]string, error) {
	ids := []string{}
	err := s.DB.WithContext(ctx).
		Table("tools t").
		Select("t.identifier").
		Joins("JOIN role_tools rt ON rt.tool_id = t.id").
		Where("rt.role_id = ?", roleID).
		Order("t.identifier ASC").
		Scan(&ids).Error
	return ids, err
}
