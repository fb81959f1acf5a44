package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/psd401/aistudio-auth/models"
)

// ToolStore manages the tool catalog. Activation changes alter every
// holder's effective tool set, so writes clear the permission cache.
type ToolStore struct {
	DB          *gorm.DB
	invalidator CacheInvalidator
}

func NewToolStore(db *gorm.DB) *ToolStore { return &ToolStore{DB: db} }

func (s *ToolStore) SetCacheInvalidator(inv CacheInvalidator) { s.invalidator = inv }

func (s *ToolStore) invalidateAll() {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}
}

// ListTools returns the full catalog ordered by identifier.
func (s *ToolStore) ListTools(ctx context.Context) ([]models.Tool, error) {
	tools := []models.Tool{}
	err := s.DB.WithContext(ctx).Order("identifier ASC").Find(&tools).Error
	return tools, err
}

// GetToolByID returns the tool or ErrNotFound.
func (s *ToolStore) GetToolByID(ctx context.Context, id int64) (*models.Tool, error) {
	var t models.Tool
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTool inserts a tool. Identifiers are lowercase slugs, unique.
func (s *ToolStore) CreateTool(ctx context.Context, identifier, name string, isActive bool) (*models.Tool, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || strings.TrimSpace(name) == "" {
		return nil, ErrInvalid
	}
	t := models.Tool{Identifier: identifier, Name: name, IsActive: isActive, CreatedAt: time.Now().UTC()}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.invalidateAll()
	return &t, nil
}

// UpdateTool updates name and/or the active flag.
func (s *ToolStore) UpdateTool(ctx context.Context, id int64, name *string, isActive *bool) (*models.Tool, error) {
	if _, err := s.GetToolByID(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, ErrInvalid
		}
		updates["name"] = *name
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.Tool{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.invalidateAll()
	}
	return s.GetToolByID(ctx, id)
}
