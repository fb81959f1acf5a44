package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SystemSetting represents a system configuration setting.
type SystemSetting struct {
	Key         string    `gorm:"column:key;primaryKey" json:"key"`
	Value       string    `gorm:"column:value" json:"value"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Category    string    `gorm:"column:category" json:"category"`
	IsSecret    bool      `gorm:"column:is_secret" json:"is_secret"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

// SettingsStore manages system settings, read through an optional shared
// Valkey cache. Writes invalidate the cache before returning.
type SettingsStore struct {
	db    *gorm.DB
	cache *SettingsCache
}

// NewSettingsStore creates a SettingsStore. cache may be nil.
func NewSettingsStore(db *gorm.DB, cache *SettingsCache) *SettingsStore {
	return &SettingsStore{db: db, cache: cache}
}

// Get retrieves a single setting by key.
func (s *SettingsStore) Get(ctx context.Context, key string) (*SystemSetting, error) {
	var setting SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// List returns all settings ordered by category then key.
func (s *SettingsStore) List(ctx context.Context) ([]SystemSetting, error) {
	settings := []SystemSetting{}
	err := s.db.WithContext(ctx).Order("category ASC, key ASC").Find(&settings).Error
	return settings, err
}

// GetValue retrieves just the value of a setting, cache first.
func (s *SettingsStore) GetValue(ctx context.Context, key string) (string, error) {
	if v, ok := s.cache.Get(ctx, key); ok {
		return v, nil
	}
	setting, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	s.cache.Set(ctx, key, setting.Value)
	return setting.Value, nil
}

// GetValueOrDefault retrieves the value or returns a default if not found.
func (s *SettingsStore) GetValueOrDefault(ctx context.Context, key, defaultValue string) string {
	value, err := s.GetValue(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

// GetBool retrieves a boolean setting.
func (s *SettingsStore) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	value, err := s.GetValue(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

// GetInt retrieves an integer setting.
func (s *SettingsStore) GetInt(ctx context.Context, key string, defaultValue int) int {
	value, err := s.GetValue(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// Upsert creates or updates a setting, then invalidates the cached value.
func (s *SettingsStore) Upsert(ctx context.Context, setting SystemSetting) error {
	setting.Key = strings.TrimSpace(setting.Key)
	if setting.Key == "" {
		return ErrInvalid
	}
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SystemSetting
		err := tx.Where("key = ?", setting.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setting.CreatedAt = now
			setting.UpdatedAt = now
			return tx.Create(&setting).Error
		} else if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"value":      setting.Value,
			"updated_at": now,
		}
		if setting.Description != "" {
			updates["description"] = setting.Description
		}
		if setting.Category != "" {
			updates["category"] = setting.Category
		}
		return tx.Model(&SystemSetting{}).Where("key = ?", setting.Key).Updates(updates).Error
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, setting.Key)
	return nil
}

// Delete removes a setting and its cached value. Missing keys are a no-op.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&SystemSetting{}).Error; err != nil {
		return err
	}
	s.cache.Invalidate(ctx, key)
	return nil
}
