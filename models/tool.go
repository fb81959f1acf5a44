package models

import "time"

// Tool is a gated feature of the application (chat, assistants, documents).
// Inactive tools are excluded from every user's effective tool set.
type Tool struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Identifier string    `gorm:"column:identifier;uniqueIndex" json:"identifier"`
	Name       string    `gorm:"column:name" json:"name"`
	IsActive   bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Tool) TableName() string { return "tools" }

// RoleTool grants a tool to every user holding the role. Users are never
// granted tools directly.
type RoleTool struct {
	RoleID    int64     `gorm:"column:role_id;primaryKey"`
	ToolID    int64     `gorm:"column:tool_id;primaryKey"`
	GrantedAt time.Time `gorm:"column:granted_at"`
}

func (RoleTool) TableName() string { return "role_tools" }
