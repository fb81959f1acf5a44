package models

import "time"

// User is an application user provisioned from the district identity
// provider. Rows are upserted by external_subject on first verified sign-in;
// the authorization layer never deletes them.
type User struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExternalSubject string     `gorm:"column:external_subject;uniqueIndex" json:"external_subject"`
	Email           string     `gorm:"column:email;uniqueIndex" json:"email"`
	FirstName       string     `gorm:"column:first_name" json:"first_name"`
	LastName        string     `gorm:"column:last_name" json:"last_name"`
	LastSignInAt    *time.Time `gorm:"column:last_sign_in_at" json:"last_sign_in_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }
