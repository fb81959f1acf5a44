package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/psd401/aistudio-auth/models"
)

// UserStore resolves verified identities to user rows.
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{DB: db} }

// GetBySubject looks a user up by identity-provider subject.
func (s *UserStore) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("external_subject = ?", subject).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID looks a user up by surrogate id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureUser returns the user for subject, provisioning a row with zero
// roles on first sight. A freshly provisioned user passes no role or tool
// check until an administrator assigns a role.
//
// Concurrent first-sight calls race on the external_subject unique index;
// the loser treats the duplicate-key error as "row now exists" and re-fetches.
func (s *UserStore) EnsureUser(ctx context.Context, subject, email, firstName, lastName string) (*models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrInvalid
	}
	now := time.Now().UTC()

	existing, err := s.GetBySubject(ctx, subject)
	if err == nil {
		updates := map[string]interface{}{"last_sign_in_at": now}
		if email != "" && email != existing.Email {
			updates["email"] = email
		}
		if firstName != "" && firstName != existing.FirstName {
			updates["first_name"] = firstName
		}
		if lastName != "" && lastName != existing.LastName {
			updates["last_name"] = lastName
		}
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		return s.GetBySubject(ctx, subject)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := models.User{
		ExternalSubject: subject,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		LastSignInAt:    &now,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.GetBySubject(ctx, subject)
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}
