// Package repo contains the database stores. Every contact operation is
// scoped to the owning user's ID, there is no cross-user visibility.
package repo

import (
	"errors"
	"fmt"

	"contactsapi/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested row does not exist or
	// belongs to another user.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when the users unique email index rejects
	// an insert.
	ErrEmailTaken = errors.New("email already registered")
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	var user model.User

	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// Create inserts a new user with a hashed password. The unique index on
// email is the arbiter under concurrent signups, the loser gets
// ErrEmailTaken.
func (s *UserStore) Create(email, hashedPassword string) (*model.User, error) {
	user := model.User{
		Email:    email,
		Password: hashedPassword,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// SetRefreshToken stores the given refresh token on the user. An empty
// token clears the stored one.
func (s *UserStore) SetRefreshToken(user *model.User, token string) error {
	var value *string
	if token != "" {
		value = &token
	}

	err := s.db.Model(user).Update("refresh_token", value).Error
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	user.RefreshToken = value
	return nil
}

// Confirm marks the account with the given email as confirmed. Confirming
// an already confirmed account is a no-op.
func (s *UserStore) Confirm(email string) error {
	err := s.db.Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true).
		Error
	if err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}

	return nil
}

func (s *UserStore) SetAvatar(email, url string) (*model.User, error) {
	err := s.db.Model(&model.User{}).
		Where("email = ?", email).
		Update("avatar", url).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	return s.GetByEmail(email)
}
