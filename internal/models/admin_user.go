package models

import (
	"time"

	"github.com/dotmac-platform/settings-service/internal/constants"
)

// AdminUser represents an administrator account that can authenticate to
// the service and change settings.
type AdminUser struct {
	// ID is the unique identifier for the account
	ID int64 `json:"id" db:"user_id"`

	// Email is the account's login identifier
	Email string `json:"email" db:"email"`

	// PasswordHash is the argon2id hash of the account password.
	// Never serialized in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Salt is the random salt associated with the password hash
	Salt string `json:"-" db:"salt"`

	// CreatedAt is when the account was created
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is when the account was last modified
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the AdminUser model.
func (u *AdminUser) TableName() string {
	return constants.TableAdminUsers
}

// Sanitize returns a copy of the user with credential material removed.
func (u *AdminUser) Sanitize() *AdminUser {
	clone := *u
	clone.PasswordHash = ""
	clone.Salt = ""
	return &clone
}

// Credentials represents a login request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
