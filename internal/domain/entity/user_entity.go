package entity

import (
	"strconv"
	"time"
)

// User is the aggregate root for accounts.
//
// ID is the storage key; UserID is the public identity derived from it
// (role prefix + ID) and is what tokens and the API expose.
type User struct {
	ID           int64
	UserID       string
	Username     string
	Email        string
	PasswordHash string

	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	IsVerified  bool

	VerificationToken           *string
	VerificationTokenExpiresAt  *time.Time
	ResetPasswordToken          *string
	ResetPasswordTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role reports which role prefix the user id is built from. Only superusers
// get the admin prefix; staff alone does not.
func (u *User) Role() Role {
	if u.IsSuperuser {
		return RoleAdmin
	}
	return RoleUser
}

// AssignUserID derives the public id once the storage key is known.
func (u *User) AssignUserID() {
	u.UserID = u.Role().Prefix() + strconv.FormatInt(u.ID, 10)
}

// Updatable columns accepted by UserRepository.Update.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPasswordHash = "password_hash"
	FieldIsActive     = "is_active"
	FieldIsStaff      = "is_staff"
	FieldIsSuperuser  = "is_superuser"
	FieldIsVerified   = "is_verified"
)
