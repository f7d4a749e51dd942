package entity

import "time"

// Profile holds the optional personal details of a user, one per account.
type Profile struct {
	ID          int64
	UserID      int64
	Firstname   string
	Lastname    string
	Phone       string
	DateOfBirth *time.Time
	Bio         string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
