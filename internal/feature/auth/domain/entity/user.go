// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// DefaultImageFile is the profile picture filename assigned to new users.
// The actual file lives in the static profile-pictures directory.
const DefaultImageFile = "default.jpg"

// User represents a registered user in the system.
// It contains authentication credentials and profile data.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the public display name. It must be unique across all users.
	Username string `gorm:"uniqueIndex;size:20;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// ImageFile is the filename of the user's profile picture,
	// relative to the profile-pictures directory.
	ImageFile string `gorm:"size:64;not null;default:default.jpg"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
