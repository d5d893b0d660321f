package models

import "time"

// User is the persisted account record. FirebaseUID is the stable join key
// between the identity provider and this row; IsActive=false means the
// account is logically deleted but retained for audit.
type User struct {
	ID                string         `json:"id"`
	FirebaseUID       string         `json:"firebaseUid"`
	Email             string         `json:"email"`
	DisplayName       *string        `json:"displayName,omitempty"`
	Username          *string        `json:"username,omitempty"`
	AvatarURL         *string        `json:"avatarUrl,omitempty"`
	AvatarStoragePath *string        `json:"avatarStoragePath,omitempty"`
	AvatarProvider    *string        `json:"avatarProvider,omitempty"`
	Role              Role           `json:"role"`
	EmailVerified     bool           `json:"emailVerified"`
	SignInCount       int64          `json:"signInCount"`
	LastSignInAt      *time.Time     `json:"lastSignInAt,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	IsActive          bool           `json:"isActive"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}
