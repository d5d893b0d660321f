package dto

// SignInRequest is the upsert payload sent on every successful sign-in.
type SignInRequest struct {
	FirebaseUID    string  `json:"firebaseUid"`
	Email          string  `json:"email"`
	DisplayName    *string `json:"displayName,omitempty"`
	AvatarURL      *string `json:"avatarUrl,omitempty"`
	AvatarProvider *string `json:"avatarProvider,omitempty"`
	EmailVerified  bool    `json:"emailVerified,omitempty"`
}

// UpdateProfileRequest is a partial update; omitted fields stay unchanged.
type UpdateProfileRequest struct {
	Username          *string `json:"username,omitempty"`
	AvatarURL         *string `json:"avatarUrl,omitempty"`
	AvatarStoragePath *string `json:"avatarStoragePath,omitempty"`
	AvatarProvider    *string `json:"avatarProvider,omitempty"`
}

// UpdateRoleRequest changes an account's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
