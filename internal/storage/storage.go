package storage

import (
	"context"
	"errors"

	"github.com/brightprep/brightprep-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// SignInParams carries the fields refreshed on every sign-in. Nil optionals
// leave the stored value untouched.
type SignInParams struct {
	FirebaseUID    string
	Email          string
	DisplayName    *string
	AvatarURL      *string
	AvatarProvider *string
	EmailVerified  bool
}

// ProfileUpdate is a partial profile change; nil fields are left unchanged.
type ProfileUpdate struct {
	Username          *string
	AvatarURL         *string
	AvatarStoragePath *string
	AvatarProvider    *string
}

// UserStore captures persistence operations needed by handlers. Upsert must
// be a single atomic conditional write so concurrent sign-ins for the same
// uid cannot corrupt the sign-in counter.
type UserStore interface {
	UpsertOnSignIn(ctx context.Context, params SignInParams) (models.User, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (models.User, error)
	UpdateProfile(ctx context.Context, firebaseUID string, update ProfileUpdate) (models.User, error)
	UpdateRole(ctx context.Context, firebaseUID string, role models.Role) (models.User, error)
	SoftDelete(ctx context.Context, firebaseUID string) error
	List(ctx context.Context) ([]models.User, error)
}
