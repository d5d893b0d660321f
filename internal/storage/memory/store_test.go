package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightprep/brightprep-be/internal/models"
	"github.com/brightprep/brightprep-be/internal/storage"
)

func strPtr(s string) *string { return &s }

func TestUpsertCreatesOnFirstSignIn(t *testing.T) {
	store := NewStore()

	user, err := store.UpsertOnSignIn(context.Background(), storage.SignInParams{
		FirebaseUID: "fb1",
		Email:       "a@b.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "fb1", user.FirebaseUID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, int64(1), user.SignInCount)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.LastSignInAt)
}

func TestUpsertTwiceKeepsOneRecordAndCounts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first, err := store.UpsertOnSignIn(ctx, storage.SignInParams{
		FirebaseUID: "fb1",
		Email:       "a@b.com",
		DisplayName: strPtr("First Name"),
	})
	require.NoError(t, err)

	second, err := store.UpsertOnSignIn(ctx, storage.SignInParams{
		FirebaseUID: "fb1",
		Email:       "a@b.com",
		DisplayName: strPtr("Second Name"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "upsert must not create a second record")
	require.NotNil(t, second.DisplayName)
	assert.Equal(t, "Second Name", *second.DisplayName)
	assert.Equal(t, int64(2), second.SignInCount)

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpsertLeavesOptionalsUntouchedWhenNil(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.UpsertOnSignIn(ctx, storage.SignInParams{
		FirebaseUID: "fb1",
		Email:       "a@b.com",
		DisplayName: strPtr("Keep Me"),
	})
	require.NoError(t, err)

	user, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb1", Email: "a@b.com"})
	require.NoError(t, err)
	require.NotNil(t, user.DisplayName)
	assert.Equal(t, "Keep Me", *user.DisplayName)
}

func TestUpsertRejectsEmailOwnedByAnotherUID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb1", Email: "a@b.com"})
	require.NoError(t, err)

	_, err = store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb2", Email: "a@b.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestUpsertRejectsEmailTakeoverOnUpdate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb1", Email: "a@b.com"})
	require.NoError(t, err)
	_, err = store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb2", Email: "b@c.com"})
	require.NoError(t, err)

	// An existing account cannot upsert its way onto another account's email.
	_, err = store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb2", Email: "a@b.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	// Re-signing in with its own email stays fine.
	user, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb2", Email: "b@c.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.SignInCount)
}

func TestGetByFirebaseUIDNotFound(t *testing.T) {
	store := NewStore()
	_, err := store.GetByFirebaseUID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateProfilePartial(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb1", Email: "a@b.com"})
	require.NoError(t, err)

	user, err := store.UpdateProfile(ctx, "fb1", storage.ProfileUpdate{
		Username:  strPtr("learner42"),
		AvatarURL: strPtr("https://cdn.example.com/a.png"),
	})
	require.NoError(t, err)
	require.NotNil(t, user.Username)
	assert.Equal(t, "learner42", *user.Username)

	// A second partial update must not clear previously set fields.
	user, err = store.UpdateProfile(ctx, "fb1", storage.ProfileUpdate{
		AvatarProvider: strPtr("s3"),
	})
	require.NoError(t, err)
	require.NotNil(t, user.Username)
	assert.Equal(t, "learner42", *user.Username)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *user.AvatarURL)
}

func TestSoftDeleteRetainsRecord(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb1", Email: "a@b.com"})
	require.NoError(t, err)

	require.NoError(t, store.SoftDelete(ctx, "fb1"))

	user, err := store.GetByFirebaseUID(ctx, "fb1")
	require.NoError(t, err, "soft-deleted records stay readable")
	assert.False(t, user.IsActive)
}

func TestSoftDeleteMissingUser(t *testing.T) {
	store := NewStore()
	err := store.SoftDelete(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateRole(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.UpsertOnSignIn(ctx, storage.SignInParams{FirebaseUID: "fb1", Email: "a@b.com"})
	require.NoError(t, err)

	user, err := store.UpdateRole(ctx, "fb1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = store.UpdateRole(ctx, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
