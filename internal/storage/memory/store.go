// Package memory provides an in-memory UserStore with the same semantics as
// the postgres store. It backs handler and middleware tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightprep/brightprep-be/internal/models"
	"github.com/brightprep/brightprep-be/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users keyed by firebase uid behind a mutex.
type Store struct {
	mu    sync.Mutex
	users map[string]models.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{users: make(map[string]models.User)}
}

// UpsertOnSignIn mirrors the postgres ON CONFLICT upsert.
func (s *Store) UpsertOnSignIn(_ context.Context, params storage.SignInParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirror the postgres unique constraint: the email may not belong to a
	// different uid, whether this call creates or updates the record.
	for _, other := range s.users {
		if other.Email == params.Email && other.FirebaseUID != params.FirebaseUID {
			return models.User{}, storage.ErrAlreadyExists
		}
	}

	now := time.Now()
	user, exists := s.users[params.FirebaseUID]
	if !exists {
		user = models.User{
			ID:          uuid.NewString(),
			FirebaseUID: params.FirebaseUID,
			Role:        models.RoleUser,
			Metadata:    map[string]any{},
			IsActive:    true,
			CreatedAt:   now,
		}
	}

	user.Email = params.Email
	if params.DisplayName != nil {
		user.DisplayName = params.DisplayName
	}
	if params.AvatarURL != nil {
		user.AvatarURL = params.AvatarURL
	}
	if params.AvatarProvider != nil {
		user.AvatarProvider = params.AvatarProvider
	}
	user.EmailVerified = params.EmailVerified
	user.SignInCount++
	user.LastSignInAt = &now
	user.UpdatedAt = now

	s.users[params.FirebaseUID] = user
	return user, nil
}

// GetByFirebaseUID returns the record whether active or soft-deleted.
func (s *Store) GetByFirebaseUID(_ context.Context, firebaseUID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[firebaseUID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial update.
func (s *Store) UpdateProfile(_ context.Context, firebaseUID string, update storage.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[firebaseUID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if update.Username != nil {
		user.Username = update.Username
	}
	if update.AvatarURL != nil {
		user.AvatarURL = update.AvatarURL
	}
	if update.AvatarStoragePath != nil {
		user.AvatarStoragePath = update.AvatarStoragePath
	}
	if update.AvatarProvider != nil {
		user.AvatarProvider = update.AvatarProvider
	}
	user.UpdatedAt = time.Now()

	s.users[firebaseUID] = user
	return user, nil
}

// UpdateRole sets the account role.
func (s *Store) UpdateRole(_ context.Context, firebaseUID string, role models.Role) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[firebaseUID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now()

	s.users[firebaseUID] = user
	return user, nil
}

// SoftDelete marks the record inactive without removing it.
func (s *Store) SoftDelete(_ context.Context, firebaseUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[firebaseUID]
	if !ok {
		return storage.ErrNotFound
	}
	user.IsActive = false
	user.UpdatedAt = time.Now()

	s.users[firebaseUID] = user
	return nil
}

// List returns all accounts, newest first.
func (s *Store) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}
