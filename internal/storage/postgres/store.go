package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/brightprep/brightprep-be/internal/models"
	"github.com/brightprep/brightprep-be/internal/storage"
	"github.com/brightprep/brightprep-be/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const userColumns = `id, firebase_uid, email, display_name, username, avatar_url,
	avatar_storage_path, avatar_provider, role, email_verified, sign_in_count,
	last_sign_in_at, metadata, is_active, created_at, updated_at`

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore connects, runs migrations, and returns a ready store.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	if err := runMigrations(ctx, databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// runMigrations applies the embedded goose migrations. Goose drives a
// database/sql connection, so a short-lived one is opened via the pgx
// stdlib driver alongside the pgx pool used at runtime.
func runMigrations(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// UpsertOnSignIn inserts the account on first sign-in and otherwise
// refreshes mutable fields. The counter increment and timestamp refresh
// happen inside the single conditional write, so concurrent sign-ins for
// the same uid cannot lose updates.
func (s *Store) UpsertOnSignIn(ctx context.Context, params storage.SignInParams) (models.User, error) {
	const query = `
	INSERT INTO users (firebase_uid, email, display_name, avatar_url, avatar_provider,
		email_verified, sign_in_count, last_sign_in_at)
	VALUES ($1, $2, $3, $4, $5, $6, 1, NOW())
	ON CONFLICT (firebase_uid) DO UPDATE SET
		email = EXCLUDED.email,
		display_name = COALESCE(EXCLUDED.display_name, users.display_name),
		avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
		avatar_provider = COALESCE(EXCLUDED.avatar_provider, users.avatar_provider),
		email_verified = EXCLUDED.email_verified,
		sign_in_count = users.sign_in_count + 1,
		last_sign_in_at = NOW(),
		updated_at = NOW()
	RETURNING ` + userColumns + `;`

	row := s.pool.QueryRow(ctx, query,
		params.FirebaseUID, params.Email, params.DisplayName,
		params.AvatarURL, params.AvatarProvider, params.EmailVerified)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return user, nil
}

// GetByFirebaseUID fetches a user regardless of the soft-delete flag.
func (s *Store) GetByFirebaseUID(ctx context.Context, firebaseUID string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, firebaseUID))
}

// UpdateProfile applies a partial update; nil fields keep the stored value.
func (s *Store) UpdateProfile(ctx context.Context, firebaseUID string, update storage.ProfileUpdate) (models.User, error) {
	const query = `
	UPDATE users SET
		username = COALESCE($2, username),
		avatar_url = COALESCE($3, avatar_url),
		avatar_storage_path = COALESCE($4, avatar_storage_path),
		avatar_provider = COALESCE($5, avatar_provider),
		updated_at = NOW()
	WHERE firebase_uid = $1
	RETURNING ` + userColumns + `;`

	row := s.pool.QueryRow(ctx, query, firebaseUID,
		update.Username, update.AvatarURL, update.AvatarStoragePath, update.AvatarProvider)
	return scanUser(row)
}

// UpdateRole sets the account role.
func (s *Store) UpdateRole(ctx context.Context, firebaseUID string, role models.Role) (models.User, error) {
	const query = `
	UPDATE users SET role = $2, updated_at = NOW()
	WHERE firebase_uid = $1
	RETURNING ` + userColumns + `;`

	return scanUser(s.pool.QueryRow(ctx, query, firebaseUID, role))
}

// SoftDelete marks the account inactive; the row is retained for audit.
func (s *Store) SoftDelete(ctx context.Context, firebaseUID string) error {
	const query = `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE firebase_uid = $1;`
	tag, err := s.pool.Exec(ctx, query, firebaseUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns all accounts, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.FirebaseUID, &user.Email, &user.DisplayName, &user.Username,
		&user.AvatarURL, &user.AvatarStoragePath, &user.AvatarProvider, &user.Role,
		&user.EmailVerified, &user.SignInCount, &user.LastSignInAt, &user.Metadata,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
