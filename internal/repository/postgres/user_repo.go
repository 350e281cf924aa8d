package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"eventbuddy/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

// NewProfileRepository returns a UserProfileRepository backed by the profiles table.
func NewProfileRepository(db *sql.DB) domain.UserProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.UserProfile) error {
	favorites := p.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	query := `
		INSERT INTO profiles (uid, email, name, is_admin, favorites, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, p.UID, p.Email, p.Name, p.IsAdmin, pq.Array(favorites), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AuthError{Kind: domain.AlreadyRegistered, Err: err}
		}
		return writeError("create profile", err)
	}
	return nil
}

func (r *profileRepository) getOne(ctx context.Context, op, where string, arg any) (*domain.UserProfile, error) {
	query := `
		SELECT uid, email, name, is_admin, favorites, created_at, updated_at
		FROM profiles
		WHERE ` + where
	p := &domain.UserProfile{}
	var favorites []string
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&p.UID, &p.Email, &p.Name, &p.IsAdmin, pq.Array(&favorites), &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, readError(op, err)
	}
	if favorites == nil {
		favorites = []string{}
	}
	p.Favorites = favorites
	return p, nil
}

func (r *profileRepository) GetByID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	return r.getOne(ctx, "get profile", "uid = $1", uid)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return r.getOne(ctx, "get profile by email", "email = $1", email)
}

func (r *profileRepository) UpdateFavorites(ctx context.Context, uid string, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	query := `UPDATE profiles SET favorites = $1, updated_at = NOW() WHERE uid = $2`
	result, err := r.DB.ExecContext(ctx, query, pq.Array(favorites), uid)
	if err != nil {
		return writeError("update favorites", err)
	}
	return affectedOne("update favorites", result)
}

func (r *profileRepository) SetAdmin(ctx context.Context, uid string, isAdmin bool) error {
	query := `UPDATE profiles SET is_admin = $1, updated_at = NOW() WHERE uid = $2`
	result, err := r.DB.ExecContext(ctx, query, isAdmin, uid)
	if err != nil {
		return writeError("set admin", err)
	}
	return affectedOne("set admin", result)
}

type credentialRepository struct {
	DB *sql.DB
}

// NewCredentialRepository returns a CredentialRepository backed by the users table.
func NewCredentialRepository(db *sql.DB) domain.CredentialRepository {
	return &credentialRepository{DB: db}
}

func (r *credentialRepository) Create(ctx context.Context, c *domain.Credentials) error {
	query := `
		INSERT INTO users (email, password_hash, salt, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING uid
	`
	err := r.DB.QueryRowContext(ctx, query, c.Email, c.PasswordHash, c.Salt, c.CreatedAt).Scan(&c.UID)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AuthError{Kind: domain.AlreadyRegistered, Err: err}
		}
		return writeError("create credentials", err)
	}
	return nil
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	query := `
		SELECT uid, email, password_hash, salt, created_at
		FROM users
		WHERE email = $1
	`
	c := &domain.Credentials{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&c.UID, &c.Email, &c.PasswordHash, &c.Salt, &c.CreatedAt)
	if err != nil {
		return nil, readError("get credentials", err)
	}
	return c, nil
}
