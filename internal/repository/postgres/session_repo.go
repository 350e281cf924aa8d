package postgres

import (
	"context"
	"database/sql"

	"eventbuddy/internal/domain"
)

type authSessionRepository struct {
	DB *sql.DB
}

// NewAuthSessionRepository returns an AuthSessionRepository backed by the auth_sessions table.
func NewAuthSessionRepository(db *sql.DB) domain.AuthSessionRepository {
	return &authSessionRepository{DB: db}
}

func (r *authSessionRepository) Create(ctx context.Context, s *domain.AuthSession) error {
	query := `
		INSERT INTO auth_sessions (id, uid, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.DB.ExecContext(ctx, query, s.ID, s.UID, s.CreatedAt, s.ExpiresAt); err != nil {
		return writeError("create session", err)
	}
	return nil
}

func (r *authSessionRepository) GetByID(ctx context.Context, id string) (*domain.AuthSession, error) {
	query := `
		SELECT id, uid, created_at, expires_at
		FROM auth_sessions
		WHERE id = $1
	`
	s := &domain.AuthSession{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, readError("get session", err)
	}
	return s, nil
}

func (r *authSessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id)
	if err != nil {
		return writeError("delete session", err)
	}
	return affectedOne("delete session", result)
}
