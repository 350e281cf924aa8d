package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventbuddy/internal/domain"
)

func TestAuthSessionRepository(t *testing.T) {
	ctx := context.Background()
	expires := created.Add(24 * time.Hour)

	tests := []struct {
		name string
		run  func(t *testing.T, repo domain.AuthSessionRepository, mock sqlmock.Sqlmock)
	}{
		{
			name: "create",
			run: func(t *testing.T, repo domain.AuthSessionRepository, mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO auth_sessions \(id, uid, created_at, expires_at\)`).
					WithArgs("sess-1", "uid-1", created, expires).
					WillReturnResult(sqlmock.NewResult(0, 1))
				err := repo.Create(ctx, &domain.AuthSession{ID: "sess-1", UID: "uid-1", CreatedAt: created, ExpiresAt: expires})
				require.NoError(t, err)
			},
		},
		{
			name: "get",
			run: func(t *testing.T, repo domain.AuthSessionRepository, mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, uid, created_at, expires_at`).
					WithArgs("sess-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "uid", "created_at", "expires_at"}).
						AddRow("sess-1", "uid-1", created, expires))
				got, err := repo.GetByID(ctx, "sess-1")
				require.NoError(t, err)
				require.Equal(t, &domain.AuthSession{ID: "sess-1", UID: "uid-1", CreatedAt: created, ExpiresAt: expires}, got)
			},
		},
		{
			name: "get revoked",
			run: func(t *testing.T, repo domain.AuthSessionRepository, mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, uid, created_at, expires_at`).
					WithArgs("sess-1").
					WillReturnError(sql.ErrNoRows)
				_, err := repo.GetByID(ctx, "sess-1")
				require.ErrorIs(t, err, domain.ErrNotFound)
			},
		},
		{
			name: "delete",
			run: func(t *testing.T, repo domain.AuthSessionRepository, mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM auth_sessions WHERE id = \$1`).
					WithArgs("sess-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				require.NoError(t, repo.Delete(ctx, "sess-1"))
			},
		},
		{
			name: "delete twice",
			run: func(t *testing.T, repo domain.AuthSessionRepository, mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM auth_sessions`).
					WithArgs("sess-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				require.ErrorIs(t, repo.Delete(ctx, "sess-1"), domain.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.run(t, NewAuthSessionRepository(db), mock)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
