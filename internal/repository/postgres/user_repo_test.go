package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"cfpboard/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			user: &domain.User{
				Email:        "alice@example.com",
				FullName:     "Alice",
				PasswordHash: "hash",
				Salt:         "salt",
				CreatedAt:    time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
				UpdatedAt:    time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "hash", "salt", "Alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-uuid-1"))
			},
			wantErr: false,
		},
		{
			name: "duplicate email returns ErrConflict",
			user: &domain.User{
				Email:        "taken@example.com",
				FullName:     "Alice",
				PasswordHash: "hash",
				Salt:         "salt",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrConflict,
		},
		{
			name: "db error",
			user: &domain.User{
				Email:    "a@b.com",
				FullName: "A",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			err = repo.Create(ctx, tt.user)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, "user-uuid-1", tt.user.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		now := time.Now()
		mock.ExpectQuery(`SELECT id, email, password_hash, salt, full_name`).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "salt", "full_name", "created_at", "updated_at"}).
				AddRow("user-uuid-1", "alice@example.com", "hash", "salt", "Alice", now, now))
		repo := NewUserRepository(db)
		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, "user-uuid-1", got.ID)
		require.Equal(t, "Alice", got.FullName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT id, email, password_hash, salt, full_name`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)
		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserRepository_AssignRole(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent on conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec(`INSERT INTO user_roles`).
			WithArgs("user-uuid-1", "role-speaker").
			WillReturnResult(sqlmock.NewResult(0, 0))
		repo := NewUserRepository(db)
		require.NoError(t, repo.AssignRole(ctx, "user-uuid-1", "role-speaker"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
