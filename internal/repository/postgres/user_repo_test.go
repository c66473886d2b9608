package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users \(email, name, last_name, created_at, updated_at\)`).
			WithArgs("ana@example.com", "Ana", "", ts, ts).
			WillReturnRows(sqlmock.NewRows([]string{"id", "credits"}).AddRow("user-1", 0))

		u := domain.NewUser("ana@example.com", "Ana", "", ts, ts)
		require.NoError(t, NewUserRepository(db).Create(ctx, u))
		assert.Equal(t, "user-1", u.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})

		err = NewUserRepository(db).Create(ctx, domain.NewUser("ana@example.com", "Ana", "", ts, ts))
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("matches case-insensitively", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("B@X.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "last_name", "credits", "created_at", "updated_at"}).
				AddRow("user-b", "b@x.com", "Bea", "", 5, ts, ts))

		u, err := NewUserRepository(db).GetByEmail(ctx, "B@X.com")
		require.NoError(t, err)
		assert.Equal(t, "user-b", u.ID)
		assert.Equal(t, 5, u.Credits)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users`).WillReturnError(sql.ErrNoRows)

		_, err = NewUserRepository(db).GetByEmail(ctx, "nobody@x.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Update(t *testing.T) {
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
				ID:        "user-uuid-1",
				Email:     "alice@example.com",
				Name:      "Alice",
				UpdatedAt: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WithArgs("Alice", "", "alice@example.com", time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC), "user-uuid-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: false,
		},
		{
			name: "not found zero rows affected",
			user: &domain.User{
				ID:        "nonexistent",
				Email:     "a@b.com",
				Name:      "A",
				UpdatedAt: time.Now(),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WithArgs("A", "", "a@b.com", sqlmock.AnyArg(), "nonexistent").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrUserNotFound,
		},
		{
			name: "unique violation returns ErrDuplicateEmail",
			user: &domain.User{
				ID:        "user-uuid-1",
				Email:     "taken@example.com",
				Name:      "Alice",
				UpdatedAt: time.Now(),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "db error",
			user: &domain.User{
				ID:        "user-1",
				Email:     "a@b.com",
				Name:      "A",
				UpdatedAt: time.Now(),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
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
			err = repo.Update(ctx, tt.user)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoginCodeRepository_CreatePrunesExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expires := time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC)
	mock.ExpectExec(`WITH pruned AS \(\s*DELETE FROM login_codes WHERE email = \$1 AND expires_at <= NOW\(\)\s*\)\s*INSERT INTO login_codes`).
		WithArgs("ana@example.com", "hash", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewLoginCodeRepository(db).Create(context.Background(), "ana@example.com", "hash", expires))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginCodeRepository_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code is deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`DELETE FROM login_codes\s+WHERE id = \(`).
			WithArgs("ana@example.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("code-1"))

		ok, err := NewLoginCodeRepository(db).Consume(ctx, "ana@example.com", "hash")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown or expired", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`DELETE FROM login_codes`).WillReturnError(sql.ErrNoRows)

		ok, err := NewLoginCodeRepository(db).Consume(ctx, "ana@example.com", "hash")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRoleRepository_Grant(t *testing.T) {
	tests := []struct {
		name  string
		known bool
		errIs error
	}{
		{"known role", true, nil},
		{"unknown role", false, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`INSERT INTO user_roles \(user_id, role_id\)\s+SELECT \$1, id FROM role\s+ON CONFLICT`).
				WithArgs("user-1", "organizer").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.known))

			err = NewRoleRepository(db).Grant(context.Background(), "user-1", "organizer")
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoleRepository_CodesForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM user_roles ur\s+JOIN roles r ON r.id = ur.role_id`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("admin").AddRow("organizer"))

	codes, err := NewRoleRepository(db).CodesForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleAdmin, domain.RoleOrganizer}, codes)
}
