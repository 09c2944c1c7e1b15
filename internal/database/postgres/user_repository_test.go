package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shortly/internal/database"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "role", "plan",
	"created_at", "updated_at",
}

func userRow(id int64, username string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, username+"@example.com", "$2a$10$hash", "user", "free", now, now)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("john", "john@example.com", "$2a$10$hash").
			WillReturnRows(userRow(1, "john"))

		user, err := repo.Create(ctx, "john", "john@example.com", "$2a$10$hash")

		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "john", user.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username or email taken", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		user, err := repo.Create(ctx, "john", "john@example.com", "$2a$10$hash")

		assert.ErrorIs(t, err, database.ErrUserExists)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM users WHERE username`).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns))

		user, err := repo.GetByUsername(ctx, "ghost")

		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM users WHERE username`).
			WithArgs("john").
			WillReturnRows(userRow(1, "john"))

		user, err := repo.GetByUsername(ctx, "john")

		require.NoError(t, err)
		assert.Equal(t, "john@example.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		email := "new@example.com"
		mock.ExpectQuery(`UPDATE users`).
			WillReturnRows(sqlmock.NewRows(userColumns))

		user, err := repo.Update(ctx, 99, UserUpdate{Email: &email})

		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		email := "taken@example.com"
		mock.ExpectQuery(`UPDATE users`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		user, err := repo.Update(ctx, 1, UserUpdate{Email: &email})

		assert.ErrorIs(t, err, database.ErrUserExists)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewUserRepository(db)

		email := "new@example.com"
		mock.ExpectQuery(`UPDATE users`).
			WithArgs(&email, nil, int64(1)).
			WillReturnRows(userRow(1, "john"))

		user, err := repo.Update(ctx, 1, UserUpdate{Email: &email})

		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
