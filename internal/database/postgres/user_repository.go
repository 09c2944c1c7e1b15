package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/models"
)

type userRecord struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Plan         string    `db:"plan"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *userRecord) ToUser() *models.User {
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Plan:         r.Plan,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// UserUpdate describes a partial profile mutation. Nil fields stay as is.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	const op = "database.postgres.UserRepository.Create"

	rec := new(userRecord)
	query := `INSERT INTO users(username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, username, email, passwordHash)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserExists)
		}

		return nil, fmt.Errorf("%s: failed to create user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByID"

	rec := new(userRecord)
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByUsername"

	rec := new(userRecord)
	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, rec, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	const op = "database.postgres.UserRepository.Update"

	rec := new(userRecord)
	query := `UPDATE users
		SET email = COALESCE($1, email),
			password_hash = COALESCE($2, password_hash),
			updated_at = now()
		WHERE id = $3
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, upd.Email, upd.PasswordHash, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserExists)
		}

		return nil, fmt.Errorf("%s: failed to update user record: %w", op, err)
	}

	return rec.ToUser(), nil
}
