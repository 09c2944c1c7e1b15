package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/database/postgres"
	"github.com/example/shortly/internal/models"
)

// UserRepository defines the interface for working with accounts at the
// business logic layer.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id int64, upd postgres.UserUpdate) (*models.User, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID int64) (string, error)
}

// AuthService registers accounts and exchanges credentials for tokens.
// The rest of the core only ever sees the opaque caller identity the
// token middleware extracts.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
}

func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "service.AuthService.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to register user: %w", op, err)
	}

	return user, nil
}

// Login verifies the credentials and returns a bearer token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	const op = "service.AuthService.Login"

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return "", nil, fmt.Errorf("%s: failed to load user: %w", op, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: failed to issue token: %w", op, err)
	}

	return token, user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.AuthService.Profile"

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load user: %w", op, err)
	}

	return user, nil
}

// UpdateProfile changes the account email and/or password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, email, password *string) (*models.User, error) {
	const op = "service.AuthService.UpdateProfile"

	upd := postgres.UserUpdate{Email: email}

	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
		}
		h := string(hash)
		upd.PasswordHash = &h
	}

	user, err := s.repo.Update(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update profile: %w", op, err)
	}

	return user, nil
}
