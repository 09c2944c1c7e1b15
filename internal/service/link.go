package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/database/postgres"
	"github.com/example/shortly/internal/models"
	"github.com/example/shortly/internal/shortcode"
)

// maxGenerateAttempts bounds the retry loop for generated codes. Each
// attempt races the store's unique index; exhaustion signals pathological
// namespace contention rather than bad luck.
const maxGenerateAttempts = 10

// LinkRepository defines the interface for working with short links at the
// business logic layer.
type LinkRepository interface {
	Create(ctx context.Context, params postgres.CreateLinkParams) (*models.ShortLink, error)
	GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]models.ShortLink, int64, error)
	Update(ctx context.Context, id int64, upd postgres.LinkUpdate) (*models.ShortLink, error)
}

// ShortenParams carries a shorten request into the service.
type ShortenParams struct {
	OriginalURL string
	CustomAlias string
	OwnerID     *int64
	ExpiresAt   *time.Time
	Password    string
}

// LinkChanges is a partial link mutation requested by the owner.
type LinkChanges struct {
	OriginalURL *string
	IsActive    *bool
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// LinkService mints short links and gates the redirect path.
type LinkService struct {
	repo       LinkRepository
	codeLength int
}

func NewLinkService(repo LinkRepository, codeLength int) *LinkService {
	if codeLength < shortcode.MinLength || codeLength > shortcode.MaxLength {
		codeLength = shortcode.DefaultLength
	}

	return &LinkService{
		repo:       repo,
		codeLength: codeLength,
	}
}

// Shorten validates the destination and allocates a short code for it.
//
// A custom alias is reserved with a single insert: a unique violation
// means the alias belongs to someone else and the caller gets
// ErrAliasTaken, never a silently different code. Generated codes retry
// with a fresh candidate on each violation, up to maxGenerateAttempts.
func (s *LinkService) Shorten(ctx context.Context, params ShortenParams) (*models.ShortLink, error) {
	const op = "service.LinkService.Shorten"

	if !validDestination(params.OriginalURL) {
		return nil, fmt.Errorf("%s: %q: %w", op, params.OriginalURL, ErrInvalidURL)
	}

	var passwordHash *string
	if params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to hash link password: %w", op, err)
		}
		h := string(hash)
		passwordHash = &h
	}

	createParams := postgres.CreateLinkParams{
		OriginalURL:  params.OriginalURL,
		OwnerID:      params.OwnerID,
		ExpiresAt:    params.ExpiresAt,
		PasswordHash: passwordHash,
	}

	if params.CustomAlias != "" {
		if !shortcode.Valid(params.CustomAlias) {
			return nil, fmt.Errorf("%s: %q: %w", op, params.CustomAlias, ErrInvalidAlias)
		}

		createParams.ShortCode = params.CustomAlias
		createParams.IsCustomAlias = true

		link, err := s.repo.Create(ctx, createParams)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				return nil, fmt.Errorf("%s: %w", op, ErrAliasTaken)
			}

			return nil, fmt.Errorf("%s: failed to reserve alias: %w", op, err)
		}

		return link, nil
	}

	for i := 0; i < maxGenerateAttempts; i++ {
		code, err := shortcode.Generate(s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		createParams.ShortCode = code

		link, err := s.repo.Create(ctx, createParams)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrGenerationExhausted)
}

// Resolve looks up a short code and checks the redirect gates in order:
// existence, activity, expiry, password. The first failing gate wins so
// callers always get the most specific applicable error.
func (s *LinkService) Resolve(ctx context.Context, shortCode, suppliedPassword string) (*models.ShortLink, error) {
	const op = "service.LinkService.Resolve"

	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if !link.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrLinkInactive)
	}

	if link.Expired(time.Now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrLinkExpired)
	}

	if link.PasswordHash != nil {
		if suppliedPassword == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrPasswordRequired)
		}
		if bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(suppliedPassword)) != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrPasswordInvalid)
		}
	}

	return link, nil
}

// Get returns link details for the owner. Non-owners get ErrNotOwner.
func (s *LinkService) Get(ctx context.Context, callerID int64, shortCode string) (*models.ShortLink, error) {
	const op = "service.LinkService.Get"

	link, err := s.ownedLink(ctx, callerID, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

// List returns one page of the caller's links, newest first.
func (s *LinkService) List(ctx context.Context, ownerID int64, limit, offset int) ([]models.ShortLink, int64, error) {
	const op = "service.LinkService.List"

	links, total, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, total, nil
}

// Modify applies owner-requested changes to a link. The short code is
// immutable; only destination, activity and expiry can change.
func (s *LinkService) Modify(ctx context.Context, callerID int64, shortCode string, changes LinkChanges) (*models.ShortLink, error) {
	const op = "service.LinkService.Modify"

	if changes.OriginalURL != nil && !validDestination(*changes.OriginalURL) {
		return nil, fmt.Errorf("%s: %q: %w", op, *changes.OriginalURL, ErrInvalidURL)
	}

	link, err := s.ownedLink(ctx, callerID, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.Update(ctx, link.ID, postgres.LinkUpdate{
		OriginalURL: changes.OriginalURL,
		IsActive:    changes.IsActive,
		ExpiresAt:   changes.ExpiresAt,
		ClearExpiry: changes.ClearExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify link: %w", op, err)
	}

	return updated, nil
}

// Deactivate soft-deletes a link. The record stays in the store so the
// redirect path keeps answering "gone" rather than "not found".
func (s *LinkService) Deactivate(ctx context.Context, callerID int64, shortCode string) error {
	const op = "service.LinkService.Deactivate"

	link, err := s.ownedLink(ctx, callerID, shortCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	inactive := false
	if _, err := s.repo.Update(ctx, link.ID, postgres.LinkUpdate{IsActive: &inactive}); err != nil {
		return fmt.Errorf("%s: failed to deactivate link: %w", op, err)
	}

	return nil
}

func (s *LinkService) ownedLink(ctx context.Context, callerID int64, shortCode string) (*models.ShortLink, error) {
	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if !link.OwnedBy(callerID) {
		return nil, ErrNotOwner
	}

	return link, nil
}

func validDestination(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
