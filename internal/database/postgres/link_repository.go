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

type linkRecord struct {
	ID             int64      `db:"id"`
	ShortCode      string     `db:"short_code"`
	OriginalURL    string     `db:"original_url"`
	IsCustomAlias  bool       `db:"is_custom_alias"`
	OwnerID        *int64     `db:"owner_id"`
	IsActive       bool       `db:"is_active"`
	ExpiresAt      *time.Time `db:"expires_at"`
	PasswordHash   *string    `db:"password_hash"`
	Clicks         int64      `db:"clicks"`
	UniqueVisitors int64      `db:"unique_visitors"`
	LastAccessedAt *time.Time `db:"last_accessed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *linkRecord) ToShortLink() *models.ShortLink {
	return &models.ShortLink{
		ID:             r.ID,
		ShortCode:      r.ShortCode,
		OriginalURL:    r.OriginalURL,
		IsCustomAlias:  r.IsCustomAlias,
		OwnerID:        r.OwnerID,
		IsActive:       r.IsActive,
		ExpiresAt:      r.ExpiresAt,
		PasswordHash:   r.PasswordHash,
		Clicks:         r.Clicks,
		UniqueVisitors: r.UniqueVisitors,
		LastAccessedAt: r.LastAccessedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// CreateLinkParams carries the attributes of a new short link.
type CreateLinkParams struct {
	ShortCode     string
	OriginalURL   string
	IsCustomAlias bool
	OwnerID       *int64
	ExpiresAt     *time.Time
	PasswordHash  *string
}

// LinkUpdate describes a partial mutation of a short link. Nil fields are
// left untouched; ClearExpiry removes the expiry regardless of ExpiresAt.
type LinkUpdate struct {
	OriginalURL *string
	IsActive    *bool
	ExpiresAt   *time.Time
	ClearExpiry bool
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// Create inserts a new short link. The unique index on short_code is the
// source of truth for code allocation: a violation surfaces as
// database.ErrShortCodeExists so the caller can retry or reject.
func (r *LinkRepository) Create(ctx context.Context, params CreateLinkParams) (*models.ShortLink, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO short_links(short_code, original_url, is_custom_alias, owner_id, expires_at, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query,
		params.ShortCode, params.OriginalURL, params.IsCustomAlias,
		params.OwnerID, params.ExpiresAt, params.PasswordHash)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToShortLink(), nil
}

// GetByShortCode retrieves a link by its code without side effects.
// Deactivated links are returned so the caller can distinguish "gone"
// from "never existed".
func (r *LinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	const op = "database.postgres.LinkRepository.GetByShortCode"

	rec := new(linkRecord)
	query := `SELECT * FROM short_links WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToShortLink(), nil
}

// ListByOwner returns one page of the owner's links, newest first, along
// with the total count.
func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]models.ShortLink, int64, error) {
	const op = "database.postgres.LinkRepository.ListByOwner"

	var total int64
	countQuery := `SELECT COUNT(*) FROM short_links WHERE owner_id = $1`

	if err := r.db.GetContext(ctx, &total, countQuery, ownerID); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count link records: %w", op, err)
	}

	var recs []linkRecord
	query := `SELECT * FROM short_links
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &recs, query, ownerID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.ShortLink, 0, len(recs))
	for _, rec := range recs {
		links = append(links, *rec.ToShortLink())
	}

	return links, total, nil
}

// Update applies a partial mutation to the link with the given id.
// The short code itself is immutable and never part of the update.
func (r *LinkRepository) Update(ctx context.Context, id int64, upd LinkUpdate) (*models.ShortLink, error) {
	const op = "database.postgres.LinkRepository.Update"

	rec := new(linkRecord)
	query := `UPDATE short_links
		SET original_url = COALESCE($1, original_url),
			is_active = COALESCE($2, is_active),
			expires_at = CASE
				WHEN $3 THEN NULL
				WHEN $4::timestamptz IS NOT NULL THEN $4
				ELSE expires_at
			END,
			updated_at = now()
		WHERE id = $5
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query,
		upd.OriginalURL, upd.IsActive, upd.ClearExpiry, upd.ExpiresAt, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	return rec.ToShortLink(), nil
}

// CountByOwner returns the number of links the owner has created.
func (r *LinkRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	const op = "database.postgres.LinkRepository.CountByOwner"

	var total int64
	query := `SELECT COUNT(*) FROM short_links WHERE owner_id = $1`

	if err := r.db.GetContext(ctx, &total, query, ownerID); err != nil {
		return 0, fmt.Errorf("%s: failed to count link records: %w", op, err)
	}

	return total, nil
}
