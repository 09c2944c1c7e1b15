package models

import "time"

// ShortLink represents a shortened URL and its associated metadata.
type ShortLink struct {
	// ID is the unique identifier for the short link record.
	ID int64
	// ShortCode is the unique code associated with the original URL.
	// It is immutable after creation.
	ShortCode string
	// OriginalURL is the destination the short code redirects to.
	OriginalURL string
	// IsCustomAlias reports whether the short code was chosen by the caller
	// rather than generated.
	IsCustomAlias bool
	// OwnerID references the owning user. Nil for anonymous links.
	OwnerID *int64
	// IsActive gates the redirect path. Deactivated links are soft-deleted
	// and resolve to a "gone" status, never removed from the store.
	IsActive bool
	// ExpiresAt, when set, makes the link resolve to an expired status after
	// the given instant.
	ExpiresAt *time.Time
	// PasswordHash, when set, is the bcrypt hash the supplied password must
	// match before the link resolves.
	PasswordHash *string
	// Clicks is a denormalized counter incremented once per recorded click.
	// It is a write-through cache of the click_events table and may drift.
	Clicks int64
	// UniqueVisitors counts distinct visitors on a best-effort 24h window.
	UniqueVisitors int64
	// LastAccessedAt is the timestamp of the most recent recorded click.
	LastAccessedAt *time.Time
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the link was last updated.
	UpdatedAt time.Time
}

// Expired reports whether the link has an expiry in the past relative to now.
func (l *ShortLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// OwnedBy reports whether the link belongs to the given user.
// Anonymous links are owned by nobody.
func (l *ShortLink) OwnedBy(userID int64) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}
