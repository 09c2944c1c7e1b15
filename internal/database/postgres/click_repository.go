package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/models"
)

func dimensionExpr(dim database.Dimension) string {
	switch dim {
	case database.ByCountry:
		return "country"
	case database.ByReferrer:
		return "referrer"
	case database.ByDevice:
		return "device"
	default:
		return "to_char(clicked_at, 'YYYY-MM-DD')"
	}
}

func filterWhere(f database.EventFilter) (string, []any) {
	clause := "WHERE 1=1"
	var args []any

	if f.LinkID != nil {
		args = append(args, *f.LinkID)
		clause += fmt.Sprintf(" AND e.link_id = $%d", len(args))
	}
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		clause += fmt.Sprintf(" AND e.link_id IN (SELECT id FROM short_links WHERE owner_id = $%d)", len(args))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		clause += fmt.Sprintf(" AND e.clicked_at >= $%d", len(args))
	}

	return clause, args
}

type ClickRepository struct {
	db *sqlx.DB
}

func NewClickRepository(db *sqlx.DB) *ClickRepository {
	return &ClickRepository{
		db: db,
	}
}

// Record appends a click event and updates the link's denormalized
// counters in one transaction. The unique counter is bumped only when the
// caller determined the visitor is new within the lookback window.
func (r *ClickRepository) Record(ctx context.Context, event *models.ClickEvent, uniqueVisitor bool) error {
	const op = "database.postgres.ClickRepository.Record"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertQuery := `INSERT INTO click_events(id, link_id, ip, user_agent, referrer, country, city, region, device, is_bot, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.ExecContext(ctx, insertQuery,
		event.ID, event.LinkID, event.IP, event.UserAgent, event.Referrer,
		event.Country, event.City, event.Region, event.Device, event.IsBot, event.ClickedAt)
	if err != nil {
		return fmt.Errorf("%s: failed to insert click event: %w", op, err)
	}

	updateQuery := `UPDATE short_links
		SET clicks = clicks + 1,
			unique_visitors = unique_visitors + $2,
			last_accessed_at = $3
		WHERE id = $1`

	uniqueInc := 0
	if uniqueVisitor {
		uniqueInc = 1
	}

	if _, err := tx.ExecContext(ctx, updateQuery, event.LinkID, uniqueInc, event.ClickedAt); err != nil {
		return fmt.Errorf("%s: failed to update link counters: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// HasRecentClick reports whether the given IP already clicked the link
// after the given instant. This is the store fallback for the
// unique-visitor window and is best-effort only.
func (r *ClickRepository) HasRecentClick(ctx context.Context, linkID int64, ip string, since time.Time) (bool, error) {
	const op = "database.postgres.ClickRepository.HasRecentClick"

	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM click_events
		WHERE link_id = $1 AND ip = $2 AND clicked_at >= $3
	)`

	if err := r.db.GetContext(ctx, &exists, query, linkID, ip, since); err != nil {
		return false, fmt.Errorf("%s: failed to check recent clicks: %w", op, err)
	}

	return exists, nil
}

// Totals returns the total click count and distinct-IP count matching the
// filter.
func (r *ClickRepository) Totals(ctx context.Context, filter database.EventFilter) (int64, int64, error) {
	const op = "database.postgres.ClickRepository.Totals"

	where, args := filterWhere(filter)

	var totals struct {
		Total     int64 `db:"total"`
		UniqueIPs int64 `db:"unique_ips"`
	}
	query := fmt.Sprintf(`SELECT COUNT(*) AS total, COUNT(DISTINCT e.ip) AS unique_ips
		FROM click_events e %s`, where)

	if err := r.db.GetContext(ctx, &totals, query, args...); err != nil {
		return 0, 0, fmt.Errorf("%s: failed to count click events: %w", op, err)
	}

	return totals.Total, totals.UniqueIPs, nil
}

// CountBy returns grouped click counts along the given dimension,
// largest buckets first.
func (r *ClickRepository) CountBy(ctx context.Context, filter database.EventFilter, dim database.Dimension) ([]models.BucketCount, error) {
	const op = "database.postgres.ClickRepository.CountBy"

	where, args := filterWhere(filter)

	var rows []struct {
		Key   string `db:"key"`
		Count int64  `db:"count"`
	}
	query := fmt.Sprintf(`SELECT %s AS key, COUNT(*) AS count
		FROM click_events e %s
		GROUP BY key
		ORDER BY count DESC, key`, dimensionExpr(dim), where)

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to group click events: %w", op, err)
	}

	buckets := make([]models.BucketCount, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, models.BucketCount{Key: row.Key, Count: row.Count})
	}

	return buckets, nil
}

// TopLinks returns the owner's most clicked links within the window.
func (r *ClickRepository) TopLinks(ctx context.Context, ownerID int64, since time.Time, limit int) ([]models.LinkClicks, error) {
	const op = "database.postgres.ClickRepository.TopLinks"

	var rows []struct {
		ShortCode string `db:"short_code"`
		Clicks    int64  `db:"clicks"`
	}
	query := `SELECT l.short_code AS short_code, COUNT(e.id) AS clicks
		FROM short_links l
		JOIN click_events e ON e.link_id = l.id
		WHERE l.owner_id = $1 AND ($2::timestamptz IS NULL OR e.clicked_at >= $2)
		GROUP BY l.short_code
		ORDER BY clicks DESC
		LIMIT $3`

	var sinceArg *time.Time
	if !since.IsZero() {
		sinceArg = &since
	}

	if err := r.db.SelectContext(ctx, &rows, query, ownerID, sinceArg, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to rank links: %w", op, err)
	}

	links := make([]models.LinkClicks, 0, len(rows))
	for _, row := range rows {
		links = append(links, models.LinkClicks{ShortCode: row.ShortCode, Clicks: row.Clicks})
	}

	return links, nil
}
