package service

import (
	"context"
	"fmt"
	"time"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/models"
)

// Fallback timeframes for unrecognized values, per reporting surface.
const (
	defaultLinkTimeframe  = models.TimeframeWeek
	defaultOwnerTimeframe = models.TimeframeMonth
)

const topLinksLimit = 5

// ClickAnalytics is the read side of the click store.
type ClickAnalytics interface {
	Totals(ctx context.Context, filter database.EventFilter) (int64, int64, error)
	CountBy(ctx context.Context, filter database.EventFilter, dim database.Dimension) ([]models.BucketCount, error)
	TopLinks(ctx context.Context, ownerID int64, since time.Time, limit int) ([]models.LinkClicks, error)
}

// LinkCounter is the slice of the link store the aggregator needs for
// per-owner totals and ownership checks.
type LinkCounter interface {
	GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// AnalyticsService answers summary queries over recorded click events.
// Reads derive from the events table, not the denormalized counters, and
// only need to reflect events committed before the call started.
type AnalyticsService struct {
	clicks ClickAnalytics
	links  LinkCounter
}

func NewAnalyticsService(clicks ClickAnalytics, links LinkCounter) *AnalyticsService {
	return &AnalyticsService{
		clicks: clicks,
		links:  links,
	}
}

// SummarizeLink reports on one link for its owner. Unrecognized
// timeframes fall back to 7d.
func (s *AnalyticsService) SummarizeLink(ctx context.Context, callerID int64, shortCode string, tf models.Timeframe) (*models.AggregateReport, error) {
	const op = "service.AnalyticsService.SummarizeLink"

	if !tf.Valid() {
		tf = defaultLinkTimeframe
	}

	link, err := s.links.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load link: %w", op, err)
	}
	if !link.OwnedBy(callerID) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	filter := database.EventFilter{
		LinkID: &link.ID,
		Since:  tf.Since(time.Now()),
	}

	report, err := s.aggregate(ctx, filter, tf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report, nil
}

// SummarizeOwner reports across all of the owner's links. Unrecognized
// timeframes fall back to 30d.
func (s *AnalyticsService) SummarizeOwner(ctx context.Context, ownerID int64, tf models.Timeframe) (*models.OwnerStats, error) {
	const op = "service.AnalyticsService.SummarizeOwner"

	if !tf.Valid() {
		tf = defaultOwnerTimeframe
	}

	since := tf.Since(time.Now())
	filter := database.EventFilter{
		OwnerID: &ownerID,
		Since:   since,
	}

	report, err := s.aggregate(ctx, filter, tf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totalLinks, err := s.links.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count links: %w", op, err)
	}

	topLinks, err := s.clicks.TopLinks(ctx, ownerID, since, topLinksLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to rank links: %w", op, err)
	}

	return &models.OwnerStats{
		AggregateReport: *report,
		TotalLinks:      totalLinks,
		TopLinks:        topLinks,
	}, nil
}

func (s *AnalyticsService) aggregate(ctx context.Context, filter database.EventFilter, tf models.Timeframe) (*models.AggregateReport, error) {
	total, uniqueIPs, err := s.clicks.Totals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to total clicks: %w", err)
	}

	report := &models.AggregateReport{
		Timeframe:   tf,
		TotalClicks: total,
		UniqueIPs:   uniqueIPs,
	}

	for _, group := range []struct {
		dim  database.Dimension
		dest *[]models.BucketCount
	}{
		{database.ByDate, &report.ByDate},
		{database.ByCountry, &report.ByCountry},
		{database.ByReferrer, &report.ByReferrer},
		{database.ByDevice, &report.ByDevice},
	} {
		buckets, err := s.clicks.CountBy(ctx, filter, group.dim)
		if err != nil {
			return nil, fmt.Errorf("failed to group clicks: %w", err)
		}
		*group.dest = buckets
	}

	return report, nil
}
