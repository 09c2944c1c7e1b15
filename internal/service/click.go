package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/example/shortly/internal/geoip"
	"github.com/example/shortly/internal/models"
	"github.com/example/shortly/internal/visitor"
)

// metadataMaxLen caps stored UA and referrer strings.
const metadataMaxLen = 500

// recordTimeout bounds detached recording work. The redirect has already
// been sent by then; this only stops a wedged store from leaking goroutines.
const recordTimeout = 30 * time.Second

// ClickStore is the slice of the persistence layer the recorder writes to.
type ClickStore interface {
	Record(ctx context.Context, event *models.ClickEvent, uniqueVisitor bool) error
}

// ClickRecorder derives visitor metadata from raw request data and
// persists one click event per approved redirect.
type ClickRecorder struct {
	store   ClickStore
	geo     geoip.Provider
	tracker visitor.Tracker
	logger  *slog.Logger
}

func NewClickRecorder(store ClickStore, geo geoip.Provider, tracker visitor.Tracker, logger *slog.Logger) *ClickRecorder {
	return &ClickRecorder{
		store:   store,
		geo:     geo,
		tracker: tracker,
		logger:  logger,
	}
}

// Record derives a click event and persists it. Geolocation and the
// unique-visitor check degrade gracefully: a failed lookup records
// "Unknown", a failed tracker records a non-unique click.
func (r *ClickRecorder) Record(ctx context.Context, link *models.ShortLink, visit models.Visit) error {
	const op = "service.ClickRecorder.Record"

	event := r.buildEvent(ctx, link, visit)

	unique := false
	if visit.IP != "" {
		first, err := r.tracker.FirstVisit(ctx, link.ID, visit.IP)
		if err != nil {
			r.logger.Warn("unique-visitor check failed",
				slog.String("op", op),
				slog.String("short_code", link.ShortCode),
				slog.Any("err", err))
		} else {
			unique = first
		}
	}

	if err := r.store.Record(ctx, event, unique); err != nil {
		return fmt.Errorf("%s: failed to record click: %w", op, err)
	}

	return nil
}

// RecordDetached records the click on a fresh context, decoupled from the
// triggering request. Invoked after the redirect response has been
// written; failures are logged and dropped, never surfaced to the visitor.
func (r *ClickRecorder) RecordDetached(link *models.ShortLink, visit models.Visit) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.Record(ctx, link, visit); err != nil {
			r.logger.Error("dropping click event",
				slog.String("short_code", link.ShortCode),
				slog.Any("err", err))
		}
	}()
}

func (r *ClickRecorder) buildEvent(ctx context.Context, link *models.ShortLink, visit models.Visit) *models.ClickEvent {
	const op = "service.ClickRecorder.buildEvent"

	loc := geoip.Unknown
	if visit.IP != "" {
		resolved, err := r.geo.Locate(ctx, visit.IP)
		if err != nil {
			r.logger.Warn("geolocation lookup failed",
				slog.String("op", op),
				slog.Any("err", err))
		} else {
			loc = resolved
		}
	}

	ua := useragent.Parse(visit.UserAgent)

	return &models.ClickEvent{
		ID:        uuid.NewString(),
		LinkID:    link.ID,
		IP:        visit.IP,
		UserAgent: truncate(visit.UserAgent, metadataMaxLen),
		Referrer:  truncate(visit.Referrer, metadataMaxLen),
		Country:   loc.Country,
		City:      loc.City,
		Region:    loc.Region,
		Device:    classifyDevice(ua),
		IsBot:     ua.Bot,
		ClickedAt: time.Now(),
	}
}

func classifyDevice(ua useragent.UserAgent) string {
	switch {
	case ua.Tablet:
		return models.DeviceTablet
	case ua.Mobile:
		return models.DeviceMobile
	case ua.Desktop:
		return models.DeviceDesktop
	default:
		return models.DeviceUnknown
	}
}

// truncate cuts s down to at most max bytes without splitting a rune;
// a torn multi-byte sequence would be invalid UTF-8 and rejected by the
// store's TEXT columns.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut]
}
