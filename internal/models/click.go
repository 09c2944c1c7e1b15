package models

import "time"

// Device classification buckets derived from the user agent string.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// GeoUnknown is recorded when the geolocation provider is unavailable
// or cannot resolve the address.
const GeoUnknown = "Unknown"

// ClickEvent is one recorded visit to a short link. Events are append-only:
// they are never updated or deleted by the normal flow.
type ClickEvent struct {
	// ID is the auto-generated identifier of the event.
	ID string
	// LinkID references the short link that was visited.
	LinkID int64
	// IP is the visitor address as derived from the proxy trust chain.
	IP string
	// UserAgent is the raw UA string, truncated to 500 characters.
	UserAgent string
	// Referrer is the Referer header, truncated to 500 characters.
	Referrer string
	// Country, City and Region come from the geolocation provider and
	// default to "Unknown" when the lookup fails.
	Country string
	City    string
	Region  string
	// Device is one of the Device* constants.
	Device string
	// IsBot flags crawler traffic per user agent heuristics.
	IsBot bool
	// ClickedAt is the event timestamp.
	ClickedAt time.Time
}

// Visit carries the raw request metadata the click recorder derives
// a ClickEvent from.
type Visit struct {
	IP        string
	UserAgent string
	Referrer  string
}
