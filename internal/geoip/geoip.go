// Package geoip resolves visitor addresses to a coarse location.
// Providers are best-effort collaborators: any failure degrades to an
// "Unknown" location and must never block the caller beyond its timeout.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/shortly/internal/models"
)

// Location is the resolved geolocation of an address.
type Location struct {
	Country string
	City    string
	Region  string
}

// Unknown is returned whenever a lookup cannot be completed.
var Unknown = Location{
	Country: models.GeoUnknown,
	City:    models.GeoUnknown,
	Region:  models.GeoUnknown,
}

// Provider resolves an IP address to a Location.
type Provider interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Noop resolves every address to Unknown. Used when geolocation is disabled.
type Noop struct{}

func (Noop) Locate(context.Context, string) (Location, error) {
	return Unknown, nil
}

// HTTPProvider queries an ip-api style JSON endpoint: GET {endpoint}/{ip}
// returning {"country": ..., "city": ..., "regionName": ...}.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Locate(ctx context.Context, ip string) (Location, error) {
	const op = "geoip.HTTPProvider.Locate"

	reqURL := fmt.Sprintf("%s/%s", p.endpoint, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Unknown, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Unknown, fmt.Errorf("%s: lookup failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unknown, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var body struct {
		Country    string `json:"country"`
		City       string `json:"city"`
		RegionName string `json:"regionName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Unknown, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	loc := Location{
		Country: body.Country,
		City:    body.City,
		Region:  body.RegionName,
	}
	if loc.Country == "" {
		loc.Country = models.GeoUnknown
	}
	if loc.City == "" {
		loc.City = models.GeoUnknown
	}
	if loc.Region == "" {
		loc.Region = models.GeoUnknown
	}

	return loc, nil
}
