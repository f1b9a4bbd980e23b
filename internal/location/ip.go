package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IPProvider geolocates the service by its public IP address using an
// ipwho.is-compatible endpoint.
type IPProvider struct {
	URL             string
	Client          *http.Client
	DefaultTimezone string
	Now             func() time.Time
}

// ipWhoResponse uses pointers so that a missing coordinate is not confused
// with a position on the equator or the prime meridian.
type ipWhoResponse struct {
	Success   *bool    `json:"success"`
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
	Timezone  struct {
		ID string `json:"id"`
	} `json:"timezone"`
}

func (p *IPProvider) Resolve(ctx context.Context) (Location, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("building IP geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("IP geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Location{}, fmt.Errorf("IP geolocation request failed: %s", resp.Status)
	}

	var body ipWhoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("decoding IP geolocation response: %w", err)
	}
	if body.Success != nil && !*body.Success {
		return Location{}, fmt.Errorf("IP geolocation lookup failed: %s", body.Message)
	}
	if body.Latitude == nil || body.Longitude == nil {
		return Location{}, fmt.Errorf("IP geolocation response has no coordinates")
	}
	lat, lon := *body.Latitude, *body.Longitude
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("IP geolocation returned out of range coordinates %f,%f", lat, lon)
	}

	tz := body.Timezone.ID
	if tz == "" {
		tz = p.DefaultTimezone
	}

	return Location{
		Lat:       lat,
		Lon:       lon,
		Timezone:  tz,
		City:      body.City,
		Source:    SourceIP,
		Timestamp: now(),
	}, nil
}
