// Package location resolves, caches and overrides the observer's location.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLocationUnavailable is returned when every resolution path failed
var ErrLocationUnavailable = errors.New("location fetch failed")

// Source records how a location was obtained
type Source string

const (
	SourceGeolocation Source = "geolocation"
	SourceIP          Source = "ip"
	SourceManual      Source = "manual"
)

// Location is a resolved observer position
type Location struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timezone  string    `json:"timezone"`
	City      string    `json:"city"`
	Source    Source    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Zone loads the location's IANA time zone
func (l Location) Zone() (*time.Location, error) {
	if l.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(l.Timezone)
}

// Expired reports whether the location is older than ttl at now
func (l Location) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.Timestamp) > ttl
}

// SamePlace reports whether two locations describe the same place and zone
func (l Location) SamePlace(o Location) bool {
	return l.Lat == o.Lat && l.Lon == o.Lon && l.Timezone == o.Timezone
}

// Validate checks coordinates and zone
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("longitude %f out of range", l.Lon)
	}
	if _, err := l.Zone(); err != nil {
		return fmt.Errorf("timezone %q: %w", l.Timezone, err)
	}
	return nil
}

// Provider resolves the current location
type Provider interface {
	Resolve(ctx context.Context) (Location, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context) (Location, error)

func (f ProviderFunc) Resolve(ctx context.Context) (Location, error) {
	return f(ctx)
}

// StaticProvider always resolves to a fixed position, filling in the city
// through the optional reverse geocoder. It stands in for on-device
// geolocation when the service is configured with coordinates.
type StaticProvider struct {
	Lat, Lon float64
	Timezone string
	City     string
	Geocoder ReverseGeocoder
	Now      func() time.Time
}

func (p *StaticProvider) Resolve(ctx context.Context) (Location, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	loc := Location{
		Lat:       p.Lat,
		Lon:       p.Lon,
		Timezone:  p.Timezone,
		City:      p.City,
		Source:    SourceGeolocation,
		Timestamp: now(),
	}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}

	if loc.City == "" && p.Geocoder != nil {
		// Reverse geocoding is best effort.
		if city, err := p.Geocoder.CityName(ctx, p.Lat, p.Lon); err == nil {
			loc.City = city
		}
	}
	return loc, nil
}
