// Package route fetches transit directions and normalizes provider legs
// into rider-facing steps.
package route

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/assistive-ai/digitalcane/internal/models"
)

var (
	// ErrNoRouteFound reports that the provider returned no usable transit route.
	ErrNoRouteFound = errors.New("no route found")
	// ErrDecode reports a provider response that did not match the expected schema.
	ErrDecode = errors.New("route response malformed")
	// ErrLocationUnavailable reports that the origin requires the current
	// position but none is available. Routing from a guessed landmark is
	// worse than failing for a blind user, so there is no fallback.
	ErrLocationUnavailable = errors.New("current location unavailable")
)

// Preference is the rider's routing preference.
type Preference string

const (
	PreferNone           Preference = ""
	PreferLessWalking    Preference = "LESS_WALKING"
	PreferFewerTransfers Preference = "FEWER_TRANSFERS"
)

// ResolvePreference maps the two user settings to a single preference.
// They are mutually exclusive; less walking wins when both are set.
func ResolvePreference(lessWalking, fewerTransfers bool) Preference {
	switch {
	case lessWalking:
		return PreferLessWalking
	case fewerTransfers:
		return PreferFewerTransfers
	default:
		return PreferNone
	}
}

// Fetcher retrieves transit routes from the Google Directions API.
type Fetcher struct {
	client     *maps.Client
	language   string
	region     string
	preference Preference
}

// NewFetcher creates a route fetcher for the given API key.
func NewFetcher(apiKey, language, region string, preference Preference) (*Fetcher, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &Fetcher{client: c, language: language, region: region, preference: preference}, nil
}

// FetchRoute fetches a transit route from origin to destination. An origin
// equal to models.CurrentLocationToken (or empty) uses current; when that
// coordinate is missing the call fails fast with ErrLocationUnavailable.
func (f *Fetcher) FetchRoute(ctx context.Context, origin, destination string, current *models.Coordinate) (models.RouteData, error) {
	originParam := origin
	if origin == models.CurrentLocationToken || origin == "" {
		if current == nil || !current.IsValid() {
			return models.RouteData{}, ErrLocationUnavailable
		}
		originParam = fmt.Sprintf("%f,%f", current.Lat, current.Lng)
	}

	req := &maps.DirectionsRequest{
		Origin:      originParam,
		Destination: destination,
		Mode:        maps.TravelModeTransit,
		Language:    f.language,
		Region:      f.region,
	}
	switch f.preference {
	case PreferLessWalking:
		req.TransitRoutingPreference = maps.TransitRoutingPreferenceLessWalking
	case PreferFewerTransfers:
		req.TransitRoutingPreference = maps.TransitRoutingPreferenceFewerTransfers
	}

	routes, _, err := f.client.Directions(ctx, req)
	if err != nil {
		return models.RouteData{}, fmt.Errorf("fetching directions: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return models.RouteData{}, ErrNoRouteFound
	}

	leg := routes[0].Legs[0]
	steps := Normalize(leg.Steps)
	if len(steps) == 0 {
		// A transit request that yields only walking legs is no transit route.
		return models.RouteData{}, ErrNoRouteFound
	}

	return models.RouteData{
		Steps:         steps,
		TotalDuration: FormatDuration(leg.Duration),
		TotalDistance: leg.Distance.HumanReadable,
	}, nil
}
