// Package places provides destination validation and the hybrid
// nearby-search aggregator over two places providers.
package places

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/assistive-ai/digitalcane/internal/models"
)

// ErrNotFound reports that a search produced no usable candidates.
var ErrNotFound = errors.New("no matching place found")

// maxCandidates caps how many text-search candidates are considered.
const maxCandidates = 5

// GoogleClient is the rich (paid) places provider. It validates spoken
// destination names and serves as the escalation tier of the nearby search.
type GoogleClient struct {
	client   *maps.Client
	language string
	region   string
}

// NewGoogleClient creates a places client for the given API key.
func NewGoogleClient(apiKey, language, region string) (*GoogleClient, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &GoogleClient{client: c, language: language, region: region}, nil
}

// ValidateDestination resolves a spoken place name to a concrete Place via a
// bounded text search. The first coordinate-bearing candidate wins; provider
// relevance ranking is trusted and no local re-ranking happens. Ambiguous
// names are the intent layer's clarification problem, not a ranking problem.
func (g *GoogleClient) ValidateDestination(ctx context.Context, name string) (models.Place, error) {
	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    name,
		Language: g.language,
		Region:   g.region,
	})
	if err != nil {
		return models.Place{}, fmt.Errorf("place search for %q: %w", name, err)
	}

	results := resp.Results
	if len(results) > maxCandidates {
		results = results[:maxCandidates]
	}

	for _, r := range results {
		place, ok := placeFromSearchResult(r)
		if ok {
			return place, nil
		}
	}
	return models.Place{}, fmt.Errorf("validating %q: %w", name, ErrNotFound)
}

// SearchNearby is the Stage-2 escalation call of the hybrid aggregator.
func (g *GoogleClient) SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int) ([]models.Place, error) {
	resp, err := g.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Lat, Lng: center.Lng},
		Radius:   uint(radiusMeters),
		Language: g.language,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	var out []models.Place
	for _, r := range resp.Results {
		if place, ok := placeFromSearchResult(r); ok {
			out = append(out, place)
		}
	}
	return out, nil
}

func placeFromSearchResult(r maps.PlacesSearchResult) (models.Place, bool) {
	loc := models.Coordinate{
		Lat: r.Geometry.Location.Lat,
		Lng: r.Geometry.Location.Lng,
	}
	if !loc.IsValid() || (loc.Lat == 0 && loc.Lng == 0) {
		return models.Place{}, false
	}
	address := r.FormattedAddress
	if address == "" {
		address = r.Vicinity
	}
	return models.Place{
		ID:       r.PlaceID,
		Name:     r.Name,
		Address:  address,
		Types:    r.Types,
		Location: loc,
	}, true
}
