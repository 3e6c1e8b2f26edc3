package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/SabaShahdin/ms/internal/types"
)

// ErrNoResult is returned when the geocoder resolves a place name to nothing.
var ErrNoResult = errors.New("no geocoding result")

// Geocoder resolves a free-form place name to coordinates. The locator takes
// this interface so tests can stub the external lookup.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (types.Point, error)
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Geocode resolves a place name to the first matching coordinate pair.
func (s *GeocodeService) Geocode(ctx context.Context, place string) (types.Point, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: place})
	if err != nil {
		return types.Point{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, ErrNoResult
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
