package providers

import (
	"context"

	"github.com/kelvins/geocoder"

	"weatherdeck/internal/weather"
)

// GoogleSearcher is an alternate city searcher backed by the Google
// Geocoding API. It resolves the query to coordinates and reverse-geocodes
// them to recover the country and state, so it returns at most one
// candidate per query.
type GoogleSearcher struct{}

// NewGoogleSearcher configures the shared geocoder API key and returns the
// searcher.
func NewGoogleSearcher(apiKey string) *GoogleSearcher {
	geocoder.ApiKey = apiKey
	return &GoogleSearcher{}
}

func (s *GoogleSearcher) Search(ctx context.Context, query string) ([]weather.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location, err := geocoder.Geocoding(geocoder.Address{City: query})
	if err != nil {
		return nil, &UpstreamError{Op: "google geocoding", Message: err.Error()}
	}

	result := weather.SearchResult{
		Name: query,
		Lat:  location.Latitude,
		Lon:  location.Longitude,
	}

	// Best effort: the reverse lookup fills country/state when available.
	if addresses, err := geocoder.GeocodingReverse(location); err == nil && len(addresses) > 0 {
		if addresses[0].City != "" {
			result.Name = addresses[0].City
		}
		result.Country = addresses[0].Country
		result.State = addresses[0].State
	}

	return []weather.SearchResult{result}, nil
}
