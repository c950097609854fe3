package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"weatherdeck/internal/weather"
)

// GeoSearcher implements weather.Searcher against the OpenWeatherMap direct
// geocoding endpoint.
type GeoSearcher struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewGeoSearcher creates a searcher capped at limit results per query.
// A limit <= 0 falls back to 5.
func NewGeoSearcher(client *http.Client, apiKey string, limit int) *GeoSearcher {
	if limit <= 0 {
		limit = 5
	}
	return &GeoSearcher{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/geo/1.0/direct",
		limit:   limit,
		client:  client,
		circuit: newBreaker("geocoding"),
	}
}

func (s *GeoSearcher) Search(ctx context.Context, query string) ([]weather.SearchResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", s.apiKey)
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(s.limit))

	u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(s.client, s.circuit, req, "city search")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
		State   string  `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	results := make([]weather.SearchResult, 0, len(payload))
	for _, entry := range payload {
		results = append(results, weather.SearchResult{
			Name:    entry.Name,
			Country: entry.Country,
			State:   entry.State,
			Lat:     entry.Lat,
			Lon:     entry.Lon,
		})
	}
	return results, nil
}
