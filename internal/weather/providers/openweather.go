package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"weatherdeck/internal/weather"
)

const owmDateTextLayout = "2006-01-02 15:04:05"

// OpenWeatherProvider implements weather.Fetcher against the OpenWeatherMap
// current-weather and 5-day/3-hour forecast endpoints.
type OpenWeatherProvider struct {
	apiKey      string
	currentURL  string
	forecastURL string
	client      *http.Client
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:      apiKey,
		currentURL:  "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast",
		client:      client,
		circuit:     newBreaker("openweather"),
	}
}

// owmReading is the shared shape of one reading in both the current-weather
// response and each forecast list entry.
type owmReading struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Pop   float64 `json:"pop"`
	DtTxt string  `json:"dt_txt"`
}

func (r owmReading) toSample() weather.Sample {
	s := weather.Sample{
		Timestamp:  time.Unix(r.Dt, 0).UTC(),
		DateText:   r.DtTxt,
		TempC:      r.Main.Temp,
		FeelsLikeC: r.Main.FeelsLike,
		MinTempC:   r.Main.TempMin,
		MaxTempC:   r.Main.TempMax,
		Humidity:   r.Main.Humidity,
		Pressure:   r.Main.Pressure,
		Pop:        r.Pop,
	}
	if s.DateText == "" {
		s.DateText = s.Timestamp.Format(owmDateTextLayout)
	}
	if len(r.Weather) > 0 {
		s.Description = r.Weather[0].Description
		s.Icon = r.Weather[0].Icon
	}
	return s
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, city weather.City) (weather.Sample, error) {
	resp, err := p.get(ctx, p.currentURL, city, "openweather current")
	if err != nil {
		return weather.Sample{}, err
	}
	defer resp.Body.Close()

	var payload owmReading
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Sample{}, fmt.Errorf("decode current weather: %w", err)
	}
	return payload.toSample(), nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, city weather.City) ([]weather.Sample, error) {
	resp, err := p.get(ctx, p.forecastURL, city, "openweather forecast")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []owmReading `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	samples := make([]weather.Sample, 0, len(payload.List))
	for _, entry := range payload.List {
		samples = append(samples, entry.toSample())
	}
	return samples, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, baseURL string, city weather.City, op string) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	// Prefer coordinates when the saved city has real ones; cities that
	// entered the store via the select-by-name fallback carry (0,0) and
	// country "Unknown" and must be queried by name.
	if city.Lat != 0 || city.Lon != 0 {
		values.Set("lat", fmt.Sprintf("%f", city.Lat))
		values.Set("lon", fmt.Sprintf("%f", city.Lon))
	} else {
		q := city.Name
		if city.Country != "" && city.Country != "Unknown" {
			q = fmt.Sprintf("%s,%s", city.Name, city.Country)
		}
		values.Set("q", q)
	}

	u := fmt.Sprintf("%s?%s", baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return doRequest(p.client, p.circuit, req, op)
}
