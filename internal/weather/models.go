package weather

import (
	"strings"
	"time"
)

// Sample is one raw upstream weather reading (3-hour resolution in the
// OpenWeatherMap forecast API).
type Sample struct {
	Timestamp time.Time `json:"timestamp"`

	// DateText is the upstream local-time text for this reading
	// (e.g. "2024-01-15 09:00:00"). Daily grouping keys off its
	// calendar-date prefix rather than re-deriving from Timestamp.
	DateText string `json:"dateText"`

	TempC      float64 `json:"tempC"`
	FeelsLikeC float64 `json:"feelsLikeC"`
	MinTempC   float64 `json:"minTempC"`
	MaxTempC   float64 `json:"maxTempC"`

	Humidity int `json:"humidityPercent"`
	Pressure int `json:"pressureHpa"`

	Description string `json:"description"`
	Icon        string `json:"icon"`

	// Pop is the probability of precipitation in [0, 1]. Missing upstream
	// values decode to 0.
	Pop float64 `json:"pop"`
}

// DateKey returns the calendar-date portion of the sample's local-time text.
func (s Sample) DateKey() string {
	if len(s.DateText) < 10 {
		return s.DateText
	}
	return s.DateText[:10]
}

// CurrentConditions is the "now" view rendered for the selected city.
type CurrentConditions struct {
	City    string `json:"city"`
	Country string `json:"country"`

	TempC      float64 `json:"tempC"`
	FeelsLikeC float64 `json:"feelsLikeC"`
	MinTempC   float64 `json:"minTempC"`
	MaxTempC   float64 `json:"maxTempC"`

	Humidity int `json:"humidityPercent"`
	Pressure int `json:"pressureHpa"`

	Description string `json:"description"`
	Icon        string `json:"icon"`

	Timestamp time.Time `json:"timestamp"`
}

// DailySummary aggregates all samples sharing one calendar date.
type DailySummary struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Weekday string `json:"weekday"`

	MaxTempC float64 `json:"maxTempC"`
	MinTempC float64 `json:"minTempC"`

	Humidity int `json:"humidityPercent"`

	Description string `json:"description"`
	Icon        string `json:"icon"`

	// ChanceOfRain is the peak probability of precipitation for the day,
	// as an integer percentage.
	ChanceOfRain int `json:"chanceOfRain"`
}

// City is a saved location the user can select for weather lookups.
type City struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`

	IsSelected bool `json:"isSelected"`

	// LastUsed is epoch milliseconds of the last selection (or creation).
	LastUsed int64 `json:"lastUsed"`
}

// Key returns the canonical lookup key for this city. Matching on
// (name, country) is case-insensitive.
func (c City) Key() string {
	return strings.ToLower(c.Name) + ":" + strings.ToLower(c.Country)
}

// SearchResult is a candidate returned by city search. It is never persisted
// directly; callers convert it to a City (with a fresh LastUsed) before
// adding it to the store.
type SearchResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// ToCity converts a search candidate into a storable City stamped with the
// given selection time.
func (r SearchResult) ToCity(now time.Time) City {
	return City{
		Name:     r.Name,
		Country:  r.Country,
		Lat:      r.Lat,
		Lon:      r.Lon,
		LastUsed: now.UnixMilli(),
	}
}
