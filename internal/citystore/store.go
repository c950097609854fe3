// Package citystore holds the persisted list of saved cities and the single
// selected city that weather lookups target.
package citystore

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"weatherdeck/internal/kvstore"
	"weatherdeck/internal/observe"
	"weatherdeck/internal/weather"
)

const (
	savedCitiesKey  = "saved_cities"
	selectedCityKey = "selected_city"
)

var (
	// ErrAlreadyExists is returned when adding a city that is already saved.
	ErrAlreadyExists = errors.New("city already exists")
	// ErrNotFound is returned when removing a city that is not saved.
	ErrNotFound = errors.New("city not found")
)

// Selection is the observable "currently selected city" value. OK is false
// when no city is selected.
type Selection struct {
	City weather.City `json:"city"`
	OK   bool         `json:"ok"`
}

// Store is the process-wide owner of the saved city list. All mutations are
// serialized behind one mutex so at most one city is ever selected.
//
// Persistence is best effort: a mutation that succeeded in memory reports
// success even when the snapshot write fails (the failure is logged). Reads
// at startup fall back to the built-in defaults.
type Store struct {
	mu       sync.Mutex
	kv       kvstore.Store
	cities   []weather.City
	selected *weather.City

	listObs *observe.Value[[]weather.City]
	selObs  *observe.Value[Selection]

	now func() time.Time
}

// New loads both snapshots from kv, seeding defaults when the saved list is
// absent or unreadable, and publishes the initial state.
func New(kv kvstore.Store) *Store {
	s := &Store{
		kv:      kv,
		listObs: observe.NewValue[[]weather.City](),
		selObs:  observe.NewValue[Selection](),
		now:     time.Now,
	}

	s.cities = s.loadCities()
	s.selected = s.loadSelected()

	s.publishList()
	s.publishSelected()
	return s
}

func (s *Store) loadCities() []weather.City {
	raw, ok, err := s.kv.Get(savedCitiesKey)
	if err != nil {
		log.Printf("citystore: reading %s failed, using defaults: %v", savedCitiesKey, err)
		return s.defaultCities()
	}
	if !ok {
		return s.defaultCities()
	}

	var cities []weather.City
	if err := json.Unmarshal([]byte(raw), &cities); err != nil {
		log.Printf("citystore: corrupt %s snapshot, using defaults: %v", savedCitiesKey, err)
		return s.defaultCities()
	}
	return cities
}

func (s *Store) loadSelected() *weather.City {
	raw, ok, err := s.kv.Get(selectedCityKey)
	if err != nil || !ok {
		return nil
	}

	var city weather.City
	if err := json.Unmarshal([]byte(raw), &city); err != nil {
		log.Printf("citystore: corrupt %s snapshot, selection cleared: %v", selectedCityKey, err)
		return nil
	}
	return &city
}

// defaultCities seeds the list shown on a fresh install. The synthetic
// LastUsed offsets are distinct so the recency ordering is deterministic.
func (s *Store) defaultCities() []weather.City {
	now := s.now()
	seed := func(name, country string, lat, lon float64, daysAgo int) weather.City {
		return weather.City{
			Name:     name,
			Country:  country,
			Lat:      lat,
			Lon:      lon,
			LastUsed: now.AddDate(0, 0, -daysAgo).UnixMilli(),
		}
	}
	return []weather.City{
		seed("Taipei", "TW", 25.0330, 121.5654, 1),
		seed("New York", "US", 40.7128, -74.0060, 2),
		seed("London", "GB", 51.5074, -0.1278, 3),
		seed("Tokyo", "JP", 35.6762, 139.6503, 4),
		seed("Sydney", "AU", -33.8688, 151.2093, 5),
	}
}

// List is the observable saved-city list, sorted most recently used first.
// New subscribers receive the current list immediately.
func (s *Store) List() *observe.Value[[]weather.City] {
	return s.listObs
}

// Selected is the observable selected-city reference.
func (s *Store) Selected() *observe.Value[Selection] {
	return s.selObs
}

// Cities returns a sorted snapshot of the saved list.
func (s *Store) Cities() []weather.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedCopy()
}

// SelectedCity returns the current selection, if any.
func (s *Store) SelectedCity() (weather.City, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return weather.City{}, false
	}
	return *s.selected, true
}

// Add saves a copy of city with a fresh LastUsed. Matching on
// (name, country) is case-insensitive; a match fails with ErrAlreadyExists
// and mutates nothing.
func (s *Store) Add(city weather.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := city.Key()
	for _, existing := range s.cities {
		if existing.Key() == key {
			return ErrAlreadyExists
		}
	}

	city.LastUsed = s.now().UnixMilli()
	s.cities = append(s.cities, city)

	s.persistCities()
	s.publishList()
	return nil
}

// Remove deletes every saved city whose name matches case-insensitively
// (country is deliberately ignored). It fails with ErrNotFound when nothing
// matched. Removing the selected city's name clears the selection.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cities[:0:0]
	removed := false
	for _, c := range s.cities {
		if strings.EqualFold(c.Name, name) {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return ErrNotFound
	}
	s.cities = kept

	if s.selected != nil && strings.EqualFold(s.selected.Name, name) {
		s.selected = nil
		s.persistSelected()
		s.publishSelected()
	}

	s.persistCities()
	s.publishList()
	return nil
}

// SetSelected marks the named city as selected and touches its LastUsed.
// It never fails: an unknown name synthesizes a placeholder city (country
// "Unknown", coordinates (0,0)) so callers can always select what the user
// typed. All other cities are deselected.
func (s *Store) SetSelected(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMillis := s.now().UnixMilli()
	found := -1
	for i := range s.cities {
		if strings.EqualFold(s.cities[i].Name, name) && found == -1 {
			found = i
			continue
		}
		s.cities[i].IsSelected = false
	}

	if found >= 0 {
		s.cities[found].IsSelected = true
		s.cities[found].LastUsed = nowMillis
		selected := s.cities[found]
		s.selected = &selected
	} else {
		placeholder := weather.City{
			Name:       name,
			Country:    "Unknown",
			IsSelected: true,
			LastUsed:   nowMillis,
		}
		s.cities = append(s.cities, placeholder)
		s.selected = &placeholder
	}

	s.persistCities()
	s.persistSelected()
	s.publishList()
	s.publishSelected()
}

// persistCities writes the saved-city snapshot. Failures are logged and
// swallowed: the in-memory mutation already succeeded and the caller is not
// told otherwise.
func (s *Store) persistCities() {
	raw, err := json.Marshal(s.cities)
	if err != nil {
		log.Printf("citystore: marshal %s snapshot failed: %v", savedCitiesKey, err)
		return
	}
	if err := s.kv.Put(savedCitiesKey, string(raw)); err != nil {
		log.Printf("citystore: persisting %s failed: %v", savedCitiesKey, err)
	}
}

func (s *Store) persistSelected() {
	if s.selected == nil {
		if err := s.kv.Delete(selectedCityKey); err != nil {
			log.Printf("citystore: clearing %s failed: %v", selectedCityKey, err)
		}
		return
	}
	raw, err := json.Marshal(s.selected)
	if err != nil {
		log.Printf("citystore: marshal %s snapshot failed: %v", selectedCityKey, err)
		return
	}
	if err := s.kv.Put(selectedCityKey, string(raw)); err != nil {
		log.Printf("citystore: persisting %s failed: %v", selectedCityKey, err)
	}
}

func (s *Store) publishList() {
	s.listObs.Set(s.sortedCopy())
}

func (s *Store) publishSelected() {
	if s.selected == nil {
		s.selObs.Set(Selection{})
		return
	}
	s.selObs.Set(Selection{City: *s.selected, OK: true})
}

func (s *Store) sortedCopy() []weather.City {
	out := make([]weather.City, len(s.cities))
	copy(out, s.cities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUsed > out[j].LastUsed
	})
	return out
}
