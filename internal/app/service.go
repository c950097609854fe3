// Package app orchestrates weather fetches, city commands, and the
// transient notices surfaced to the presentation layer.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"weatherdeck/internal/citystore"
	"weatherdeck/internal/observe"
	"weatherdeck/internal/weather"
)

// Notice is a dismissible error message shown to the user. Dismissing it
// clears the message without retrying the underlying operation.
type Notice struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Service wires the weather collaborators to the city store and exposes the
// observable state the UI renders.
type Service struct {
	fetcher  weather.Fetcher
	searcher weather.Searcher
	cities   *citystore.Store

	current *observe.Value[weather.CurrentConditions]
	daily   *observe.Value[[]weather.DailySummary]
	results *observe.Value[[]weather.SearchResult]
	notices *observe.Value[[]Notice]
	loading *observe.Value[bool]

	mu         sync.Mutex
	noticeList []Notice
}

func NewService(fetcher weather.Fetcher, searcher weather.Searcher, cities *citystore.Store) *Service {
	return &Service{
		fetcher:  fetcher,
		searcher: searcher,
		cities:   cities,
		current:  observe.NewValue[weather.CurrentConditions](),
		daily:    observe.NewValue[[]weather.DailySummary](),
		results:  observe.NewValue[[]weather.SearchResult](),
		notices:  observe.NewValue[[]Notice](),
		loading:  observe.NewValue[bool](),
	}
}

// Current is the observable current-conditions view. It carries no value
// until the first successful fetch.
func (s *Service) Current() *observe.Value[weather.CurrentConditions] { return s.current }

// Daily is the observable daily-summary list (at most seven entries).
func (s *Service) Daily() *observe.Value[[]weather.DailySummary] { return s.daily }

// SearchResults is the observable result list of the search flow.
func (s *Service) SearchResults() *observe.Value[[]weather.SearchResult] { return s.results }

// Notices is the observable list of undismissed error notices.
func (s *Service) Notices() *observe.Value[[]Notice] { return s.notices }

// Loading reports whether a refresh is in flight. It is a flag on service
// state, not a variant of the weather values.
func (s *Service) Loading() *observe.Value[bool] { return s.loading }

// Cities exposes the underlying city store.
func (s *Service) Cities() *citystore.Store { return s.cities }

// Refresh fetches current conditions and the forecast for the selected city
// concurrently. The two legs are independent: a failure in one never
// suppresses a successful result from the other, and a failed leg leaves
// the previously published value untouched. Each failure becomes its own
// notice, so an earlier error is never overwritten by a later sibling
// result. The joined error is returned for logging.
func (s *Service) Refresh(ctx context.Context) error {
	city, ok := s.cities.SelectedCity()
	if !ok {
		return nil
	}

	s.loading.Set(true)
	defer s.loading.Set(false)

	var (
		wg          sync.WaitGroup
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sample, err := s.fetcher.FetchCurrent(ctx, city)
		if err != nil {
			currentErr = err
			s.pushNotice(err.Error())
			return
		}
		s.current.Set(weather.SummarizeCurrent([]weather.Sample{sample}, city.Name, city.Country))
	}()
	go func() {
		defer wg.Done()
		samples, err := s.fetcher.FetchForecast(ctx, city)
		if err != nil {
			forecastErr = err
			s.pushNotice(err.Error())
			return
		}
		s.daily.Set(weather.SummarizeDaily(samples))
	}()
	wg.Wait()

	return errors.Join(currentErr, forecastErr)
}

// Search runs one city search and publishes the results. Failures surface
// as a notice and clear nothing.
func (s *Service) Search(ctx context.Context, query string) error {
	found, err := s.searcher.Search(ctx, query)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.pushNotice(err.Error())
		}
		return err
	}
	s.results.Set(found)
	return nil
}

// AddCity saves a search candidate to the city list.
func (s *Service) AddCity(result weather.SearchResult) error {
	if err := s.cities.Add(result.ToCity(time.Now())); err != nil {
		s.pushNotice(result.Name + ": " + err.Error())
		return err
	}
	return nil
}

// RemoveCity deletes a saved city by name.
func (s *Service) RemoveCity(name string) error {
	if err := s.cities.Remove(name); err != nil {
		s.pushNotice(name + ": " + err.Error())
		return err
	}
	return nil
}

// SelectCity switches the selected city and kicks off a background refresh
// for it. Selection itself never fails.
func (s *Service) SelectCity(name string) {
	s.cities.SetSelected(name)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			log.Printf("app: refresh after selecting %q: %v", name, err)
		}
	}()
}

// Dismiss removes one notice by ID. It reports whether the notice existed.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.noticeList[:0:0]
	found := false
	for _, n := range s.noticeList {
		if n.ID == id {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	if !found {
		return false
	}
	s.noticeList = kept
	s.notices.Set(kept)
	return true
}

func (s *Service) pushNotice(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noticeList = append(s.noticeList, Notice{
		ID:      uuid.NewString(),
		Message: message,
		At:      time.Now().UTC(),
	})
	out := make([]Notice, len(s.noticeList))
	copy(out, s.noticeList)
	s.notices.Set(out)
}
