package citystore

import (
	"errors"
	"sync"
	"testing"
	"time"

	"weatherdeck/internal/kvstore"
	"weatherdeck/internal/weather"
)

// brokenStore fails every operation, standing in for a durable store whose
// backing medium has gone away.
type brokenStore struct{}

var errBrokenStore = errors.New("store unavailable")

func (brokenStore) Get(key string) (string, bool, error) { return "", false, errBrokenStore }
func (brokenStore) Put(key, value string) error          { return errBrokenStore }
func (brokenStore) Delete(key string) error              { return errBrokenStore }
func (brokenStore) Close() error                         { return nil }

func newTestStore(t *testing.T) (*Store, *kvstore.MemoryStore) {
	t.Helper()
	kv := kvstore.NewMemory()
	return New(kv), kv
}

func selectedCount(cities []weather.City) int {
	n := 0
	for _, c := range cities {
		if c.IsSelected {
			n++
		}
	}
	return n
}

func TestSeedsDefaultsWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	cities := s.Cities()
	if len(cities) != 5 {
		t.Fatalf("expected 5 default cities, got %d", len(cities))
	}

	// Recency ordering of the synthetic timestamps is deterministic.
	wantOrder := []string{"Taipei", "New York", "London", "Tokyo", "Sydney"}
	for i, want := range wantOrder {
		if cities[i].Name != want {
			t.Errorf("city %d: got %q, want %q", i, cities[i].Name, want)
		}
	}

	if _, ok := s.SelectedCity(); ok {
		t.Error("fresh store should have no selection")
	}
}

func TestAddIsIdempotentOnCaseVariedKey(t *testing.T) {
	s, _ := newTestStore(t)

	city := weather.City{Name: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522}
	if err := s.Add(city); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	dup := weather.City{Name: "paris", Country: "fr"}
	if err := s.Add(dup); err != ErrAlreadyExists {
		t.Fatalf("second add: got %v, want ErrAlreadyExists", err)
	}

	count := 0
	for _, c := range s.Cities() {
		if c.Key() == city.Key() {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one stored Paris entry, got %d", count)
	}
}

func TestAddStampsLastUsed(t *testing.T) {
	s, _ := newTestStore(t)

	before := time.Now().UnixMilli()
	if err := s.Add(weather.City{Name: "Berlin", Country: "DE", LastUsed: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cities := s.Cities()
	if cities[0].Name != "Berlin" {
		t.Fatalf("freshly added city should be most recent, got %q first", cities[0].Name)
	}
	if cities[0].LastUsed < before {
		t.Errorf("LastUsed not reset: got %d, want >= %d", cities[0].LastUsed, before)
	}
}

func TestSetSelectedKeepsSingleSelection(t *testing.T) {
	s, _ := newTestStore(t)

	for _, name := range []string{"Tokyo", "London", "TAIPEI", "Sydney", "tokyo"} {
		s.SetSelected(name)
		if n := selectedCount(s.Cities()); n != 1 {
			t.Fatalf("after selecting %q: %d cities selected, want 1", name, n)
		}
	}

	city, ok := s.SelectedCity()
	if !ok || city.Name != "Tokyo" {
		t.Fatalf("final selection: got %+v ok=%v, want Tokyo", city, ok)
	}
}

func TestSetSelectedUnknownNameSynthesizesPlaceholder(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetSelected("CityNeverAdded")

	city, ok := s.SelectedCity()
	if !ok {
		t.Fatal("selection should never fail")
	}
	if city.Name != "CityNeverAdded" || city.Country != "Unknown" || city.Lat != 0 || city.Lon != 0 {
		t.Fatalf("placeholder city malformed: %+v", city)
	}

	found := false
	for _, c := range s.Cities() {
		if c.Name == "CityNeverAdded" && c.Country == "Unknown" {
			found = true
		}
	}
	if !found {
		t.Fatal("placeholder city not appended to the list")
	}
	if n := selectedCount(s.Cities()); n != 1 {
		t.Fatalf("%d cities selected, want 1", n)
	}
}

func TestSelectTokyoScenario(t *testing.T) {
	s, _ := newTestStore(t)

	sub := s.Selected().Subscribe()
	defer sub.Cancel()
	// Drain the initial empty selection.
	if first := <-sub.C; first.OK {
		t.Fatalf("initial selection should be empty, got %+v", first)
	}

	s.SetSelected("Tokyo")

	cities := s.Cities()
	if cities[0].Name != "Tokyo" {
		t.Fatalf("list head after selection: got %q, want Tokyo", cities[0].Name)
	}

	sel := <-sub.C
	if !sel.OK || sel.City.Name != "Tokyo" || !sel.City.IsSelected {
		t.Fatalf("selection emission: got %+v", sel)
	}
}

func TestRemoveClearsMatchingSelection(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetSelected("Tokyo")

	sub := s.Selected().Subscribe()
	defer sub.Cancel()
	if cur := <-sub.C; !cur.OK {
		t.Fatal("expected Tokyo selected before removal")
	}

	if err := s.Remove("tokyo"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if sel := <-sub.C; sel.OK {
		t.Fatalf("selection should be cleared after removal, got %+v", sel)
	}
	if _, ok := s.SelectedCity(); ok {
		t.Fatal("SelectedCity should report no selection")
	}
}

func TestRemoveUnknownName(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Remove("Atlantis"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if len(s.Cities()) != 5 {
		t.Fatal("failed remove must not mutate the list")
	}
}

func TestRemoveDeletesAllNameMatches(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Add(weather.City{Name: "London", Country: "CA"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := s.Remove("LONDON"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	for _, c := range s.Cities() {
		if c.Name == "London" {
			t.Fatalf("London entry survived removal: %+v", c)
		}
	}
}

func TestStateSurvivesReload(t *testing.T) {
	kv := kvstore.NewMemory()
	s := New(kv)
	if err := s.Add(weather.City{Name: "Oslo", Country: "NO"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	s.SetSelected("Oslo")

	reloaded := New(kv)
	cities := reloaded.Cities()
	if cities[0].Name != "Oslo" || !cities[0].IsSelected {
		t.Fatalf("reloaded list head: got %+v, want selected Oslo", cities[0])
	}
	city, ok := reloaded.SelectedCity()
	if !ok || city.Name != "Oslo" {
		t.Fatalf("reloaded selection: got %+v ok=%v", city, ok)
	}
}

func TestCorruptSnapshotsFallBackToDefaults(t *testing.T) {
	kv := kvstore.NewMemory()
	if err := kv.Put("saved_cities", "{not json"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Put("selected_city", "also not json"); err != nil {
		t.Fatal(err)
	}

	s := New(kv)
	if len(s.Cities()) != 5 {
		t.Fatalf("expected default seed after corrupt snapshot, got %d cities", len(s.Cities()))
	}
	if _, ok := s.SelectedCity(); ok {
		t.Fatal("corrupt selection snapshot should clear selection")
	}
}

func TestConcurrentSetSelected(t *testing.T) {
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	names := []string{"Tokyo", "London", "Sydney", "Taipei", "New York"}
	for i := 0; i < 50; i++ {
		name := names[i%len(names)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetSelected(name)
		}()
	}
	wg.Wait()

	if n := selectedCount(s.Cities()); n != 1 {
		t.Fatalf("%d cities selected after concurrent selection, want 1", n)
	}
}

func TestListObservableEmitsSortedUpdates(t *testing.T) {
	s, _ := newTestStore(t)

	sub := s.List().Subscribe()
	defer sub.Cancel()

	initial := <-sub.C
	if len(initial) != 5 {
		t.Fatalf("initial emission: got %d cities", len(initial))
	}

	s.SetSelected("Sydney")
	updated := <-sub.C
	if updated[0].Name != "Sydney" {
		t.Fatalf("updated emission head: got %q, want Sydney", updated[0].Name)
	}
}

func TestMutationsSucceedWhenPersistenceFails(t *testing.T) {
	s := New(brokenStore{})

	if err := s.Add(weather.City{Name: "Oslo", Country: "NO"}); err != nil {
		t.Fatalf("add must succeed despite a failing store, got %v", err)
	}

	s.SetSelected("Oslo")
	sel, ok := s.SelectedCity()
	if !ok || sel.Name != "Oslo" {
		t.Fatalf("selection lost on persistence failure: %v, %v", sel, ok)
	}

	if err := s.Remove("Oslo"); err != nil {
		t.Fatalf("remove must succeed despite a failing store, got %v", err)
	}
	if _, ok := s.SelectedCity(); ok {
		t.Fatal("selection should be cleared after removing the selected city")
	}
}

func TestReadFailureFallsBackToDefaults(t *testing.T) {
	s := New(brokenStore{})

	cities := s.Cities()
	if len(cities) != 5 {
		t.Fatalf("expected seeded defaults on read failure, got %d cities", len(cities))
	}
	if _, ok := s.SelectedCity(); ok {
		t.Error("unreadable selection snapshot should leave nothing selected")
	}
}
