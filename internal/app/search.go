package app

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// MinQueryLength is the shortest trimmed query worth searching for.
const MinQueryLength = 2

// Debouncer implements the search-as-you-type flow: input changes within
// the quiet period collapse to one search using the latest value, queries
// shorter than MinQueryLength never trigger, and a query identical to the
// previously executed one is not re-run. A new search cancels the
// in-flight request of the superseded query.
type Debouncer struct {
	search   func(ctx context.Context, query string) error
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	lastRun string
	cancel  context.CancelFunc
}

// NewDebouncer wraps the service's one-shot Search with debounce semantics.
func NewDebouncer(svc *Service, interval time.Duration) *Debouncer {
	return &Debouncer{
		search:   svc.Search,
		interval: interval,
	}
}

// QueryChanged records the latest input and (re)arms the quiet-period
// timer. It never blocks.
func (d *Debouncer) QueryChanged(query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = query
	if d.timer != nil {
		d.timer.Stop()
	}
	if utf8.RuneCountInString(query) < MinQueryLength {
		return
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

// Stop cancels any armed timer and in-flight search.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	query := d.pending
	// Re-check here: a keystroke that shortened the query may land after
	// the timer already expired, in which case Stop cannot prevent this
	// callback from running with the shortened pending value.
	if utf8.RuneCountInString(query) < MinQueryLength || query == d.lastRun {
		d.mu.Unlock()
		return
	}
	d.lastRun = query

	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	// Errors already surfaced as notices by the service.
	_ = d.search(ctx, query)
}
