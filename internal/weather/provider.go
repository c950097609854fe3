package weather

import "context"

// Fetcher abstracts the upstream weather API. Both calls are single-attempt
// from the caller's point of view; transport-level hardening lives inside
// the implementation.
type Fetcher interface {
	// FetchCurrent returns the current reading for a city.
	FetchCurrent(ctx context.Context, city City) (Sample, error)
	// FetchForecast returns the ordered short-term forecast samples for a
	// city (3-hour resolution, up to five days upstream).
	FetchForecast(ctx context.Context, city City) ([]Sample, error)
}

// Searcher abstracts city lookup by free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
