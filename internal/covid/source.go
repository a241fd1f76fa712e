package covid

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no data is available for a country.
	ErrNotFound = errors.New("no covid data for country")

	// ErrNoSource is returned when the service has no upstream configured.
	ErrNoSource = errors.New("no covid data source configured")
)

// Source abstracts the upstream statistics API (e.g. disease.sh).
type Source interface {
	Name() string
	Historical(ctx context.Context, country string) (Historical, error)
	Countries(ctx context.Context) ([]CountrySummary, error)
	Country(ctx context.Context, name string) (CountrySummary, error)
}

// Store is the contract the display store must satisfy. It holds the latest
// displayed data only, never a history of fetches.
type Store interface {
	SaveView(key string, view CountryView)
	GetView(key string) (CountryView, error)
	SaveCountries(countries []CountrySummary)
	GetCountries() ([]CountrySummary, error)
	SaveComparison(set ComparisonSet)
	GetComparison() (ComparisonSet, error)
}
