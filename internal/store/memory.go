package store

import (
	"sync"

	"github.com/i474232898/covid-dashboard/internal/covid"
)

// ErrNotFound is returned when nothing has been stored for the requested data.
var ErrNotFound = covid.ErrNotFound

// MemoryStore is a concurrency-safe in-memory implementation of the display store.
// Saving replaces what was there; nothing older than the latest save is retained.
type MemoryStore struct {
	mu sync.RWMutex

	// key: covid.CountryKey of the requested name
	views map[string]covid.CountryView

	countries  []covid.CountrySummary
	comparison covid.ComparisonSet
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		views: make(map[string]covid.CountryView),
	}
}

// SaveView replaces the displayed view for a country.
func (s *MemoryStore) SaveView(key string, view covid.CountryView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.views[covid.CountryKey(key)] = view
}

// GetView returns the displayed view for a country.
func (s *MemoryStore) GetView(key string) (covid.CountryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view, ok := s.views[covid.CountryKey(key)]
	if !ok {
		return covid.CountryView{}, ErrNotFound
	}
	return view, nil
}

// SaveCountries replaces the country list.
func (s *MemoryStore) SaveCountries(countries []covid.CountrySummary) {
	cp := make([]covid.CountrySummary, len(countries))
	copy(cp, countries)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.countries = cp
}

// GetCountries returns a copy of the country list.
func (s *MemoryStore) GetCountries() ([]covid.CountrySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.countries == nil {
		return nil, ErrNotFound
	}

	cp := make([]covid.CountrySummary, len(s.countries))
	copy(cp, s.countries)
	return cp, nil
}

// SaveComparison replaces the comparison set.
func (s *MemoryStore) SaveComparison(set covid.ComparisonSet) {
	cp := make(covid.ComparisonSet, len(set))
	for k, v := range set {
		cp[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.comparison = cp
}

// GetComparison returns a copy of the comparison set.
func (s *MemoryStore) GetComparison() (covid.ComparisonSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.comparison == nil {
		return nil, ErrNotFound
	}

	cp := make(covid.ComparisonSet, len(s.comparison))
	for k, v := range s.comparison {
		cp[k] = v
	}
	return cp, nil
}
