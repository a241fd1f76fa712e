package covid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrSuperseded is returned by SelectCountry and RefreshComparison when the
// selection changed before their fetch completed.
var ErrSuperseded = errors.New("selection changed before fetch completed")

// Service is the dashboard shell: it owns the selection state, drives the fetches
// and feeds their results through the pure transformations into the store.
type Service struct {
	source Source
	store  Store
	logger *zap.Logger

	mu         sync.Mutex
	selection  Selection
	inflight   context.CancelFunc
	generation uint64
	compareGen uint64
}

// NewService creates a new Service starting from the given selection.
func NewService(source Source, store Store, logger *zap.Logger, initial Selection) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(initial.Country) == "" {
		initial.Country = DefaultCountry
	}
	initial.Compare = cleanNames(initial.Compare)

	return &Service{
		source:    source,
		store:     store,
		logger:    logger,
		selection: initial,
	}
}

// Selection returns a copy of the current selection.
func (s *Service) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Selection{
		Country: s.selection.Country,
		Compare: append([]string(nil), s.selection.Compare...),
	}
}

// SelectCountry makes name the selected country and loads its timeline.
// A historical fetch still running for a previous selection is cancelled, and a
// result that arrives after the selection moved on is discarded.
func (s *Service) SelectCountry(ctx context.Context, name string) (CountryView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CountryView{}, fmt.Errorf("country name is required")
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight()
	}
	s.inflight = cancel
	s.generation++
	gen := s.generation
	s.selection.Country = name
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.generation == gen {
			s.inflight = nil
		}
		s.mu.Unlock()
	}()

	view, ok, err := s.fetchView(fetchCtx, name)
	if !s.isCurrent(gen) {
		s.logger.Debug("discarding stale timeline", zap.String("country", name))
		return CountryView{}, ErrSuperseded
	}
	if err != nil {
		return CountryView{}, err
	}
	if ok {
		s.store.SaveView(CountryKey(name), view)
		return view, nil
	}

	// No timeline upstream: keep showing whatever was there before.
	return s.store.GetView(CountryKey(name))
}

func (s *Service) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// RefreshTimeline fetches the historical timeline for name and stores the aligned view.
// A response without a timeline is skipped silently.
func (s *Service) RefreshTimeline(ctx context.Context, name string) error {
	view, ok, err := s.fetchView(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		s.store.SaveView(CountryKey(name), view)
	}
	return nil
}

func (s *Service) fetchView(ctx context.Context, name string) (CountryView, bool, error) {
	if s.source == nil {
		return CountryView{}, false, ErrNoSource
	}

	h, err := s.source.Historical(ctx, name)
	if err != nil {
		s.logger.Warn("historical fetch failed",
			zap.String("source", s.source.Name()),
			zap.String("country", name),
			zap.Error(err))
		return CountryView{}, false, fmt.Errorf("fetch historical %s: %w", name, err)
	}
	if h.Timeline == nil {
		s.logger.Debug("historical response has no timeline; skipping", zap.String("country", name))
		return CountryView{}, false, nil
	}

	country := h.Country
	if country == "" {
		country = name
	}
	view := BuildCountryView(country, *h.Timeline)

	s.logger.Debug("timeline normalized",
		zap.String("country", country),
		zap.Int("offset", view.Offset),
		zap.Int("points", len(view.Cases)))
	return view, true, nil
}

// Timeline returns the displayed view for name, or for the selected country when name
// is empty. It is fetched on demand when nothing is stored yet.
func (s *Service) Timeline(ctx context.Context, name string) (CountryView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.Selection().Country
	}

	view, err := s.store.GetView(CountryKey(name))
	if err == nil {
		return view, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return CountryView{}, err
	}

	if err := s.RefreshTimeline(ctx, name); err != nil {
		return CountryView{}, err
	}
	return s.store.GetView(CountryKey(name))
}

// RefreshCountries fetches the full country list and stores it.
func (s *Service) RefreshCountries(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}

	countries, err := s.source.Countries(ctx)
	if err != nil {
		s.logger.Warn("country list fetch failed", zap.String("source", s.source.Name()), zap.Error(err))
		return fmt.Errorf("fetch countries: %w", err)
	}

	s.store.SaveCountries(countries)
	return nil
}

// Countries returns the country list with the selected country flagged.
func (s *Service) Countries(ctx context.Context) ([]CountryCard, error) {
	countries, err := s.store.GetCountries()
	if errors.Is(err, ErrNotFound) {
		if err := s.RefreshCountries(ctx); err != nil {
			return nil, err
		}
		countries, err = s.store.GetCountries()
	}
	if err != nil {
		return nil, err
	}

	selected := s.Selection().Country
	cards := make([]CountryCard, 0, len(countries))
	for _, c := range countries {
		cards = append(cards, CountryCard{
			CountrySummary: c,
			Current:        SameCountry(c.Country, selected),
		})
	}
	return cards, nil
}

// SetComparison replaces the comparison countries and refreshes the comparison set.
func (s *Service) SetComparison(ctx context.Context, names []string) (ComparisonSet, error) {
	s.mu.Lock()
	s.selection.Compare = cleanNames(names)
	s.compareGen++
	s.mu.Unlock()

	return s.RefreshComparison(ctx)
}

// RefreshComparison fetches every comparison country concurrently and waits for all
// of them before aggregating. Countries whose fetch failed are left out. When every
// fetch failed the previously stored set is kept. A refresh that finishes after the
// comparison list changed returns ErrSuperseded and stores nothing.
func (s *Service) RefreshComparison(ctx context.Context) (ComparisonSet, error) {
	s.mu.Lock()
	names := append([]string(nil), s.selection.Compare...)
	gen := s.compareGen
	s.mu.Unlock()

	if len(names) == 0 {
		set := Aggregate(nil)
		if !s.saveComparison(gen, set) {
			return nil, ErrSuperseded
		}
		return set, nil
	}
	if s.source == nil {
		return nil, ErrNoSource
	}

	p := pool.NewWithResults[NamedSummary]().WithContext(ctx)
	for _, name := range names {
		name := name
		p.Go(func(ctx context.Context) (NamedSummary, error) {
			summary, err := s.source.Country(ctx, name)
			if err != nil {
				s.logger.Warn("comparison fetch failed", zap.String("country", name), zap.Error(err))
				return NamedSummary{}, fmt.Errorf("%s: %w", name, err)
			}
			return NamedSummary{Name: name, Summary: summary}, nil
		})
	}

	results, err := p.Wait()
	if len(results) == 0 {
		s.logger.Warn("no comparison country could be fetched; keeping last set", zap.Error(err))
		return nil, fmt.Errorf("fetch comparison: %w", err)
	}

	set := Aggregate(results)
	if !s.saveComparison(gen, set) {
		s.logger.Debug("comparison list changed during refresh; dropping result", zap.Strings("countries", names))
		return nil, ErrSuperseded
	}
	return set, nil
}

// saveComparison stores set only while gen is still the current comparison generation.
func (s *Service) saveComparison(gen uint64, set ComparisonSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.compareGen {
		return false
	}
	s.store.SaveComparison(set)
	return true
}

// Comparison returns the stored comparison set, fetching it on demand.
func (s *Service) Comparison(ctx context.Context) (ComparisonSet, error) {
	set, err := s.store.GetComparison()
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.RefreshComparison(ctx)
}

// RefreshAll refreshes the selected timeline, the country list and the comparison set
// independently. A failure in one is logged and does not affect the others.
func (s *Service) RefreshAll(ctx context.Context) {
	sel := s.Selection()

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := s.RefreshTimeline(ctx, sel.Country); err != nil {
			s.logger.Error("refresh timeline", zap.String("country", sel.Country), zap.Error(err))
		}
	})
	wg.Go(func() {
		if err := s.RefreshCountries(ctx); err != nil {
			s.logger.Error("refresh countries", zap.Error(err))
		}
	})
	wg.Go(func() {
		_, err := s.RefreshComparison(ctx)
		switch {
		case errors.Is(err, ErrSuperseded):
			s.logger.Debug("comparison refresh superseded", zap.Strings("countries", sel.Compare))
		case err != nil:
			s.logger.Error("refresh comparison", zap.Strings("countries", sel.Compare), zap.Error(err))
		}
	})
	wg.Wait()
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
