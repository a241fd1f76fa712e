package covid

import (
	"strings"
	"time"
)

// DefaultCountry is selected when nothing else has been chosen.
const DefaultCountry = "Norway"

// TimelinePoint is one normalized (day, count) sample.
type TimelinePoint struct {
	Day   time.Time `json:"day"` // UTC midnight
	Value int64     `json:"value"`
}

// RawTimeline maps a date string to the cumulative count for one metric of one country.
// Keys are not guaranteed to be sorted.
type RawTimeline map[string]int64

// HistoricalTimeline holds the three raw metrics returned by the historical endpoint.
type HistoricalTimeline struct {
	Cases     RawTimeline `json:"cases"`
	Deaths    RawTimeline `json:"deaths"`
	Recovered RawTimeline `json:"recovered"`
}

// Historical is the decoded historical response for one country.
// Timeline is nil when the upstream response carried no timeline.
type Historical struct {
	Country  string              `json:"country"`
	Province []string            `json:"province,omitempty"`
	Timeline *HistoricalTimeline `json:"timeline,omitempty"`
}

// CountryInfo carries the identifying details of a country.
type CountryInfo struct {
	Iso2 string `json:"iso2"`
	Iso3 string `json:"iso3"`
	Flag string `json:"flag"`
}

// CountrySummary is the per-country summary record as published upstream.
type CountrySummary struct {
	Country     string      `json:"country"`
	Cases       int64       `json:"cases"`
	Deaths      int64       `json:"deaths"`
	Critical    int64       `json:"critical"`
	Recovered   int64       `json:"recovered"`
	CountryInfo CountryInfo `json:"countryInfo"`
}

// NamedSummary pairs a requested country name with the summary fetched for it.
type NamedSummary struct {
	Name    string
	Summary CountrySummary
}

// ComparisonSet maps a country name (as reported upstream) to its summary.
type ComparisonSet map[string]CountrySummary

// CountryView is the displayed dataset for one country: three series aligned on the
// first reported case.
type CountryView struct {
	Country   string          `json:"country"`
	Offset    int             `json:"offset"`
	Cases     []TimelinePoint `json:"cases"`
	Deaths    []TimelinePoint `json:"deaths"`
	Recovered []TimelinePoint `json:"recovered"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CountryCard is a country summary annotated with whether it is the selected country.
type CountryCard struct {
	CountrySummary
	Current bool `json:"current"`
}

// Selection is the transient state of the dashboard: the country shown in the line chart
// and the countries shown side by side.
type Selection struct {
	Country string   `json:"country"`
	Compare []string `json:"compare"`
}

// CountryKey returns the canonical key used to index a country in stores.
func CountryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameCountry reports whether two country names refer to the same key.
func SameCountry(a, b string) bool {
	return CountryKey(a) == CountryKey(b)
}
