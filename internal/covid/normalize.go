package covid

import (
	"sort"
	"time"
)

// dayLayouts are tried in order when parsing timeline keys.
// disease.sh uses the first one ("3/14/20").
var dayLayouts = []string{
	"1/2/06",
	"1/2/2006",
	"2006-01-02",
	time.RFC3339,
}

// ParseDay parses a timeline key into a UTC calendar date.
func ParseDay(s string) (time.Time, bool) {
	for _, layout := range dayLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Normalize converts a raw timeline into points sorted ascending by day.
// Keys that are not dates are skipped. Keys landing on the same day keep the order
// of their raw key strings.
func Normalize(raw RawTimeline) []TimelinePoint {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]TimelinePoint, 0, len(keys))
	for _, k := range keys {
		day, ok := ParseDay(k)
		if !ok {
			continue
		}
		points = append(points, TimelinePoint{Day: day, Value: raw[k]})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Day.Before(points[j].Day)
	})
	return points
}

// FirstNonZeroOffset returns the number of leading points whose value is zero.
func FirstNonZeroOffset(points []TimelinePoint) int {
	for i, p := range points {
		if p.Value != 0 {
			return i
		}
	}
	return len(points)
}

// Trim drops the first offset points. The offset is clamped to the slice bounds.
func Trim(points []TimelinePoint, offset int) []TimelinePoint {
	if offset < 0 {
		offset = 0
	}
	if offset > len(points) {
		offset = len(points)
	}
	return points[offset:]
}

// BuildCountryView normalizes all three metrics and aligns them on the first reported case.
// The offset always comes from the cases series so that deaths and recovered stay
// index-aligned with it, even when they start later.
func BuildCountryView(country string, t HistoricalTimeline) CountryView {
	cases := Normalize(t.Cases)
	offset := FirstNonZeroOffset(cases)

	return CountryView{
		Country:   country,
		Offset:    offset,
		Cases:     Trim(cases, offset),
		Deaths:    Trim(Normalize(t.Deaths), offset),
		Recovered: Trim(Normalize(t.Recovered), offset),
		UpdatedAt: time.Now().UTC(),
	}
}
