package covid

// Aggregate combines independently fetched summaries into a ComparisonSet keyed by
// the country name reported upstream, which may differ from the requested name.
// Duplicate keys are resolved last-write-wins.
func Aggregate(summaries []NamedSummary) ComparisonSet {
	set := make(ComparisonSet, len(summaries))
	for _, s := range summaries {
		set[s.Summary.Country] = s.Summary
	}
	return set
}

// Names returns the keys of the set in no particular order.
func (c ComparisonSet) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	return names
}
