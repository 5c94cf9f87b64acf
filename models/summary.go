package models

// SearchSummary is the informational count and size estimate of a search result.
type SearchSummary struct {
	Count      int     `json:"count" yaml:"count"`
	TotalMB    float64 `json:"total_mb" yaml:"total_mb"`
	Unreadable int     `json:"unreadable_sizes" yaml:"unreadable_sizes"` // granules left out of TotalMB
}

// Summarize counts granules and sums the sizes that are known.
func Summarize(granules []Granule) SearchSummary {
	s := SearchSummary{Count: len(granules)}
	for _, g := range granules {
		if g.Size.Known() {
			s.TotalMB += g.Size.MB
		} else {
			s.Unreadable++
		}
	}
	return s
}
