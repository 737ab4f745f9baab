package filter

import (
	"climate-scraper/models"
)

// Filter narrows a result set to a set of Köppen codes
type Filter struct {
	codes map[string]bool
}

// NewFilter creates a new Filter instance.
// An empty code list keeps every record.
func NewFilter(codes []string) *Filter {
	f := &Filter{codes: make(map[string]bool, len(codes))}
	for _, c := range codes {
		f.codes[c] = true
	}
	return f
}

// Apply returns the records whose code is selected, in their original order
func (f *Filter) Apply(records models.ResultSet) models.ResultSet {
	if len(f.codes) == 0 {
		return records
	}

	var filtered models.ResultSet
	for _, r := range records {
		if f.codes[r.KoppenCode] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
