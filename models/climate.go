package models

// ClimateRecord pairs a city with the Köppen classification of the table row it was listed in
type ClimateRecord struct {
	City       string
	KoppenCode string
}

// ResultSet is the ordered output of one extraction: row order, then link order within a row.
// Duplicates are kept.
type ResultSet []ClimateRecord

// Codes returns the distinct Köppen codes in first-seen order
func (rs ResultSet) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range rs {
		if seen[r.KoppenCode] {
			continue
		}
		seen[r.KoppenCode] = true
		codes = append(codes, r.KoppenCode)
	}
	return codes
}
