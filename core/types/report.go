package types

import "github.com/shopspring/decimal"

// Location tags where in the macro a report entry sits
type Location string

const (
	LocationArray Location = "Array"
	LocationWL    Location = "WL"
	LocationBL    Location = "BL"
	LocationWell  Location = "Well"
)

// ReportEntry is one line of an area report
type ReportEntry struct {
	// Name is the catalog name of the selected component
	Name string `json:"name" yaml:"name"`

	// Count is the number of replicas the area covers
	Count int `json:"count" yaml:"count"`

	Kind     Kind     `json:"kind" yaml:"kind"`
	Location Location `json:"location" yaml:"location"`

	// Area is in square micrometers, already scaled
	Area decimal.Decimal `json:"area" yaml:"area"`
}

// Report is the ordered area breakdown for one configuration
type Report struct {
	Configuration string        `json:"configuration" yaml:"configuration"`
	Entries       []ReportEntry `json:"entries" yaml:"entries"`
}

// Total returns the sum of all entry areas
func (r *Report) Total() decimal.Decimal {
	return TotalArea(r.Entries)
}

// ByKind sums areas per component kind
func (r *Report) ByKind() map[Kind]decimal.Decimal {
	out := make(map[Kind]decimal.Decimal)
	for _, e := range r.Entries {
		out[e.Kind] = out[e.Kind].Add(e.Area)
	}
	return out
}

// TotalArea sums the areas of entries
func TotalArea(entries []ReportEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Area)
	}
	return total
}
