package model

import (
	"encoding/json"
	"sort"

	"github.com/okian/burden/internal/domain/types"
)

// Record is one (entity, year) row of the burden table after column normalization.
type Record struct {
	Name    string
	Alpha3  string
	Year    int
	values  [types.MetricCount]float64
	present [types.MetricCount]bool
}

// NewRecord builds a record with no metric values.
func NewRecord(name, alpha3 string, year int) Record {
	return Record{Name: name, Alpha3: alpha3, Year: year}
}

// WithValue returns a copy of r carrying v for metric m.
func (r Record) WithValue(m types.Metric, v float64) Record {
	if i := m.Index(); i >= 0 {
		r.values[i] = v
		r.present[i] = true
	}
	return r
}

// Value returns the metric value and whether it is present.
func (r Record) Value(m types.Metric) (float64, bool) {
	i := m.Index()
	if i < 0 || !r.present[i] {
		return 0, false
	}
	return r.values[i], true
}

// Complete reports whether every metric is present.
func (r Record) Complete() bool {
	for _, ok := range r.present {
		if !ok {
			return false
		}
	}
	return true
}

// Shape is one geometry of the country topology.
type Shape struct {
	// ID is the ISO 3166-1 numeric code, zero-padded to three digits.
	ID string
	// RawID is the id exactly as written in the topology (number or string).
	RawID json.RawMessage
	// Name is the optional "name" property of the geometry.
	Name     string
	Geometry json.RawMessage
}

// CountryCode bridges ISO numeric codes to alpha-3 codes.
type CountryCode struct {
	Numeric string
	Alpha3  string
	Name    string
}

// LoadStats summarizes what the loader kept and dropped.
type LoadStats struct {
	Rows              int `json:"rows"`
	Kept              int `json:"kept"`
	DroppedIncomplete int `json:"dropped_incomplete"`
	DroppedDuplicate  int `json:"dropped_duplicate"`
}

// Dataset is the immutable input of the pipeline, built once at startup.
type Dataset struct {
	// Records is the normalized, load-filtered record set.
	Records []Record
	// AllYears is the multi-year superset used for trends. It never aliases Records.
	AllYears []Record
	Shapes   []Shape
	Codes    []CountryCode
	// Topology is the raw topology document, served to clients for drawing shapes.
	Topology       json.RawMessage
	TopologyObject string
	Policy         types.DropPolicy
	Stats          LoadStats

	alpha3ByNumeric map[string]string
	byYear          map[int]map[string]int
	years           []int
}

// NewDataset indexes the inputs. The first record for a given (alpha-3, year) wins.
func NewDataset(records []Record, shapes []Shape, codes []CountryCode) *Dataset {
	ds := &Dataset{
		Records:         records,
		AllYears:        append([]Record(nil), records...),
		Shapes:          shapes,
		Codes:           codes,
		Policy:          types.DropBlanket,
		alpha3ByNumeric: make(map[string]string, len(codes)),
		byYear:          make(map[int]map[string]int),
	}

	for _, c := range codes {
		if c.Numeric == "" || c.Alpha3 == "" {
			continue
		}
		if _, ok := ds.alpha3ByNumeric[c.Numeric]; !ok {
			ds.alpha3ByNumeric[c.Numeric] = c.Alpha3
		}
	}

	for i, r := range records {
		idx, ok := ds.byYear[r.Year]
		if !ok {
			idx = make(map[string]int)
			ds.byYear[r.Year] = idx
			ds.years = append(ds.years, r.Year)
		}
		if r.Alpha3 == "" {
			continue
		}
		if _, dup := idx[r.Alpha3]; !dup {
			idx[r.Alpha3] = i
		}
	}
	sort.Ints(ds.years)

	return ds
}

// Alpha3 resolves an ISO numeric code.
func (ds *Dataset) Alpha3(numeric string) (string, bool) {
	a, ok := ds.alpha3ByNumeric[numeric]
	return a, ok
}

// Lookup returns the record for an alpha-3 code in a year.
func (ds *Dataset) Lookup(alpha3 string, year int) (Record, bool) {
	idx, ok := ds.byYear[year]
	if !ok {
		return Record{}, false
	}
	i, ok := idx[alpha3]
	if !ok {
		return Record{}, false
	}
	return ds.Records[i], true
}

// Years returns the distinct years present in the data, ascending.
func (ds *Dataset) Years() []int {
	return append([]int(nil), ds.years...)
}

// History returns the records for an entity name across all years, ascending by year.
func (ds *Dataset) History(name string) []Record {
	var out []Record
	for _, r := range ds.AllYears {
		if r.Name == name {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
