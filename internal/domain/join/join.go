// Package join links topology shapes to burden records through the ISO code table.
//
// The chain is shape id -> ISO numeric -> alpha-3 -> record for the active year.
// Every step is an inner join; rows that fail any step are excluded, not reported
// as errors.
package join

import (
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
)

// Row is one joined view row for a (metric, year).
type Row struct {
	ID     string  `json:"id"`
	Alpha3 string  `json:"alpha3"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	// TopoID is the shape id as written in the topology, used by renderers to key geometry.
	TopoID []byte `json:"-"`
}

// Misses counts shapes excluded at each step.
type Misses struct {
	NoCode   int `json:"no_code"`
	NoRecord int `json:"no_record"`
	NoValue  int `json:"no_value"`
}

// Total returns the number of excluded shapes.
func (m Misses) Total() int { return m.NoCode + m.NoRecord + m.NoValue }

// Result is the joined row set for one parameter pair.
type Result struct {
	Params types.Params `json:"params"`
	Rows   []Row        `json:"rows"`
	Misses Misses       `json:"misses"`
}

// Join produces the joined rows for p. Rows follow topology order.
func Join(ds *model.Dataset, p types.Params) Result {
	res := Result{Params: p, Rows: make([]Row, 0, len(ds.Shapes))}

	for _, s := range ds.Shapes {
		alpha3, ok := ds.Alpha3(s.ID)
		if !ok {
			res.Misses.NoCode++
			continue
		}
		rec, ok := ds.Lookup(alpha3, p.Year)
		if !ok {
			res.Misses.NoRecord++
			continue
		}
		v, ok := rec.Value(p.Metric)
		if !ok {
			res.Misses.NoValue++
			continue
		}
		res.Rows = append(res.Rows, Row{
			ID:     s.ID,
			Alpha3: alpha3,
			Name:   rec.Name,
			Value:  v,
			TopoID: s.RawID,
		})
	}

	return res
}

// Extent returns the smallest and largest value of rows. ok is false for an empty set.
func Extent(rows []Row) (lo, hi float64, ok bool) {
	for i, r := range rows {
		if i == 0 {
			lo, hi = r.Value, r.Value
			continue
		}
		if r.Value < lo {
			lo = r.Value
		}
		if r.Value > hi {
			hi = r.Value
		}
	}
	return lo, hi, len(rows) > 0
}
