// Package source loads the burden table, the ISO code table and the country topology.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/burden/internal/domain/dedupe"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
)

// Burden table column names.
const (
	ColumnEntity = "Entity"
	ColumnCode   = "Code"
	ColumnYear   = "Year"
)

// missingMarkers are the cell spellings read as an absent value, compared case-insensitively.
var missingMarkers = map[string]struct{}{
	"": {}, "nan": {}, "-nan": {}, "na": {}, "n/a": {}, "<na>": {}, "null": {}, "none": {},
	"#n/a": {}, "#n/a n/a": {}, "#na": {}, "-1.#ind": {}, "-1.#qnan": {}, "1.#ind": {}, "1.#qnan": {},
}

// Missing reports whether a metric cell holds no value.
func Missing(cell string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// Burden is the normalized burden table.
type Burden struct {
	Records []model.Record
	Stats   model.LoadStats
}

// LoadBurden reads the burden CSV, renames its columns and applies the drop policy.
// A row without an alpha-3 code is always dropped. Under DropBlanket a row missing any
// metric is dropped too; under DropPerMetric only the missing values are absent.
// For duplicate (alpha-3, year) rows the first one wins.
func LoadBurden(ctx context.Context, r io.Reader, policy types.DropPolicy) (*Burden, error) {
	cr := newCSVReader(r)

	required := []string{ColumnEntity, ColumnCode, ColumnYear}
	for _, m := range types.Metrics() {
		required = append(required, m.Column())
	}
	h, err := readHeader(cr, required...)
	if err != nil {
		return nil, err
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacityHint(8192))
	out := &Burden{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out.Stats.Rows++

		rec, complete, err := parseRecord(h, row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		if rec.Alpha3 == "" || (policy != types.DropPerMetric && !complete) {
			out.Stats.DroppedIncomplete++
			continue
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(rec.Alpha3, rec.Year)) {
			out.Stats.DroppedDuplicate++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	out.Stats.Kept = len(out.Records)

	return out, nil
}

func parseRecord(h header, row []string) (model.Record, bool, error) {
	year, err := strconv.Atoi(h.get(row, ColumnYear))
	if err != nil {
		return model.Record{}, false, fmt.Errorf("year: %w", err)
	}
	rec := model.NewRecord(h.get(row, ColumnEntity), h.get(row, ColumnCode), year)

	complete := true
	for _, m := range types.Metrics() {
		raw := h.get(row, m.Column())
		if Missing(raw) {
			complete = false
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return model.Record{}, false, fmt.Errorf("%s: %w", m, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			complete = false
			continue
		}
		rec = rec.WithValue(m, v)
	}
	return rec, complete, nil
}
