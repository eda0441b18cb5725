package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/burden/internal/domain/model"
)

// Country code table column names.
const (
	ColumnAlpha3  = "alpha-3"
	ColumnNumeric = "country-code"
	ColumnName    = "name"
)

// LoadCountryCodes reads the ISO 3166 table. Rows without both codes are skipped.
func LoadCountryCodes(ctx context.Context, r io.Reader) ([]model.CountryCode, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr, ColumnAlpha3, ColumnNumeric)
	if err != nil {
		return nil, err
	}

	var out []model.CountryCode
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
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := model.CountryCode{
			Numeric: NormalizeID(h.get(row, ColumnNumeric)),
			Alpha3:  h.get(row, ColumnAlpha3),
			Name:    h.get(row, ColumnName),
		}
		if c.Numeric == "" || c.Alpha3 == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
