package smoketest

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/burden/internal/domain/view"
)

// maxBars is the ranking length the explorer draws by default.
const maxBars = 10

// verifyBundle checks the laws every single bundle must satisfy.
func verifyBundle(b view.Bundle) []string {
	var out []string
	key := fmt.Sprintf("%s/%d", b.Params.Metric, b.Params.Year)

	if n := len(b.Bar.Rows); n > maxBars {
		out = append(out, fmt.Sprintf("%s: %d bars", key, n))
	}
	for i := 1; i < len(b.Bar.Rows); i++ {
		if b.Bar.Rows[i].Value > b.Bar.Rows[i-1].Value {
			out = append(out, fmt.Sprintf("%s: bar %d above bar %d", key, i+1, i))
		}
	}
	for _, f := range b.Map.Features {
		if f.Value < b.Map.DomainMin || f.Value > b.Map.DomainMax {
			out = append(out, fmt.Sprintf("%s: %s outside color domain", key, f.Name))
		}
	}

	highlighted := 0
	for _, f := range b.Map.Features {
		if f.Conditions.Selected {
			highlighted++
			if f.Name != b.Selection {
				out = append(out, fmt.Sprintf("%s: %s highlighted while %q selected", key, f.Name, b.Selection))
			}
		}
	}
	if b.Selection == "" && highlighted > 0 {
		out = append(out, fmt.Sprintf("%s: %d shapes highlighted with no selection", key, highlighted))
	}
	if b.Selection == "" && len(b.Trend.Country) > 0 {
		out = append(out, fmt.Sprintf("%s: country line drawn with no selection", key))
	}
	return out
}

// verifyPair checks that a selection changes only what it should.
func verifyPair(plain, selected view.Bundle) []string {
	var out []string
	key := fmt.Sprintf("%s/%d", plain.Params.Metric, plain.Params.Year)
	if diff := cmp.Diff(plain.Trend.Global, selected.Trend.Global); diff != "" {
		out = append(out, fmt.Sprintf("%s: global trend depends on selection (-plain +selected):\n%s", key, diff))
	}
	if len(plain.Bar.Rows) != len(selected.Bar.Rows) {
		out = append(out, fmt.Sprintf("%s: selection changed the ranking", key))
	}
	if len(plain.Map.Features) != len(selected.Map.Features) {
		out = append(out, fmt.Sprintf("%s: selection changed the map", key))
	}
	return out
}

// verifyCleared checks that a cleared selection renders exactly like no selection.
func verifyCleared(plain, cleared view.Bundle) []string {
	if diff := cmp.Diff(plain, cleared); diff != "" {
		return []string{fmt.Sprintf("%s/%d: cleared bundle differs (-plain +cleared):\n%s",
			plain.Params.Metric, plain.Params.Year, diff)}
	}
	return nil
}
