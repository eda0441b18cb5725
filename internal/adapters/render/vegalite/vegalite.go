// Package vegalite turns a view bundle into a Vega-Lite composite specification.
//
// Marks carry precomputed fill, opacity and stroke values, so the client draws the
// server-side selection state without evaluating any selection logic itself. Point
// selection params are still declared so that clicks can be read back from the view.
package vegalite

import (
	"encoding/json"

	"github.com/okian/burden/internal/domain/colorscale"
	"github.com/okian/burden/internal/domain/view"
)

// Schema is the Vega-Lite schema the specs target.
const Schema = "https://vega.github.io/schema/vega-lite/v5.json"

// Selection param names, unique across the composite.
const (
	MapSelectParam = "map_select"
	BarSelectParam = "bar_select"
)

// TrendSeriesField labels the line a trend point belongs to.
const TrendSeriesField = "series"

// Defaults for the topology source.
const (
	DefaultTopologyURL    = "/api/topology.json"
	DefaultTopologyObject = "countries"
)

// Spec is a Vega-Lite JSON object.
type Spec = map[string]any

// Option applies a configuration option to the builder.
type Option func(*builder)

// WithTopologyURL sets where the client fetches the country topology.
func WithTopologyURL(url string) Option {
	return func(b *builder) {
		if url != "" {
			b.topoURL = url
		}
	}
}

// WithTopologyObject sets the topology object holding country geometries.
func WithTopologyObject(name string) Option {
	return func(b *builder) {
		if name != "" {
			b.topoObject = name
		}
	}
}

type builder struct {
	topoURL    string
	topoObject string
}

// Build returns the composite spec for b laid out as b.Layout.
func Build(b view.Bundle, opts ...Option) Spec {
	bl := &builder{topoURL: DefaultTopologyURL, topoObject: DefaultTopologyObject}
	for _, opt := range opts {
		opt(bl)
	}

	spec := bl.layout(b, b.Layout)
	spec["$schema"] = Schema
	spec["config"] = Spec{
		"title":  Spec{"fontSize": 16},
		"legend": Spec{"titleFontSize": 11, "labelFontSize": 11},
		"view":   Spec{"stroke": nil},
	}
	return spec
}

// Marshal encodes the spec for b.
func Marshal(b view.Bundle, opts ...Option) ([]byte, error) {
	return json.Marshal(Build(b, opts...))
}

func (bl *builder) layout(b view.Bundle, l view.Layout) Spec {
	if l.View != "" {
		switch l.View {
		case view.ViewMap:
			return bl.mapSpec(b.Map, string(b.Params.Metric))
		case view.ViewBar:
			return barSpec(b.Bar)
		case view.ViewTrend:
			return trendSpec(b.Trend)
		}
		return Spec{}
	}
	items := make([]Spec, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, bl.layout(b, it))
	}
	return Spec{l.Concat: items}
}

func (bl *builder) topoData() Spec {
	return Spec{
		"url":    bl.topoURL,
		"format": Spec{"type": "topojson", "feature": bl.topoObject},
	}
}

func passthrough(field, typ string) Spec {
	return Spec{"field": field, "type": typ, "scale": nil}
}

func (bl *builder) mapSpec(mv view.MapView, metric string) Spec {
	values := make([]Spec, 0, len(mv.Features))
	for _, f := range mv.Features {
		values = append(values, Spec{
			"id":          f.TopoID,
			"alpha3":      f.Alpha3,
			"name":        f.Name,
			"value":       f.Value,
			"fill":        f.Fill,
			"opacity":     f.Conditions.Opacity,
			"stroke":      f.Conditions.Stroke,
			"strokeWidth": f.Conditions.StrokeWidth,
		})
	}

	background := Spec{
		"data": bl.topoData(),
		"mark": Spec{"type": "geoshape", "fill": mv.Background},
	}
	foreground := Spec{
		"data": bl.topoData(),
		"transform": []Spec{
			{
				"lookup": "id",
				"from": Spec{
					"data":   Spec{"values": values},
					"key":    "id",
					"fields": []string{"alpha3", "name", "value", "fill", "opacity", "stroke", "strokeWidth"},
				},
			},
			{"filter": "isValid(datum.value)"},
		},
		"params": []Spec{{
			"name":   MapSelectParam,
			"select": Spec{"type": "point", "fields": []string{"name"}},
		}},
		"mark": Spec{"type": "geoshape"},
		"encoding": Spec{
			"fill":        fillEncoding(mv, metric),
			"opacity":     passthrough("opacity", "quantitative"),
			"stroke":      passthrough("stroke", "nominal"),
			"strokeWidth": passthrough("strokeWidth", "quantitative"),
			"tooltip": []Spec{
				{"field": "name", "type": "nominal"},
				{"field": "value", "type": "quantitative", "title": metric},
			},
		},
	}

	return Spec{
		"title":      mv.Title,
		"width":      mv.Width,
		"height":     mv.Height,
		"projection": Spec{"type": "mercator"},
		"layer":      []Spec{background, foreground},
	}
}

// fillEncoding uses a named Vega scheme when one exists and the precomputed colors otherwise.
func fillEncoding(mv view.MapView, metric string) Spec {
	if mv.Scheme == colorscale.SchemeReds {
		return Spec{
			"field": "value",
			"type":  "quantitative",
			"title": metric,
			"scale": Spec{"scheme": mv.Scheme, "domain": []float64{mv.DomainMin, mv.DomainMax}},
		}
	}
	return Spec{"field": "fill", "type": "nominal", "scale": nil, "legend": nil}
}

func barSpec(bv view.BarView) Spec {
	values := make([]Spec, 0, len(bv.Rows))
	lo, hi := 0.0, 0.0
	for i, r := range bv.Rows {
		if i == 0 || r.Value < lo {
			lo = r.Value
		}
		if i == 0 || r.Value > hi {
			hi = r.Value
		}
		values = append(values, Spec{
			"rank":        r.Rank,
			"alpha3":      r.Alpha3,
			"name":        r.Name,
			"value":       r.Value,
			"fill":        r.Fill,
			"opacity":     r.Conditions.Opacity,
			"stroke":      r.Conditions.Stroke,
			"strokeWidth": r.Conditions.StrokeWidth,
		})
	}

	return Spec{
		"title":  bv.Title,
		"width":  bv.Width,
		"height": bv.Height,
		"data":   Spec{"values": values},
		"params": []Spec{{
			"name":   BarSelectParam,
			"select": Spec{"type": "point", "fields": []string{"name"}},
		}},
		"mark": "bar",
		"encoding": Spec{
			"x": Spec{"field": "value", "type": "quantitative", "title": bv.XTitle},
			"y": Spec{"field": "name", "type": "nominal", "sort": "-x", "title": bv.YTitle},
			"color": Spec{
				"field":  "fill",
				"type":   "nominal",
				"scale":  nil,
				"legend": nil,
			},
			"opacity":     passthrough("opacity", "quantitative"),
			"stroke":      passthrough("stroke", "nominal"),
			"strokeWidth": passthrough("strokeWidth", "quantitative"),
			"tooltip": []Spec{
				{"field": "name", "type": "nominal"},
				{"field": "value", "type": "quantitative"},
			},
		},
	}
}

func trendSpec(tv view.TrendView) Spec {
	x := Spec{"field": "year", "type": "ordinal", "title": "Year", "sort": tv.Years}
	y := Spec{"field": "value", "type": "quantitative", "title": tv.YTitle}

	layers := []Spec{{
		"data": Spec{"values": points(tv.Global, "Global")},
		"mark": "line",
		"encoding": Spec{
			"x":     x,
			"y":     y,
			"color": Spec{"value": tv.GlobalColor},
		},
	}}
	if len(tv.Country) > 0 {
		layers = append(layers, Spec{
			"data": Spec{"values": points(tv.Country, tv.CountryName)},
			"mark": "line",
			"encoding": Spec{
				"x":       x,
				"y":       y,
				"color":   Spec{"value": tv.CountryFill},
				"tooltip": []Spec{{"field": TrendSeriesField, "type": "nominal"}, {"field": "value", "type": "quantitative"}},
			},
		})
	}

	return Spec{
		"title":  tv.Title,
		"width":  tv.Width,
		"height": tv.Height,
		"layer":  layers,
	}
}

// points labels trend data with a series field rather than "name", so a click on a
// line never reads as a click on an entity.
func points(pts []view.TrendPoint, series string) []Spec {
	out := make([]Spec, 0, len(pts))
	for _, p := range pts {
		out = append(out, Spec{"year": p.Year, "value": p.Value, TrendSeriesField: series})
	}
	return out
}
