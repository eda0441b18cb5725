// Package view composes the map, bar and trend views from a joined row set and a selection.
package view

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/burden/internal/domain/colorscale"
	"github.com/okian/burden/internal/domain/join"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/selection"
	"github.com/okian/burden/internal/domain/types"
)

// Fixed colors.
const (
	BackgroundFill = "lightgray"
	GlobalLine     = "lightgrey"
)

// Bundle is the complete view state for one (params, selection) pair.
type Bundle struct {
	Params    types.Params `json:"params"`
	Selection string       `json:"selection,omitempty"`
	Map       MapView      `json:"map"`
	Bar       BarView      `json:"bar"`
	Trend     TrendView    `json:"trend"`
	Layout    Layout       `json:"layout"`
}

// MapView is the choropleth.
type MapView struct {
	Title      string       `json:"title"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Background string       `json:"background"`
	Scheme     string       `json:"scheme"`
	DomainMin  float64      `json:"domain_min"`
	DomainMax  float64      `json:"domain_max"`
	Features   []MapFeature `json:"features"`
	Misses     join.Misses  `json:"misses"`
}

// MapFeature is one colored shape.
type MapFeature struct {
	ID         string               `json:"id"`
	TopoID     json.RawMessage      `json:"topo_id,omitempty"`
	Alpha3     string               `json:"alpha3"`
	Name       string               `json:"name"`
	Value      float64              `json:"value"`
	Fill       string               `json:"fill"`
	Conditions selection.Conditions `json:"conditions"`
}

// BarView is the top-N ranking.
type BarView struct {
	Title  string   `json:"title"`
	XTitle string   `json:"x_title"`
	YTitle string   `json:"y_title"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []BarRow `json:"rows"`
}

// BarRow is one bar.
type BarRow struct {
	Rank       int                  `json:"rank"`
	Alpha3     string               `json:"alpha3"`
	Name       string               `json:"name"`
	Value      float64              `json:"value"`
	Fill       string               `json:"fill"`
	Conditions selection.Conditions `json:"conditions"`
}

// TrendPoint is one year on a trend line. Year is ordinal.
type TrendPoint struct {
	Year  string  `json:"year"`
	Value float64 `json:"value"`
}

// TrendView is the global mean line plus the selected entity's line.
type TrendView struct {
	Title       string       `json:"title"`
	YTitle      string       `json:"y_title"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Years       []string     `json:"years"`
	GlobalColor string       `json:"global_color"`
	Global      []TrendPoint `json:"global"`
	CountryName string       `json:"country_name,omitempty"`
	CountryFill string       `json:"country_fill,omitempty"`
	Country     []TrendPoint `json:"country,omitempty"`
}

// Layout is a concat tree of view names.
type Layout struct {
	Concat string   `json:"concat,omitempty"`
	View   string   `json:"view,omitempty"`
	Items  []Layout `json:"items,omitempty"`
}

// View names used in the layout.
const (
	ViewMap   = "map"
	ViewBar   = "bar"
	ViewTrend = "trend"
)

// DefaultLayout is map beside a column of bar over trend.
func DefaultLayout() Layout {
	return Layout{
		Concat: "hconcat",
		Items: []Layout{
			{View: ViewMap},
			{Concat: "vconcat", Items: []Layout{{View: ViewBar}, {View: ViewTrend}}},
		},
	}
}

// Compose derives the full bundle. It does not mutate its inputs.
func Compose(ds *model.Dataset, res join.Result, sel selection.State, opts ...Option) Bundle {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := res.Params
	lo, hi, _ := join.Extent(res.Rows)
	var scaleOpts []colorscale.Option
	if len(cfg.scheme) > 0 {
		scaleOpts = append(scaleOpts, colorscale.WithScheme(cfg.scheme))
	}
	scale := colorscale.New(lo, hi, scaleOpts...)

	global := cfg.global
	if !cfg.globalPresent {
		global = GlobalTrend(ds, p.Metric)
	}

	return Bundle{
		Params:    p,
		Selection: sel.Name(),
		Map:       composeMap(res, sel, scale, cfg),
		Bar:       composeBar(res, sel, scale, cfg),
		Trend:     composeTrend(ds, p.Metric, sel, global, scale, cfg),
		Layout:    DefaultLayout(),
	}
}

func composeMap(res join.Result, sel selection.State, scale *colorscale.Scale, cfg settings) MapView {
	lo, hi := scale.Domain()
	mv := MapView{
		Title:      fmt.Sprintf("%s per 100,000 people in Year %d", res.Params.Metric, res.Params.Year),
		Width:      cfg.mapW,
		Height:     cfg.mapH,
		Background: BackgroundFill,
		Scheme:     scale.Scheme(),
		DomainMin:  lo,
		DomainMax:  hi,
		Features:   make([]MapFeature, 0, len(res.Rows)),
		Misses:     res.Misses,
	}
	for _, r := range res.Rows {
		mv.Features = append(mv.Features, MapFeature{
			ID:         r.ID,
			TopoID:     json.RawMessage(r.TopoID),
			Alpha3:     r.Alpha3,
			Name:       r.Name,
			Value:      r.Value,
			Fill:       scale.Color(r.Value).Hex(),
			Conditions: sel.Conditions(r.Name),
		})
	}
	return mv
}

// TopRows returns the n largest rows, descending by value with ties broken by name.
// Several shapes may join to the same entity; only the first is ranked.
func TopRows(rows []join.Row, n int) []join.Row {
	seen := make(map[string]struct{}, len(rows))
	ranked := make([]join.Row, 0, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.Alpha3]; dup {
			continue
		}
		seen[r.Alpha3] = struct{}{}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func composeBar(res join.Result, sel selection.State, scale *colorscale.Scale, cfg settings) BarView {
	top := TopRows(res.Rows, cfg.topN)
	bv := BarView{
		Title:  fmt.Sprintf("Top %d countries by %s in Year %d", cfg.topN, res.Params.Metric, res.Params.Year),
		XTitle: fmt.Sprintf("%s per 100,000 people", res.Params.Metric),
		YTitle: "Name",
		Width:  cfg.barW,
		Height: cfg.barH,
		Rows:   make([]BarRow, 0, len(top)),
	}
	for i, r := range top {
		bv.Rows = append(bv.Rows, BarRow{
			Rank:       i + 1,
			Alpha3:     r.Alpha3,
			Name:       r.Name,
			Value:      r.Value,
			Fill:       scale.Color(r.Value).Hex(),
			Conditions: sel.Conditions(r.Name),
		})
	}
	return bv
}

// GlobalTrend is the per-year arithmetic mean of m over every entity with a value
// for that year. Years without any value are omitted.
func GlobalTrend(ds *model.Dataset, m types.Metric) []TrendPoint {
	byYear := make(map[int][]float64)
	for _, r := range ds.AllYears {
		if v, ok := r.Value(m); ok {
			byYear[r.Year] = append(byYear[r.Year], v)
		}
	}
	out := make([]TrendPoint, 0, len(byYear))
	for _, y := range ds.Years() {
		xs := byYear[y]
		if len(xs) == 0 {
			continue
		}
		out = append(out, TrendPoint{Year: strconv.Itoa(y), Value: stat.Mean(xs, nil)})
	}
	return out
}

// CountryTrend is the selected entity's values across all years. It is empty when
// nothing is selected or the entity has no values.
func CountryTrend(ds *model.Dataset, m types.Metric, sel selection.State) []TrendPoint {
	if sel.IsEmpty() {
		return nil
	}
	var out []TrendPoint
	for _, r := range ds.History(sel.Name()) {
		if !sel.Filter(r.Name) {
			continue
		}
		if v, ok := r.Value(m); ok {
			out = append(out, TrendPoint{Year: strconv.Itoa(r.Year), Value: v})
		}
	}
	return out
}

func composeTrend(ds *model.Dataset, m types.Metric, sel selection.State, global []TrendPoint, scale *colorscale.Scale, cfg settings) TrendView {
	years := ds.Years()
	tv := TrendView{
		Title:       fmt.Sprintf("Global and Country-Specific %s Trend", m),
		YTitle:      fmt.Sprintf("Average %s per 100,000 people", m),
		Width:       cfg.trendW,
		Height:      cfg.trendH,
		Years:       make([]string, 0, len(years)),
		GlobalColor: GlobalLine,
		Global:      global,
	}
	for _, y := range years {
		tv.Years = append(tv.Years, strconv.Itoa(y))
	}
	if country := CountryTrend(ds, m, sel); len(country) > 0 {
		tv.CountryName = sel.Name()
		tv.CountryFill = scale.Color(country[len(country)-1].Value).Hex()
		tv.Country = country
	}
	return tv
}
