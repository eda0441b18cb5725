// Package svgchart draws the bar and trend views as SVG or PNG images.
package svgchart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/burden/internal/domain/view"
)

// Format is an image encoding.
type Format string

// Supported formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Chart names.
const (
	ChartBar   = "bar"
	ChartTrend = "trend"
)

// ParseFormat accepts "svg" or "png".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithScale multiplies the view dimensions. Values below one are ignored.
func WithScale(k int) Option {
	return func(r *Renderer) {
		if k >= 1 {
			r.scale = k
		}
	}
}

// Renderer draws bundle views with go-chart.
type Renderer struct {
	scale int
}

// New returns a Renderer drawing at twice the view dimensions.
func New(opts ...Option) *Renderer {
	r := &Renderer{scale: 2}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the named chart of b to w.
func (r *Renderer) Render(w io.Writer, name string, f Format, b view.Bundle) error {
	switch name {
	case ChartBar:
		return r.Bar(w, f, b.Bar)
	case ChartTrend:
		return r.Trend(w, f, b.Trend)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// Bar draws the ranked bar view. Bars are vertical, ordered left to right by rank.
func (r *Renderer) Bar(w io.Writer, f Format, bv view.BarView) error {
	if len(bv.Rows) == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, bv.Title)
	}

	maxValue := 0.0
	bars := make([]chart.Value, 0, len(bv.Rows))
	for _, row := range bv.Rows {
		maxValue = math.Max(maxValue, row.Value)
		fill := hexColor(row.Fill).WithAlpha(alpha(row.Conditions.Opacity))
		style := chart.Style{
			FillColor:   fill,
			StrokeColor: namedColor(row.Conditions.Stroke),
			StrokeWidth: row.Conditions.StrokeWidth * float64(r.scale),
		}
		bars = append(bars, chart.Value{Label: row.Name, Value: row.Value, Style: style})
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	width := bv.Width * r.scale
	bc := chart.BarChart{
		Title:    bv.Title,
		Width:    width,
		Height:   bv.Height * r.scale,
		BarWidth: max(4, width/(2*len(bars)+1)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: chart.YAxis{
			Name:  bv.XTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.05},
		},
		Bars: bars,
	}
	return bc.Render(f.provider(), w)
}

// Trend draws the global line and, when present, the selected entity's line.
// Years are placed at evenly spaced ordinal positions.
func (r *Renderer) Trend(w io.Writer, f Format, tv view.TrendView) error {
	if len(tv.Global) == 0 && len(tv.Country) == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, tv.Title)
	}

	pos := make(map[string]float64, len(tv.Years))
	ticks := make([]chart.Tick, 0, len(tv.Years))
	for i, y := range tv.Years {
		pos[y] = float64(i)
		label := ""
		if i%5 == 0 || i == len(tv.Years)-1 {
			label = y
		}
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	line := func(name string, pts []view.TrendPoint, color drawing.Color, width float64) chart.ContinuousSeries {
		s := chart.ContinuousSeries{
			Name:  name,
			Style: chart.Style{StrokeColor: color, StrokeWidth: width},
		}
		for _, p := range pts {
			x, ok := pos[p.Year]
			if !ok {
				continue
			}
			s.XValues = append(s.XValues, x)
			s.YValues = append(s.YValues, p.Value)
			lo, hi = math.Min(lo, p.Value), math.Max(hi, p.Value)
		}
		return s
	}

	var series []chart.Series
	if len(tv.Global) > 0 {
		series = append(series, line("Global", tv.Global, namedColor(tv.GlobalColor), 2*float64(r.scale)))
	}
	if len(tv.Country) > 0 {
		series = append(series, line(tv.CountryName, tv.Country, hexColor(tv.CountryFill), 2*float64(r.scale)))
	}
	if math.IsInf(lo, 0) {
		return fmt.Errorf("%w: %s", ErrEmpty, tv.Title)
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05

	ch := chart.Chart{
		Title:  tv.Title,
		Width:  tv.Width * r.scale,
		Height: tv.Height * r.scale,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Year",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(tv.Years)) - 0.5},
		},
		YAxis: chart.YAxis{
			Name:  tv.YTitle,
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(f.provider(), w)
}

func alpha(opacity float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
}

func hexColor(h string) drawing.Color {
	h = strings.TrimPrefix(h, "#")
	if h == "" {
		return chart.ColorBlack
	}
	return drawing.ColorFromHex(h)
}

func namedColor(name string) drawing.Color {
	switch strings.ToLower(name) {
	case "black":
		return drawing.ColorBlack
	case "white":
		return drawing.ColorWhite
	case "lightgrey", "lightgray":
		return drawing.ColorFromHex("d3d3d3")
	case "":
		return drawing.ColorTransparent
	}
	return hexColor(name)
}
