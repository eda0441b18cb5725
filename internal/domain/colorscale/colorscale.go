// Package colorscale maps metric values onto a sequential color ramp.
package colorscale

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reds is the nine-class sequential "reds" scheme, light to dark.
var Reds = []string{
	"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a",
	"#ef3b2c", "#cb181d", "#a50f15", "#67000d",
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Scheme names reported by Scheme.
const (
	SchemeReds   = "reds"
	SchemeCustom = "custom"
)

// Option applies a configuration option to the Scale.
type Option func(*Scale)

// WithScheme replaces the color stops. Invalid schemes are ignored.
func WithScheme(stops []string) Option {
	return func(s *Scale) {
		if len(stops) < 2 {
			return
		}
		parsed := make([]RGB, 0, len(stops))
		for _, h := range stops {
			c, err := ParseHex(h)
			if err != nil {
				return
			}
			parsed = append(parsed, c)
		}
		s.name = SchemeCustom
		s.stops = parsed
	}
}

// Scale is a linear sequential scale over a numeric domain.
type Scale struct {
	name     string
	min, max float64
	stops    []RGB
}

// New returns a scale over [minValue, maxValue] using the reds scheme by default.
func New(minValue, maxValue float64, opts ...Option) *Scale {
	s := &Scale{name: SchemeReds, min: minValue, max: maxValue}
	for _, h := range Reds {
		c, _ := ParseHex(h)
		s.stops = append(s.stops, c)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.max < s.min {
		s.min, s.max = s.max, s.min
	}
	return s
}

// Scheme returns the scheme name.
func (s *Scale) Scheme() string { return s.name }

// Domain returns the scale domain.
func (s *Scale) Domain() (float64, float64) { return s.min, s.max }

// Color maps v into the ramp. Values outside the domain are clamped and a
// degenerate domain maps everything to the middle of the ramp.
func (s *Scale) Color(v float64) RGB {
	var t float64
	switch {
	case s.max == s.min || math.IsNaN(v):
		t = 0.5
	default:
		t = (v - s.min) / (s.max - s.min)
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(s.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1]
	}
	frac := pos - float64(i)
	a, b := s.stops[i], s.stops[i+1]
	return RGB{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
