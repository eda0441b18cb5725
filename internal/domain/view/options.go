package view

// Default view dimensions and sizes.
const (
	DefaultTopN        = 10
	DefaultMapWidth    = 400
	DefaultMapHeight   = 600
	DefaultBarWidth    = 200
	DefaultBarHeight   = 200
	DefaultTrendWidth  = 200
	DefaultTrendHeight = 150
)

// Option applies a configuration option to the composer settings.
type Option func(*settings)

type settings struct {
	topN          int
	mapW, mapH    int
	barW, barH    int
	trendW        int
	trendH        int
	scheme        []string
	global        []TrendPoint
	globalPresent bool
}

func defaults() settings {
	return settings{
		topN:   DefaultTopN,
		mapW:   DefaultMapWidth,
		mapH:   DefaultMapHeight,
		barW:   DefaultBarWidth,
		barH:   DefaultBarHeight,
		trendW: DefaultTrendWidth,
		trendH: DefaultTrendHeight,
	}
}

// WithTopN sets how many rows the bar view keeps.
func WithTopN(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMapSize sets the map view dimensions.
func WithMapSize(w, h int) Option {
	return func(s *settings) {
		if w > 0 && h > 0 {
			s.mapW, s.mapH = w, h
		}
	}
}

// WithBarSize sets the bar view dimensions.
func WithBarSize(w, h int) Option {
	return func(s *settings) {
		if w > 0 && h > 0 {
			s.barW, s.barH = w, h
		}
	}
}

// WithTrendSize sets the trend view dimensions.
func WithTrendSize(w, h int) Option {
	return func(s *settings) {
		if w > 0 && h > 0 {
			s.trendW, s.trendH = w, h
		}
	}
}

// WithColorScheme overrides the sequential color stops.
func WithColorScheme(stops []string) Option {
	return func(s *settings) {
		s.scheme = stops
	}
}

// WithGlobalTrend supplies a precomputed global line, skipping the scan of all years.
func WithGlobalTrend(points []TrendPoint) Option {
	return func(s *settings) {
		s.global = points
		s.globalPresent = true
	}
}
