package service

import (
	"time"

	"github.com/okian/burden/internal/adapters/render/svgchart"
	"github.com/okian/burden/internal/adapters/render/vegalite"
	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/domain/view"
	"github.com/okian/burden/pkg/logger"
)

// Defaults for the service.
const (
	DefaultJoinCacheSize = 256
	DefaultWarmupWorkers = 4
	sessionStripes       = 64
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSessionStore sets where sessions live. The default is an in-memory LRU.
func WithSessionStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithJoinCacheSize bounds the number of cached joins.
func WithJoinCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.joinCacheSize = n
		}
	}
}

// WithWarmupWorkers sets the number of goroutines precomputing joins.
func WithWarmupWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.warmupWorkers = n
		}
	}
}

// WithViewOptions passes options to the view composer.
func WithViewOptions(opts ...view.Option) Option {
	return func(s *Service) {
		s.viewOpts = append(s.viewOpts, opts...)
	}
}

// WithVegaLiteOptions passes options to the Vega-Lite builder.
func WithVegaLiteOptions(opts ...vegalite.Option) Option {
	return func(s *Service) {
		s.vegaOpts = append(s.vegaOpts, opts...)
	}
}

// WithChartRenderer sets the static chart renderer.
func WithChartRenderer(r *svgchart.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.charts = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how session ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
