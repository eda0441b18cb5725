package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/okian/burden/internal/domain/view"
	"github.com/okian/burden/pkg/logger"
)

// Defaults for a smoke run.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultWorkers = 8
	DefaultTimeout = 30 * time.Second
	DefaultSelect  = "France"

	directoryPermission = 0o750
	reportPermission    = 0o600
)

// Run executes the complete smoke walk and returns its statistics. A non-nil error is
// returned when the service is unreachable or any law is violated.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting burden smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.String("select", cfg.Select),
	)

	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var opts Options
	if err := client.Get(ctx, "/api/options", &opts); err != nil {
		return stats, fmt.Errorf("options: %w", err)
	}

	rec := &recorder{}
	if err := walkViews(ctx, cfg, client, opts, stats, rec); err != nil {
		return finish(ctx, cfg, client, stats, rec), fmt.Errorf("view walk: %w", err)
	}
	if err := walkSession(ctx, cfg, client, opts, rec); err != nil {
		return finish(ctx, cfg, client, stats, rec), fmt.Errorf("session walk: %w", err)
	}

	finish(ctx, cfg, client, stats, rec)
	if n := len(stats.Violations); n > 0 {
		return stats, fmt.Errorf("%w: %d violations", ErrViolation, n)
	}
	log.Info(ctx, "smoke run completed successfully")
	return stats, nil
}

type recorder struct {
	mu         sync.Mutex
	violations []string
}

func (r *recorder) add(vs ...string) {
	if len(vs) == 0 {
		return
	}
	r.mu.Lock()
	r.violations = append(r.violations, vs...)
	r.mu.Unlock()
}

// walkViews fetches every (metric, year) view with and without a selection.
func walkViews(ctx context.Context, cfg *Config, client *HTTPClient, opts Options, stats *Stats, rec *recorder) error {
	log := logger.Get().Named("smoke")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	var mu sync.Mutex
	for _, m := range opts.Metrics {
		for _, y := range opts.Years {
			g.Go(func() error {
				var plain, selected view.Bundle
				if err := client.Get(gctx, viewPath(m.Name, y, ""), &plain); err != nil {
					return err
				}
				if err := client.Get(gctx, viewPath(m.Name, y, cfg.Select), &selected); err != nil {
					return err
				}
				rec.add(verifyBundle(plain)...)
				rec.add(verifyBundle(selected)...)
				rec.add(verifyPair(plain, selected)...)

				mu.Lock()
				stats.Views += 2
				if len(plain.Map.Features) == 0 {
					stats.Empty++
				}
				mu.Unlock()

				if cfg.Verbose {
					log.Info(gctx, "view checked",
						logger.String("metric", m.Name),
						logger.Int("year", y),
						logger.Int("features", len(plain.Map.Features)),
						logger.Int("bars", len(plain.Bar.Rows)),
					)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// walkSession drives one session through a click, parameter changes and a toggle-off.
func walkSession(ctx context.Context, cfg *Config, client *HTTPClient, opts Options, rec *recorder) error {
	if len(opts.Metrics) == 0 || len(opts.Years) == 0 {
		return nil
	}

	var created SessionResponse
	if err := client.Post(ctx, "/api/sessions", nil, &created); err != nil {
		return err
	}
	base := "/api/sessions/" + created.ID
	defer func() { _ = client.Delete(context.WithoutCancel(ctx), base) }()

	var got SessionResponse
	steps := []struct {
		event map[string]any
		want  string
	}{
		{map[string]any{"type": "click", "name": cfg.Select}, cfg.Select},
		{map[string]any{"type": "set_year", "year": opts.Years[len(opts.Years)-1]}, cfg.Select},
		{map[string]any{"type": "set_metric", "metric": opts.Metrics[len(opts.Metrics)-1].Name}, cfg.Select},
		{map[string]any{"type": "click", "name": cfg.Select}, ""},
	}
	for _, st := range steps {
		if err := client.Post(ctx, base+"/events", st.event, &got); err != nil {
			return err
		}
		if got.Session.Selected != st.want {
			rec.add(fmt.Sprintf("session: after %v selection is %q, want %q", st.event, got.Session.Selected, st.want))
		}
		rec.add(verifyBundle(got.Bundle)...)
	}

	var plain view.Bundle
	if err := client.Get(ctx, viewPath(got.Session.Params.Metric, got.Session.Params.Year, ""), &plain); err != nil {
		return err
	}
	rec.add(verifyCleared(plain, got.Bundle)...)
	return nil
}

func finish(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats, rec *recorder) *Stats {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.Requests = client.requests.Load()
	stats.Failed = client.failed.Load()
	rec.mu.Lock()
	stats.Violations = append([]string(nil), rec.violations...)
	rec.mu.Unlock()

	if cfg.Output != "" {
		if err := WriteReport(cfg.Output, cfg.Format, stats); err != nil {
			logger.Get().Warn(ctx, "failed to write report", logger.Error(err))
		}
	}
	displayFinalStats(ctx, stats)
	return stats
}

// WriteReport saves stats to path as json or yaml.
func WriteReport(path, format string, stats *Stats) error {
	var (
		raw []byte
		err error
	)
	switch format {
	case "", FormatJSON:
		raw, err = json.MarshalIndent(stats, "", "  ")
	case FormatYAML:
		raw, err = yaml.Marshal(stats)
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, raw, reportPermission)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Any("requests", stats.Requests),
		logger.Any("failed", stats.Failed),
		logger.Any("views", stats.Views),
		logger.Any("emptyViews", stats.Empty),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond),
	)
	for _, v := range stats.Violations {
		logger.Get().Warn(ctx, "violation", logger.String("detail", v))
	}
}
