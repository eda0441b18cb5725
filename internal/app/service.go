// Package service provides the explorer pipeline behind the HTTP API: cached joins,
// view composition and per-client sessions.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/okian/burden/internal/adapters/mq/queue"
	"github.com/okian/burden/internal/adapters/mq/worker"
	"github.com/okian/burden/internal/adapters/render/svgchart"
	"github.com/okian/burden/internal/adapters/render/vegalite"
	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/domain/join"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/selection"
	"github.com/okian/burden/internal/domain/types"
	"github.com/okian/burden/internal/domain/view"
	"github.com/okian/burden/pkg/logger"
	"github.com/okian/burden/pkg/metrics"
)

// Service renders views over an immutable dataset.
type Service struct {
	ds       *model.Dataset
	sessions repository.Store
	charts   *svgchart.Renderer

	joins         *lru.Cache
	joinCacheSize int
	flight        singleflight.Group
	globals       map[types.Metric][]view.TrendPoint

	locks [sessionStripes]sync.Mutex

	warmupWorkers int
	warmed        atomic.Int64

	viewOpts []view.Option
	vegaOpts []vegalite.Option

	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// New builds a service over ds.
func New(ds *model.Dataset, opts ...Option) (*Service, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}

	s := &Service{
		ds:            ds,
		joinCacheSize: DefaultJoinCacheSize,
		warmupWorkers: DefaultWarmupWorkers,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	joins, err := lru.New(s.joinCacheSize)
	if err != nil {
		return nil, fmt.Errorf("join cache: %w", err)
	}
	s.joins = joins

	if s.sessions == nil {
		store, err := repository.NewMemoryStore()
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		s.sessions = store
	}
	if s.charts == nil {
		s.charts = svgchart.New()
	}

	s.globals = make(map[types.Metric][]view.TrendPoint, types.MetricCount)
	for _, m := range types.Metrics() {
		s.globals[m] = view.GlobalTrend(ds, m)
	}

	metrics.UpdateDatasetSize(len(ds.Records), len(ds.Shapes), len(ds.Codes))

	return s, nil
}

// Options returns the values the controls accept.
func (s *Service) Options() types.Options {
	return types.ControlOptions()
}

// Topology returns the raw topology document.
func (s *Service) Topology() json.RawMessage {
	return s.ds.Topology
}

// Join returns the joined rows for p, computing them at most once per cache residency.
func (s *Service) Join(ctx context.Context, p types.Params) (join.Result, error) {
	if err := p.Validate(); err != nil {
		return join.Result{}, err
	}
	key := p.Key()
	if v, ok := s.joins.Get(key); ok {
		metrics.RecordJoinCacheHit()
		return v.(join.Result), nil
	}
	metrics.RecordJoinCacheMiss()

	ch := s.flight.DoChan(key, func() (interface{}, error) {
		res := join.Join(s.ds, p)
		s.joins.Add(key, res)
		metrics.RecordJoin(len(res.Rows), res.Misses.NoCode, res.Misses.NoRecord, res.Misses.NoValue)
		return res, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return join.Result{}, r.Err
		}
		return r.Val.(join.Result), nil
	case <-ctx.Done():
		return join.Result{}, ctx.Err()
	}
}

// Render composes the bundle for p with selected as the current selection.
func (s *Service) Render(ctx context.Context, p types.Params, selected string) (view.Bundle, error) {
	start := time.Now()
	res, err := s.Join(ctx, p)
	if err != nil {
		return view.Bundle{}, err
	}

	opts := make([]view.Option, 0, len(s.viewOpts)+1)
	opts = append(opts, view.WithGlobalTrend(s.globals[p.Metric]))
	opts = append(opts, s.viewOpts...)
	b := view.Compose(s.ds, res, selection.Of(selected), opts...)

	metrics.RecordRender("bundle", float64(time.Since(start).Microseconds())/1000.0)
	return b, nil
}

// VegaLite renders the bundle for p as a Vega-Lite specification.
func (s *Service) VegaLite(ctx context.Context, p types.Params, selected string) ([]byte, error) {
	b, err := s.Render(ctx, p, selected)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	raw, err := vegalite.Marshal(b, s.vegaOpts...)
	if err != nil {
		return nil, fmt.Errorf("vegalite: %w", err)
	}
	metrics.RecordRender("vegalite", float64(time.Since(start).Microseconds())/1000.0)
	return raw, nil
}

// Chart draws one chart of the bundle for p to w.
func (s *Service) Chart(ctx context.Context, w io.Writer, name string, f svgchart.Format, p types.Params, selected string) error {
	b, err := s.Render(ctx, p, selected)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := s.charts.Render(w, name, f, b); err != nil {
		return err
	}
	metrics.RecordRender(name+"_"+string(f), float64(time.Since(start).Microseconds())/1000.0)
	return nil
}

// Warm computes and caches the join for p.
func (s *Service) Warm(ctx context.Context, p types.Params) error {
	if _, err := s.Join(ctx, p); err != nil {
		return err
	}
	s.warmed.Add(1)
	return nil
}

// Warmup precomputes every (metric, year) join on a worker pool and waits for it to drain.
func (s *Service) Warmup(ctx context.Context) error {
	all := types.AllParams()
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(all)))
	for _, p := range all {
		if !q.Enqueue(ctx, p) {
			_ = q.Close()
			return fmt.Errorf("%w: %s", ErrWarmupRejected, p.Key())
		}
	}
	if err := q.Close(); err != nil {
		return err
	}

	start := time.Now()
	pool := worker.NewPool(s.warmupWorkers, q, worker.ProcessorFunc(s.Warm))
	pool.Start(ctx)
	if err := pool.Wait(ctx); err != nil {
		_ = pool.Shutdown(context.Background())
		return err
	}
	if err := pool.Shutdown(ctx); err != nil {
		return err
	}

	s.logger.Info(ctx, "join cache warmed",
		logger.Int("jobs", len(all)),
		logger.Int("workers", pool.Size()),
		logger.Int("cached", s.joins.Len()),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%sessionStripes]
	mu.Lock()
	return mu.Unlock
}

// CreateSession stores a new session in the default state and renders it.
func (s *Service) CreateSession(ctx context.Context) (model.Session, view.Bundle, error) {
	sess := model.NewSession(s.newID(), s.now())
	if err := s.sessions.Put(ctx, sess); err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	b, err := s.Render(ctx, sess.Params, sess.Selected)
	if err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	s.logger.Debug(ctx, "session created", logger.String("session_id", sess.ID))
	return sess, b, nil
}

// GetSession renders the current state of a session.
func (s *Service) GetSession(ctx context.Context, id string) (model.Session, view.Bundle, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	b, err := s.Render(ctx, sess.Params, sess.Selected)
	if err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	return sess, b, nil
}

// SessionVegaLite renders the current state of a session as a Vega-Lite specification.
func (s *Service) SessionVegaLite(ctx context.Context, id string) ([]byte, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.VegaLite(ctx, sess.Params, sess.Selected)
}

// Dispatch applies one event to a session and renders the result. Events for the same
// session are applied one at a time.
func (s *Service) Dispatch(ctx context.Context, id string, e model.Event) (model.Session, view.Bundle, error) {
	if err := e.Validate(); err != nil {
		return model.Session{}, view.Bundle{}, err
	}

	unlock := s.lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	sess = Apply(sess, e)
	sess.UpdatedAt = s.now()

	b, err := s.Render(ctx, sess.Params, sess.Selected)
	if err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return model.Session{}, view.Bundle{}, err
	}
	metrics.RecordSessionEvent(string(e.Type))
	return sess, b, nil
}

// EndSession forgets a session.
func (s *Service) EndSession(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

// Apply returns sess after e. Parameter changes keep the selection.
func Apply(sess model.Session, e model.Event) model.Session {
	switch e.Type {
	case model.EventSetMetric:
		sess.Params.Metric = e.Metric
	case model.EventSetYear:
		sess.Params.Year = e.Year
	case model.EventClick:
		sess.Selected = selection.Of(sess.Selected).Click(e.Name).Name()
	case model.EventClear:
		sess.Selected = selection.Of(sess.Selected).Clear().Name()
	}
	return sess
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	metrics.CollectRuntime()
	return map[string]interface{}{
		"records":         len(s.ds.Records),
		"shapes":          len(s.ds.Shapes),
		"codes":           len(s.ds.Codes),
		"years":           s.ds.Years(),
		"dropPolicy":      s.ds.Policy,
		"load":            s.ds.Stats,
		"joinCacheSize":   s.joinCacheSize,
		"joinCacheLength": s.joins.Len(),
		"warmed":          s.warmed.Load(),
		"sessions":        s.sessions.Count(ctx),
		"warmupWorkers":   s.warmupWorkers,
	}
}
