package service_test

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/burden/internal/adapters/render/svgchart"
	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/adapters/source/sourcetest"
	service "github.com/okian/burden/internal/app"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
	"github.com/okian/burden/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newService(opts ...service.Option) *service.Service {
	n := 0
	base := []service.Option{
		service.WithIDGenerator(func() string {
			n++
			return "session-" + strconv.Itoa(n)
		}),
		service.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }),
	}
	svc, err := service.New(sourcetest.Dataset(types.DropBlanket), append(base, opts...)...)
	So(err, ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given no dataset", t, func() {
		_, err := service.New(nil)

		Convey("Then construction should fail", func() {
			So(errors.Is(err, service.ErrNoDataset), ShouldBeTrue)
		})
	})

	Convey("Given a dataset", t, func() {
		svc := newService()

		Convey("Then options should list five metrics and thirty years", func() {
			opts := svc.Options()
			So(len(opts.Metrics), ShouldEqual, 5)
			So(len(opts.Years), ShouldEqual, 30)
		})

		Convey("Then the raw topology should be exposed", func() {
			So(string(svc.Topology()), ShouldContainSubstring, "countries")
		})
	})
}

func TestService_Render(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		svc := newService()
		p := types.Params{Metric: types.MetricDepressive, Year: 2019}

		Convey("When rendering valid parameters", func() {
			b, err := svc.Render(ctx, p, "")

			Convey("Then the bundle should carry the joined rows", func() {
				So(err, ShouldBeNil)
				So(len(b.Map.Features), ShouldEqual, 3)
				So(b.Bar.Rows[0].Name, ShouldEqual, "Peru")
			})
		})

		Convey("When rendering an invalid year", func() {
			_, err := svc.Render(ctx, types.Params{Metric: types.MetricDepressive, Year: 1950}, "")

			Convey("Then ErrInvalidParams should be returned", func() {
				So(errors.Is(err, types.ErrInvalidParams), ShouldBeTrue)
			})
		})

		Convey("When joining the same parameters concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = svc.Join(ctx, p)
				}()
			}
			wg.Wait()

			Convey("Then one cached join should serve them", func() {
				stats := svc.GetStats(ctx)
				So(stats["joinCacheLength"], ShouldEqual, 1)
			})
		})

		Convey("When selecting an entity and then clearing it", func() {
			plain, err := svc.Render(ctx, p, "")
			So(err, ShouldBeNil)
			sess := model.NewSession("s", time.Time{})
			sess = service.Apply(sess, model.Event{Type: model.EventClick, Name: "France"})
			sess = service.Apply(sess, model.Event{Type: model.EventClear})
			cleared, err := svc.Render(ctx, p, sess.Selected)
			So(err, ShouldBeNil)

			Convey("Then the bundles should be identical", func() {
				So(cmp.Diff(plain, cleared), ShouldBeEmpty)
			})
		})

		Convey("When rendering a Vega-Lite spec", func() {
			raw, err := svc.VegaLite(ctx, p, "France")

			Convey("Then JSON should be produced", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "hconcat")
			})
		})

		Convey("When drawing a chart", func() {
			var buf bytes.Buffer
			err := svc.Chart(ctx, &buf, svgchart.ChartBar, svgchart.FormatSVG, p, "")

			Convey("Then an SVG should be written", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "<svg")
			})
		})
	})
}

func TestService_Warmup(t *testing.T) {
	Convey("Given a service with a cache large enough for every combination", t, func() {
		svc := newService(service.WithJoinCacheSize(200), service.WithWarmupWorkers(3))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When warming up", func() {
			err := svc.Warmup(ctx)

			Convey("Then every combination should be cached", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats(ctx)
				So(stats["joinCacheLength"], ShouldEqual, 150)
				So(stats["warmed"], ShouldEqual, int64(150))
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		svc := newService()

		Convey("When creating a session", func() {
			sess, b, err := svc.CreateSession(ctx)

			Convey("Then it should start in the default state", func() {
				So(err, ShouldBeNil)
				So(sess.ID, ShouldEqual, "session-1")
				So(sess.Params, ShouldResemble, types.DefaultParams())
				So(b.Selection, ShouldEqual, "")
			})

			Convey("And clicking an entity should select it", func() {
				sess, b, err := svc.Dispatch(ctx, sess.ID, model.Event{Type: model.EventClick, Name: "France"})
				So(err, ShouldBeNil)
				So(sess.Selected, ShouldEqual, "France")
				So(b.Trend.CountryName, ShouldEqual, "France")

				Convey("And changing the year should keep it", func() {
					sess, _, err := svc.Dispatch(ctx, sess.ID, model.Event{Type: model.EventSetYear, Year: 2018})
					So(err, ShouldBeNil)
					So(sess.Selected, ShouldEqual, "France")
					So(sess.Params.Year, ShouldEqual, 2018)
				})

				Convey("And clicking it again should clear it", func() {
					sess, _, err := svc.Dispatch(ctx, sess.ID, model.Event{Type: model.EventClick, Name: "France"})
					So(err, ShouldBeNil)
					So(sess.Selected, ShouldEqual, "")
				})
			})

			Convey("And the stored session should render again", func() {
				got, _, err := svc.GetSession(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, sess.ID)
			})

			Convey("And an invalid event should be rejected", func() {
				_, _, err := svc.Dispatch(ctx, sess.ID, model.Event{Type: model.EventSetMetric, Metric: "Nope"})
				So(errors.Is(err, model.ErrInvalidEvent), ShouldBeTrue)
			})

			Convey("And ending it should forget it", func() {
				So(svc.EndSession(ctx, sess.ID), ShouldBeNil)
				_, _, err := svc.GetSession(ctx, sess.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When dispatching to an unknown session", func() {
			_, _, err := svc.Dispatch(ctx, "missing", model.Event{Type: model.EventClear})

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given a session with a selection", t, func() {
		sess := model.NewSession("s", time.Time{})
		sess.Selected = "Peru"

		Convey("Then setting the metric should keep the selection", func() {
			got := service.Apply(sess, model.Event{Type: model.EventSetMetric, Metric: types.MetricAnxiety})
			So(got.Params.Metric, ShouldEqual, types.MetricAnxiety)
			So(got.Selected, ShouldEqual, "Peru")
		})

		Convey("Then clicking empty space should clear", func() {
			So(service.Apply(sess, model.Event{Type: model.EventClick}).Selected, ShouldEqual, "")
		})

		Convey("Then clicking another entity should switch", func() {
			So(service.Apply(sess, model.Event{Type: model.EventClick, Name: "Japan"}).Selected, ShouldEqual, "Japan")
		})

		Convey("Then clear should empty it", func() {
			So(service.Apply(sess, model.Event{Type: model.EventClear}).Selected, ShouldEqual, "")
		})
	})
}
