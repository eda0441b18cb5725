package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestRecord(t *testing.T) {
	convey.Convey("Given a record", t, func() {
		r := model.NewRecord("Chad", "TCD", 2019).WithValue(types.MetricDepressive, 1200)

		convey.Convey("Then set metrics should be present", func() {
			v, ok := r.Value(types.MetricDepressive)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 1200)
		})

		convey.Convey("And unset metrics should be absent", func() {
			_, ok := r.Value(types.MetricSchizophrenia)
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(r.Complete(), convey.ShouldBeFalse)
		})

		convey.Convey("And WithValue should not mutate the original", func() {
			r2 := r.WithValue(types.MetricAnxiety, 5)
			_, ok := r.Value(types.MetricAnxiety)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = r2.Value(types.MetricAnxiety)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("And a record with every metric should be complete", func() {
			full := r
			for _, m := range types.Metrics() {
				full = full.WithValue(m, 1)
			}
			convey.So(full.Complete(), convey.ShouldBeTrue)
		})
	})
}

func TestDataset(t *testing.T) {
	convey.Convey("Given a dataset", t, func() {
		records := []model.Record{
			model.NewRecord("France", "FRA", 2019).WithValue(types.MetricDepressive, 600),
			model.NewRecord("France", "FRA", 2018).WithValue(types.MetricDepressive, 590),
			model.NewRecord("France (dup)", "FRA", 2019).WithValue(types.MetricDepressive, 1),
			model.NewRecord("Peru", "PER", 2019).WithValue(types.MetricDepressive, 700),
		}
		codes := []model.CountryCode{
			{Numeric: "250", Alpha3: "FRA"},
			{Numeric: "604", Alpha3: "PER"},
			{Numeric: "250", Alpha3: "XXX"},
		}
		ds := model.NewDataset(records, nil, codes)

		convey.Convey("Then numeric codes should resolve to the first alpha-3", func() {
			a, ok := ds.Alpha3("250")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(a, convey.ShouldEqual, "FRA")
			_, ok = ds.Alpha3("999")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then lookups should return the first record by input order", func() {
			r, ok := ds.Lookup("FRA", 2019)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Name, convey.ShouldEqual, "France")
			_, ok = ds.Lookup("FRA", 2000)
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then years should be sorted ascending", func() {
			convey.So(ds.Years(), convey.ShouldResemble, []int{2018, 2019})
		})

		convey.Convey("Then history should be ordered by year", func() {
			h := ds.History("France")
			convey.So(len(h), convey.ShouldEqual, 2)
			convey.So(h[0].Year, convey.ShouldEqual, 2018)
			convey.So(h[1].Year, convey.ShouldEqual, 2019)
		})

		convey.Convey("Then AllYears should not alias Records", func() {
			ds.Records[0].Name = "changed"
			convey.So(ds.AllYears[0].Name, convey.ShouldEqual, "France")
		})
	})
}

func TestEventValidate(t *testing.T) {
	convey.Convey("Given session events", t, func() {
		convey.So(model.Event{Type: model.EventSetMetric, Metric: types.MetricAnxiety}.Validate(), convey.ShouldBeNil)
		convey.So(model.Event{Type: model.EventSetYear, Year: 1990}.Validate(), convey.ShouldBeNil)
		convey.So(model.Event{Type: model.EventClick}.Validate(), convey.ShouldBeNil)
		convey.So(model.Event{Type: model.EventClear}.Validate(), convey.ShouldBeNil)

		err := model.Event{Type: model.EventSetMetric, Metric: "Nope"}.Validate()
		convey.So(errors.Is(err, model.ErrInvalidEvent), convey.ShouldBeTrue)
		convey.So(errors.Is(err, types.ErrInvalidParams), convey.ShouldBeTrue)

		err = model.Event{Type: model.EventSetYear, Year: 3000}.Validate()
		convey.So(errors.Is(err, types.ErrInvalidParams), convey.ShouldBeTrue)

		err = model.Event{Type: "dance"}.Validate()
		convey.So(errors.Is(err, model.ErrInvalidEvent), convey.ShouldBeTrue)
	})

	convey.Convey("Given a new session", t, func() {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		s := model.NewSession("abc", now)
		convey.So(s.Params, convey.ShouldResemble, types.DefaultParams())
		convey.So(s.Selected, convey.ShouldEqual, "")
		convey.So(s.UpdatedAt, convey.ShouldEqual, now)
	})
}
