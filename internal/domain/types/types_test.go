package types_test

import (
	"errors"
	"testing"

	types "github.com/okian/burden/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetric(t *testing.T) {
	Convey("Given the metric enumeration", t, func() {
		Convey("Then it should expose exactly five metrics in display order", func() {
			ms := types.Metrics()
			So(len(ms), ShouldEqual, types.MetricCount)
			So(ms[0], ShouldEqual, types.MetricDepressive)
			So(ms[4], ShouldEqual, types.MetricAnxiety)
		})

		Convey("And Metrics should return a copy", func() {
			ms := types.Metrics()
			ms[0] = "tampered"
			So(types.Metrics()[0], ShouldEqual, types.MetricDepressive)
		})

		Convey("When parsing a known metric", func() {
			m, err := types.ParseMetric(" Bipolar_Disorder ")

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
				So(m, ShouldEqual, types.MetricBipolar)
				So(m.Index(), ShouldEqual, 2)
			})
		})

		Convey("When parsing an unknown metric", func() {
			_, err := types.ParseMetric("Insomnia")

			Convey("Then it should return ErrInvalidParams", func() {
				So(errors.Is(err, types.ErrInvalidParams), ShouldBeTrue)
			})
		})

		Convey("Then each metric should map to its long CSV header", func() {
			So(types.MetricDepressive.Column(), ShouldEqual,
				"DALYs from depressive disorders per 100,000 people in, both sexes aged age-standardized")
			So(types.MetricEating.Column(), ShouldEqual,
				"DALYs from eating disorders per 100,000 people in, both sexes aged age-standardized")
		})

		Convey("Then labels should replace underscores", func() {
			So(types.MetricAnxiety.Label(), ShouldEqual, "Anxiety Disorders")
		})
	})
}

func TestYears(t *testing.T) {
	Convey("Given the year selector", t, func() {
		years := types.Years()

		Convey("Then it should run from 2019 down to 1990", func() {
			So(len(years), ShouldEqual, 30)
			So(years[0], ShouldEqual, 2019)
			So(years[len(years)-1], ShouldEqual, 1990)
		})

		Convey("When parsing years", func() {
			y, err := types.ParseYear("2005")
			So(err, ShouldBeNil)
			So(y, ShouldEqual, 2005)

			_, err = types.ParseYear("1989")
			So(errors.Is(err, types.ErrInvalidParams), ShouldBeTrue)

			_, err = types.ParseYear("soon")
			So(errors.Is(err, types.ErrInvalidParams), ShouldBeTrue)
		})
	})
}

func TestParams(t *testing.T) {
	Convey("Given pipeline parameters", t, func() {
		Convey("Then the defaults should be valid", func() {
			p := types.DefaultParams()
			So(p.Validate(), ShouldBeNil)
			So(p.Key(), ShouldEqual, "Depressive/2019")
		})

		Convey("Then an invalid year should fail validation", func() {
			p := types.Params{Metric: types.MetricAnxiety, Year: 2020}
			So(errors.Is(p.Validate(), types.ErrInvalidParams), ShouldBeTrue)
		})

		Convey("Then AllParams should enumerate every combination", func() {
			all := types.AllParams()
			So(len(all), ShouldEqual, 150)
			seen := map[string]bool{}
			for _, p := range all {
				So(p.Validate(), ShouldBeNil)
				seen[p.Key()] = true
			}
			So(len(seen), ShouldEqual, 150)
		})
	})
}

func TestDropPolicy(t *testing.T) {
	Convey("Given drop policy names", t, func() {
		p, err := types.ParseDropPolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, types.DropBlanket)

		p, err = types.ParseDropPolicy("PER_METRIC")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, types.DropPerMetric)

		_, err = types.ParseDropPolicy("sometimes")
		So(err, ShouldNotBeNil)
	})
}

func TestControlOptions(t *testing.T) {
	Convey("Given the control options", t, func() {
		opts := types.ControlOptions()

		So(len(opts.Metrics), ShouldEqual, 5)
		So(opts.Metrics[1].Name, ShouldEqual, types.MetricSchizophrenia)
		So(opts.Metrics[1].Label, ShouldEqual, "Schizophrenia")
		So(opts.Years[0], ShouldEqual, types.LastYear)
	})
}
