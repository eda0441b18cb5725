package selection_test

import (
	"testing"

	"github.com/okian/burden/internal/domain/selection"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClick(t *testing.T) {
	Convey("Given an empty selection", t, func() {
		var s selection.State
		So(s.IsEmpty(), ShouldBeTrue)

		Convey("When clicking an entity", func() {
			s = s.Click("France")

			Convey("Then it should be selected", func() {
				So(s.Name(), ShouldEqual, "France")
				So(s.IsEmpty(), ShouldBeFalse)
			})

			Convey("And clicking it again should clear", func() {
				So(s.Click("France").IsEmpty(), ShouldBeTrue)
			})

			Convey("And clicking another entity should replace it", func() {
				So(s.Click("Peru").Name(), ShouldEqual, "Peru")
			})

			Convey("And clicking empty space should clear", func() {
				So(s.Click("").IsEmpty(), ShouldBeTrue)
				So(s.Click("   ").IsEmpty(), ShouldBeTrue)
			})

			Convey("And select then clear should equal no selection", func() {
				So(s.Clear(), ShouldResemble, selection.State{})
			})
		})

		Convey("When clearing twice", func() {
			So(s.Clear().Clear(), ShouldResemble, selection.State{})
		})
	})

	Convey("Given Of with a blank name", t, func() {
		So(selection.Of("  ").IsEmpty(), ShouldBeTrue)
		So(selection.Of(" Chad ").Name(), ShouldEqual, "Chad")
	})
}

func TestConditions(t *testing.T) {
	Convey("Given a selection of France", t, func() {
		s := selection.Of("France")

		Convey("Then France should be highlighted", func() {
			c := s.Conditions("France")
			So(c.Selected, ShouldBeTrue)
			So(c.Opacity, ShouldEqual, 1.0)
			So(c.Stroke, ShouldEqual, "black")
			So(c.StrokeWidth, ShouldEqual, 1.5)
		})

		Convey("Then other entities should be neutral", func() {
			c := s.Conditions("Peru")
			So(c.Selected, ShouldBeFalse)
			So(c.Opacity, ShouldEqual, 0.85)
			So(c.Stroke, ShouldEqual, "white")
			So(c.StrokeWidth, ShouldEqual, 0.1)
		})

		Convey("Then only France should pass the filter", func() {
			So(s.Filter("France"), ShouldBeTrue)
			So(s.Filter("Peru"), ShouldBeFalse)
		})
	})

	Convey("Given no selection", t, func() {
		var s selection.State

		Convey("Then every entity should be neutral and nothing should pass", func() {
			So(s.Conditions("France").Selected, ShouldBeFalse)
			So(s.Conditions("").Selected, ShouldBeFalse)
			So(s.Filter(""), ShouldBeFalse)
		})
	})
}
