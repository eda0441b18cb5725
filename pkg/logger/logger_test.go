package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get should return it", func() {
				So(Get(), ShouldNotBeNil)
				So(Named("x"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})
	})
}

func TestLoggerFormats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("JSON"), WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "loaded", String("input", "topology"), Int("shapes", 177),
				Float64("ms", 1.5), Bool("cached", true), Duration("took", 2*time.Second),
				Error(errors.New("boom")))

			Convey("Then a JSON line with every field should be written", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "loaded")
				So(line["input"], ShouldEqual, "topology")
				So(line["shapes"], ShouldEqual, float64(177))
				So(line["cached"], ShouldEqual, true)
				So(line["took"], ShouldEqual, "2s")
				So(line["error"], ShouldEqual, "boom")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging through a named logger", func() {
			Named("service").Warn(ctx, "slow", Any("k", "v"))

			Convey("Then fields should be grouped under the name", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				group, ok := line["service"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["k"], ShouldEqual, "v")
			})
		})
	})

	Convey("Given a text logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("text"), WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Get().Error(ctx, "failed", String("k", "v"))
		So(buf.String(), ShouldContainSubstring, "msg=failed")
		So(buf.String(), ShouldContainSubstring, "k=v")
	})
}

func TestSetLevelString(t *testing.T) {
	ctx := context.Background()

	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARN"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then lower levels should be filtered", func() {
				So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
				So(strings.Contains(buf.String(), "shown"), ShouldBeTrue)
			})
		})

		Convey("When the level is debug", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(ctx, "detail")
			So(buf.String(), ShouldContainSubstring, "detail")
		})

		Convey("When the level is unknown", func() {
			So(SetLevelString("chatty"), ShouldNotBeNil)
			So(SetLevelString(""), ShouldBeNil)
			So(SetLevelString("warning"), ShouldBeNil)
			So(SetLevelString("error"), ShouldBeNil)
		})
	})
}
