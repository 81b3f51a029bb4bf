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
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Named("test"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := InitWithOptions(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(WithFormat(FormatJSON), WithOutput(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		ctx := WithRequestID(context.Background(), "req-1")

		Convey("When logging with fields", func() {
			Named("feed").Info(ctx, "feed built",
				String("city", "athens"),
				Int("candidates", 42),
				Float64("radius", 3000),
				Bool("live_weather", true),
				Duration("took", 15*time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then the entry carries every field", func() {
				var entry map[string]interface{}
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "feed built")
				So(entry["component"], ShouldEqual, "feed")
				So(entry["city"], ShouldEqual, "athens")
				So(entry["candidates"], ShouldEqual, float64(42))
				So(entry["live_weather"], ShouldEqual, true)
				So(entry["request_id"], ShouldEqual, "req-1")
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters the entry", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()

			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(strings.Contains(out, "hidden"), ShouldBeFalse)
				So(strings.Contains(out, "shown"), ShouldBeTrue)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given contexts", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")
		ctx := WithRequestID(context.Background(), "abc")
		So(RequestID(ctx), ShouldEqual, "abc")
		So(WithRequestID(ctx, ""), ShouldEqual, ctx)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop discards without panicking", t, func() {
		So(func() { Nop().Named("x").Error(context.Background(), "dropped") }, ShouldNotPanic)
	})
}
