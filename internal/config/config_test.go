package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/burden/internal/config"
	"github.com/okian/burden/internal/domain/types"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
			convey.So(cfg.DropPolicy, convey.ShouldEqual, "blanket")
			convey.So(cfg.WarmupWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SessionBackend, convey.ShouldEqual, config.SessionBackendMemory)
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.Policy(), convey.ShouldEqual, types.DropBlanket)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"zero top n":        func(c *config.Config) { c.TopN = 0 },
			"unknown policy":    func(c *config.Config) { c.DropPolicy = "sometimes" },
			"unknown backend":   func(c *config.Config) { c.SessionBackend = "etcd" },
			"unknown format":    func(c *config.Config) { c.LogFormat = "xml" },
			"no fetch timeout":  func(c *config.Config) { c.FetchTimeoutMS = 0 },
			"redis without url": func(c *config.Config) { c.SessionBackend = config.SessionBackendRedis; c.RedisURL = "" },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" should be rejected", func() {
				cfg := config.New()
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
