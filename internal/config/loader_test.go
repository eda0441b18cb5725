package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/burden/internal/config"
	"github.com/okian/burden/internal/domain/types"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BURDEN_ADDR", ":8080")
			_ = os.Setenv("BURDEN_TOP_N", "5")
			_ = os.Setenv("BURDEN_DROP_POLICY", "per_metric")
			_ = os.Setenv("BURDEN_DATA_PATH", "/data/burden.csv")
			_ = os.Setenv("BURDEN_SESSION_BACKEND", "redis")
			_ = os.Setenv("BURDEN_REDIS_URL", "redis://cache:6379/1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopN, convey.ShouldEqual, 5)
				convey.So(cfg.Policy(), convey.ShouldEqual, types.DropPerMetric)
				convey.So(cfg.DataPath, convey.ShouldEqual, "/data/burden.csv")
				convey.So(cfg.SessionBackend, convey.ShouldEqual, config.SessionBackendRedis)
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://cache:6379/1")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
# explorer settings
addr: ":9090"
log_format: json
top_n: 7
join_cache_size: 512
topology_object: land
fetch_timeout_ms: 5000
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("BURDEN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.TopN, convey.ShouldEqual, 7)
				convey.So(cfg.JoinCacheSize, convey.ShouldEqual, 512)
				convey.So(cfg.TopologyObject, convey.ShouldEqual, "land")
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 5000)
			})

			convey.Convey("And env vars should take precedence over the file", func() {
				_ = os.Setenv("BURDEN_TOP_N", "3")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TopN, convey.ShouldEqual, 3)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("BURDEN_CONFIG", "/nonexistent/burden.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file is not valid YAML", func() {
			tmpFile := createTempConfigFile("addr: [unterminated\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("BURDEN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value fails validation", func() {
			tmpFile := createTempConfigFile(`
addr: ""
top_n: 10
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("BURDEN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a numeric env var is not a number", func() {
			_ = os.Setenv("BURDEN_TOP_N", "many")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] != '=' {
				continue
			}
			if name := kv[:i]; len(name) > len(config.EnvPrefix) && name[:len(config.EnvPrefix)] == config.EnvPrefix {
				_ = os.Unsetenv(name)
			}
			break
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "burden-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
