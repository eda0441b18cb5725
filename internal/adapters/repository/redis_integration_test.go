//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
	"github.com/okian/burden/pkg/logger"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	_ = logger.Init()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	client, err := repository.NewRedisClient(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	Convey("Given a redis store", t, func() {
		So(client.FlushAll(ctx).Err(), ShouldBeNil)
		store := repository.NewRedisStore(client, repository.WithKeyPrefix("test:session:"), repository.WithTTL(time.Minute))
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		Convey("When a session is put", func() {
			s := model.NewSession("abc", now)
			s.Params = types.Params{Metric: types.MetricEating, Year: 2001}
			s.Selected = "Peru"
			So(store.Put(ctx, s), ShouldBeNil)

			Convey("Then it should round-trip", func() {
				got, err := store.Get(ctx, "abc")
				So(err, ShouldBeNil)
				So(got.Params, ShouldResemble, s.Params)
				So(got.Selected, ShouldEqual, "Peru")
				So(got.UpdatedAt.Equal(now), ShouldBeTrue)
			})

			Convey("Then it should carry the TTL", func() {
				ttl, err := client.TTL(ctx, "test:session:abc").Result()
				So(err, ShouldBeNil)
				So(ttl, ShouldBeGreaterThan, 0)
				So(ttl, ShouldBeLessThanOrEqualTo, time.Minute)
			})

			Convey("Then it should be counted", func() {
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And deleting it should make it unknown", func() {
				So(store.Delete(ctx, "abc"), ShouldBeNil)
				_, err := store.Get(ctx, "abc")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When reading an unknown id", func() {
			_, err := store.Get(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
