package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a memory store", t, func() {
		store, err := repository.NewMemoryStore(repository.WithCapacity(2))
		So(err, ShouldBeNil)

		Convey("When a session is put", func() {
			s := model.NewSession("a", now)
			s.Selected = "France"
			So(store.Put(ctx, s), ShouldBeNil)

			Convey("Then it should be readable", func() {
				got, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, s)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And replacing it should keep one entry", func() {
				s.Params = types.Params{Metric: types.MetricAnxiety, Year: 1990}
				So(store.Put(ctx, s), ShouldBeNil)
				got, _ := store.Get(ctx, "a")
				So(got.Params.Metric, ShouldEqual, types.MetricAnxiety)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And deleting it should make it unknown", func() {
				So(store.Delete(ctx, "a"), ShouldBeNil)
				_, err := store.Get(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Delete(ctx, "a"), ShouldBeNil)
			})
		})

		Convey("When capacity is exceeded", func() {
			for _, id := range []string{"a", "b", "c"} {
				So(store.Put(ctx, model.NewSession(id, now)), ShouldBeNil)
			}

			Convey("Then the least recently used session should be evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Get(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, "c")
				So(err, ShouldBeNil)
			})
		})

		Convey("When ids are empty", func() {
			_, err := store.Get(ctx, "")
			So(errors.Is(err, repository.ErrInvalidID), ShouldBeTrue)
			So(errors.Is(store.Put(ctx, model.Session{}), repository.ErrInvalidID), ShouldBeTrue)
		})
	})

	Convey("Given an invalid capacity", t, func() {
		_, err := repository.NewMemoryStore(repository.WithCapacity(0))
		So(errors.Is(err, repository.ErrInvalidCapacity), ShouldBeTrue)
	})

	Convey("Given concurrent writers", t, func() {
		store, err := repository.NewMemoryStore()
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = store.Put(ctx, model.NewSession(fmt.Sprintf("s-%d", i), now))
			}(i)
		}
		wg.Wait()
		So(store.Count(ctx), ShouldEqual, 50)
	})
}
