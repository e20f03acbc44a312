package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/wardsight/wardsight/internal/adapters/mq/queue"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory write queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2), queue.WithBufferSize(2))
		ctx := context.Background()

		Convey("When enqueuing within capacity", func() {
			So(q.Enqueue(ctx, queue.Write{Key: "state/1125", Value: []byte("a")}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Write{Key: "state/2233", Value: []byte("b")}), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then a further enqueue is dropped, not blocked", func() {
				So(q.Enqueue(ctx, queue.Write{Key: "state/3341", Value: []byte("c")}), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When dequeuing", func() {
			So(q.Enqueue(ctx, queue.Write{Key: "state/1125", Value: []byte("a")}), ShouldBeTrue)

			ch := q.Dequeue(ctx)
			select {
			case w := <-ch:
				So(w.Key, ShouldEqual, "state/1125")
				So(string(w.Value), ShouldEqual, "a")
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for dequeue")
			}
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, queue.Write{Key: "state/1125"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is refused and dequeue drains then closes", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Write{Key: "state/2233"}), ShouldBeFalse)

				ch := q.Dequeue(ctx)
				w, ok := <-ch
				So(ok, ShouldBeTrue)
				So(w.Key, ShouldEqual, "state/1125")

				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
