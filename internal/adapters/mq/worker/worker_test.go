package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/formcoach/internal/adapters/mq/worker"
	"github.com/okian/formcoach/internal/domain/model"
	logging "github.com/okian/formcoach/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan worker.Job { return mq.jobs }

// recorder remembers the frame ids it saw per session, in order.
type recorder struct {
	mu    sync.Mutex
	seen  map[string][]string
	fail  map[string]error
	delay time.Duration
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[string][]string), fail: make(map[string]error)}
}

func (r *recorder) Process(ctx context.Context, j worker.Job) error { //nolint:gocritic // hugeParam
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fail[j.FrameID]; ok {
		return err
	}
	r.seen[j.SessionID] = append(r.seen[j.SessionID], j.FrameID)
	return nil
}

func (r *recorder) frames(session string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen[session]...)
}

func job(session string, i int) worker.Job {
	return model.FrameJob{SessionID: session, FrameID: fmt.Sprintf("%s-%d", session, i), ReceivedAt: time.Now()}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		rec := newRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("worker-test"))
		ctx := context.Background()
		go w.Run(ctx)

		convey.Convey("When jobs arrive and the queue is closed", func() {
			q.jobs <- job("a", 1)
			q.jobs <- job("a", 2)
			close(q.jobs)

			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			err := w.Shutdown(sctx)

			convey.Convey("Then every job is processed before the worker exits", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.frames("a"), convey.ShouldResemble, []string{"a-1", "a-2"})
				convey.So(w.Processed(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When processing fails", func() {
			rec.fail["a-1"] = errors.New("boom")
			q.jobs <- job("a", 1)
			q.jobs <- job("a", 2)
			close(q.jobs)
			_ = w.Shutdown(ctx)

			convey.Convey("Then the failure is counted and later jobs still run", func() {
				convey.So(w.Failed(), convey.ShouldEqual, 1)
				convey.So(rec.frames("a"), convey.ShouldResemble, []string{"a-2"})
			})
		})

		convey.Convey("When shutdown times out", func() {
			sctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()
			err := w.Shutdown(sctx)
			close(q.jobs)

			convey.Convey("Then the deadline error is returned", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()
		rec := newRecorder()
		ctx := context.Background()

		convey.Convey("When created with a default worker count", func() {
			pool := worker.NewPool(0, rec)

			convey.Convey("Then it has at least one shard", func() {
				convey.So(pool.Workers(), convey.ShouldBeGreaterThanOrEqualTo, 1)
				convey.So(pool.Cap(), convey.ShouldBeGreaterThan, 0)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When frames from several sessions are submitted", func() {
			pool := worker.NewPool(4, rec, worker.WithQueueSize(400))
			pool.Start(ctx)

			sessions := []string{"s1", "s2", "s3", "s4", "s5"}
			for i := 0; i < 20; i++ {
				for _, s := range sessions {
					convey.So(pool.Submit(ctx, job(s, i)), convey.ShouldBeNil)
				}
			}
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then each session's frames are processed in order", func() {
				for _, s := range sessions {
					got := rec.frames(s)
					convey.So(len(got), convey.ShouldEqual, 20)
					for i, id := range got {
						convey.So(id, convey.ShouldEqual, fmt.Sprintf("%s-%d", s, i))
					}
				}
				convey.So(pool.Processed(), convey.ShouldEqual, 100)
				convey.So(pool.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a shard is full", func() {
			pool := worker.NewPool(1, rec, worker.WithQueueSize(2))

			convey.So(pool.Submit(ctx, job("s1", 0)), convey.ShouldBeNil)
			convey.So(pool.Submit(ctx, job("s1", 1)), convey.ShouldBeNil)
			err := pool.Submit(ctx, job("s1", 2))

			convey.Convey("Then submit reports backpressure", func() {
				convey.So(errors.Is(err, worker.ErrBackpressure), convey.ShouldBeTrue)
				convey.So(pool.Len(), convey.ShouldEqual, 2)
			})

			convey.Convey("Then queued frames still drain after start and shutdown", func() {
				pool.Start(ctx)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(rec.frames("s1"), convey.ShouldResemble, []string{"s1-0", "s1-1"})
			})
		})

		convey.Convey("When the pool is shut down", func() {
			pool := worker.NewPool(2, rec)
			pool.Start(ctx)
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then submit is refused and a second shutdown is a no-op", func() {
				convey.So(errors.Is(pool.Submit(ctx, job("s1", 0)), worker.ErrStopped), convey.ShouldBeTrue)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestProcessorFunc(t *testing.T) {
	convey.Convey("Given a ProcessorFunc", t, func() {
		var got string
		p := worker.ProcessorFunc(func(_ context.Context, j worker.Job) error {
			got = j.FrameID
			return nil
		})

		convey.Convey("Then Process calls the function", func() {
			convey.So(p.Process(context.Background(), job("s", 7)), convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, "s-7")
		})
	})
}
