package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	service "github.com/okian/formcoach/internal/app"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/workout"
	"github.com/okian/formcoach/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceAsyncFrames(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithSessionOptions(workout.WithSmoothingWindow(1)),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When squat frames for several sessions are enqueued", func() {
			ids := make([]string, 5)
			for i := range ids {
				info, err := svc.CreateSession(ctx, exercise.Squats)
				So(err, ShouldBeNil)
				ids[i] = info.SessionID
			}

			var wg sync.WaitGroup
			errs := make(chan error, len(ids)*len(squatCycle))
			for _, id := range ids {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					for n, k := range squatCycle {
						if _, err := svc.EnqueueFrame(ctx, id, fmt.Sprintf("f%d", n), synth.Squat(k)); err != nil {
							errs <- err
						}
					}
				}(id)
			}
			wg.Wait()
			close(errs)
			So(len(errs), ShouldEqual, 0)

			// Stop drains every queued frame.
			svc.Stop()

			Convey("Then every session counts exactly one rep", func() {
				for _, id := range ids {
					snap, err := svc.Snapshot(ctx, id)
					So(err, ShouldBeNil)
					So(snap.Frames, ShouldEqual, len(squatCycle))
					So(snap.Count, ShouldEqual, 1)
				}
				So(svc.GetStats()["framesProcessed"], ShouldEqual, int64(len(ids)*len(squatCycle)))
			})
		})

		Convey("When the same frame id is sent twice", func() {
			info, _ := svc.CreateSession(ctx, exercise.Squats)
			a1, err1 := svc.EnqueueFrame(ctx, info.SessionID, "frame-1", synth.Standing())
			a2, err2 := svc.EnqueueFrame(ctx, info.SessionID, "frame-1", synth.Standing())
			svc.Stop()

			Convey("Then the second one is a duplicate and only one frame runs", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(a1.Duplicate, ShouldBeFalse)
				So(a2.Duplicate, ShouldBeTrue)
				snap, _ := svc.Snapshot(ctx, info.SessionID)
				So(snap.Frames, ShouldEqual, 1)
			})
		})

		Convey("When no frame id is given", func() {
			info, _ := svc.CreateSession(ctx, exercise.Squats)
			a1, _ := svc.EnqueueFrame(ctx, info.SessionID, "", synth.Standing())
			a2, _ := svc.EnqueueFrame(ctx, info.SessionID, "", synth.Standing())
			svc.Stop()

			Convey("Then each frame gets its own id", func() {
				So(a1.FrameID, ShouldNotBeEmpty)
				So(a1.FrameID, ShouldNotEqual, a2.FrameID)
				So(a2.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When the session was stopped", func() {
			info, _ := svc.CreateSession(ctx, exercise.Squats)
			_, _ = svc.StopSession(ctx, info.SessionID)
			_, err := svc.EnqueueFrame(ctx, info.SessionID, "late", synth.Standing())
			svc.Stop()

			Convey("Then the frame is refused", func() {
				So(errors.Is(err, service.ErrSessionStopped), ShouldBeTrue)
			})
		})
	})
}

func TestServiceBackpressure(t *testing.T) {
	Convey("Given a service with a one-frame queue", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		info, _ := svc.CreateSession(ctx, exercise.Squats)

		Convey("When frames arrive faster than they are processed", func() {
			var rejected error
			var id string
			for i := 0; i < 500 && rejected == nil; i++ {
				id = fmt.Sprintf("f%d", i)
				_, rejected = svc.EnqueueFrame(ctx, info.SessionID, id, synth.Standing())
			}

			Convey("Then a rejected frame reports backpressure and may be retried", func() {
				if rejected == nil {
					return
				}
				So(errors.Is(rejected, service.ErrBackpressure), ShouldBeTrue)
				ack, err := svc.EnqueueFrame(ctx, info.SessionID, id, synth.Standing())
				if err == nil {
					So(ack.Duplicate, ShouldBeFalse)
				} else {
					So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
				}
			})
		})
	})
}
