package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.sessionsActive.Set(2)

			Convey("Then metrics use the default namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "formcoach_coach_"), ShouldBeTrue)
				}
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.frameLatency.Observe(3)

			Convey("Then names and constant labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_unit_"), ShouldBeTrue)
					if f.GetName() != "test_unit_frame_latency_milliseconds" {
						continue
					}
					found = true
					m := f.GetMetric()[0]
					So(m.GetLabel()[0].GetName(), ShouldEqual, "env")
					So(m.GetLabel()[0].GetValue(), ShouldEqual, "test")
					So(len(m.GetHistogram().GetBucket()), ShouldEqual, 3)
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "formcoach")
				So(manager.subsystem, ShouldEqual, "coach")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When frames are recorded", func() {
			processed := testutil.ToFloat64(globalManager.framesProcessed.WithLabelValues("squats"))
			rejected := testutil.ToFloat64(globalManager.framesRejected.WithLabelValues("incomplete"))
			dup := testutil.ToFloat64(globalManager.framesDuplicate)

			RecordFrameProcessed("squats")
			RecordFrameProcessed("squats")
			RecordFrameRejected("incomplete")
			RecordFrameDuplicate()
			RecordFrameLatency(1.5)

			Convey("Then the counters advance", func() {
				So(testutil.ToFloat64(globalManager.framesProcessed.WithLabelValues("squats")), ShouldEqual, processed+2)
				So(testutil.ToFloat64(globalManager.framesRejected.WithLabelValues("incomplete")), ShouldEqual, rejected+1)
				So(testutil.ToFloat64(globalManager.framesDuplicate), ShouldEqual, dup+1)
			})
		})

		Convey("When reps and sessions are recorded", func() {
			reps := testutil.ToFloat64(globalManager.repsCounted.WithLabelValues("pushups"))
			started := testutil.ToFloat64(globalManager.sessionsStarted.WithLabelValues("pushups"))
			done := testutil.ToFloat64(globalManager.sessionsCompleted.WithLabelValues("pushups"))
			expired := testutil.ToFloat64(globalManager.sessionsExpired)

			RecordSessionStarted("pushups")
			RecordRep("pushups", 85)
			RecordSessionCompleted("pushups", 81)
			RecordSessionExpired()
			UpdateSessionsActive(4)

			Convey("Then session metrics advance", func() {
				So(testutil.ToFloat64(globalManager.repsCounted.WithLabelValues("pushups")), ShouldEqual, reps+1)
				So(testutil.ToFloat64(globalManager.sessionsStarted.WithLabelValues("pushups")), ShouldEqual, started+1)
				So(testutil.ToFloat64(globalManager.sessionsCompleted.WithLabelValues("pushups")), ShouldEqual, done+1)
				So(testutil.ToFloat64(globalManager.sessionsExpired), ShouldEqual, expired+1)
				So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, 4.0)
			})
		})

		Convey("When queue and worker gauges are updated", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.07)
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(2)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100.0)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.07)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4.0)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 2.0)
			})
		})

		Convey("When the remaining helpers are called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordHTTPRequest("/sessions", "POST", "201")
					RecordHTTPRequestDuration("/sessions", "POST", "201", 3)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(0.5)
					RecordWorkerProcessingLatency(2)
					RecordWorkerError()
					RecordErrorByComponent("worker", "process")
					CollectSystem()
				}, ShouldNotPanic)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the registry is gathered", func() {
			families, err := GetRegistry().Gather()

			Convey("Then the global metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
