package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/formcoach/internal/config"
	"github.com/okian/formcoach/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("FORMCOACH_ADDR", ":8080")
		t.Setenv("FORMCOACH_QUEUE_SIZE", "1000")
		t.Setenv("FORMCOACH_WORKER_COUNT", "4")

		convey.Convey("Then configuration picks them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})

		convey.Convey("And an empty address is rejected", func() {
			t.Setenv("FORMCOACH_ADDR", "")
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WorkerCount = 2

		convey.Convey("When the service is built", func() {
			svc, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it uses the built-in catalog", func() {
				convey.So(svc.Catalog().All(), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the catalog file is missing", func() {
			cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
			_, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the score policy is unknown", func() {
			cfg.RepScorePolicy = "median"
			_, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given a started service behind the mux", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WorkerCount = 1
		svc, err := newService(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then API and documentation routes answer", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/exercises").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a session can be started", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"exercise":"plank"}`))
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given the metrics updater", t, func() {
		svc, err := newService(context.Background(), config.New())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then it returns once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startServiceMetricsUpdater(ctx, svc)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
