package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/formcoach/internal/adapters/http/api"
	service "github.com/okian/formcoach/internal/app"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/workout"
	"github.com/okian/formcoach/internal/synth"
	"github.com/okian/formcoach/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newMux(deps api.Dependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func frameBody(id string, f model.Frame) map[string]any {
	return map[string]any{"frame_id": id, "landmarks": f}
}

func TestSessionRoutes(t *testing.T) {
	Convey("Given the API backed by a real service", t, func() {
		svc := service.New(service.WithWorkerCount(1),
			service.WithSessionOptions(workout.WithSmoothingWindow(1)))
		mux := newMux(svc, svc)

		Convey("When a session is created", func() {
			w := do(mux, http.MethodPost, "/sessions", map[string]string{"exercise": "squats"})
			So(w.Code, ShouldEqual, http.StatusCreated)

			var info service.SessionInfo
			So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
			So(info.SessionID, ShouldNotBeEmpty)
			So(info.ExerciseType, ShouldEqual, exercise.TypeReps)
			base := "/sessions/" + info.SessionID

			Convey("And a squat is streamed frame by frame", func() {
				var last model.FrameResult
				for i, k := range []float64{170, 170, 140, 100, 70, 100, 140, 170, 170} {
					w := do(mux, http.MethodPost, base+"/frames", frameBody(fmt.Sprint(i), synth.Squat(k)))
					So(w.Code, ShouldEqual, http.StatusOK)
					So(json.Unmarshal(w.Body.Bytes(), &last), ShouldBeNil)
				}

				Convey("Then the count is reported and stop returns the report", func() {
					So(last.Count, ShouldEqual, 1)

					w := do(mux, http.MethodGet, base, nil)
					So(w.Code, ShouldEqual, http.StatusOK)

					w = do(mux, http.MethodPost, base+"/stop", nil)
					So(w.Code, ShouldEqual, http.StatusOK)
					var report model.SessionReport
					So(json.Unmarshal(w.Body.Bytes(), &report), ShouldBeNil)
					So(report.TotalReps, ShouldEqual, 1)
					So(report.SessionID, ShouldEqual, info.SessionID)

					w = do(mux, http.MethodPost, base+"/frames", frameBody("late", synth.Standing()))
					So(w.Code, ShouldEqual, http.StatusConflict)
				})

				Convey("Then reset answers 204", func() {
					w := do(mux, http.MethodPost, base+"/reset", nil)
					So(w.Code, ShouldEqual, http.StatusNoContent)
				})
			})

			Convey("And the exercise is switched", func() {
				w := do(mux, http.MethodPost, base+"/exercise", map[string]string{"exercise": "plank"})

				Convey("Then the new exercise is returned", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(w.Body.String(), ShouldContainSubstring, `"exercise":"plank"`)
				})
			})

			Convey("And an async frame is sent before the service starts", func() {
				w := do(mux, http.MethodPost, base+"/frames/async", frameBody("a", synth.Standing()))

				Convey("Then the client is asked to back off", func() {
					So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				})
			})

			Convey("And async frames are sent to a running service", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
				defer svc.Stop()

				w1 := do(mux, http.MethodPost, base+"/frames/async", frameBody("a", synth.Standing()))
				w2 := do(mux, http.MethodPost, base+"/frames/async", frameBody("a", synth.Standing()))

				Convey("Then the first is accepted and the second is a duplicate", func() {
					So(w1.Code, ShouldEqual, http.StatusAccepted)
					So(w2.Code, ShouldEqual, http.StatusOK)
					So(w2.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				})
			})
		})

		Convey("When requests are malformed", func() {
			Convey("Then they are rejected with 400", func() {
				So(do(mux, http.MethodPost, "/sessions", map[string]string{}).Code, ShouldEqual, http.StatusBadRequest)

				req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString("{"))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "bad_request")

				info, _ := svc.CreateSession(context.Background(), exercise.Squats)
				w = do(mux, http.MethodPost, "/sessions/"+info.SessionID+"/frames", map[string]any{"landmarks": []any{}})
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session does not exist", func() {
			Convey("Then every session route answers 404", func() {
				So(do(mux, http.MethodGet, "/sessions/nope", nil).Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodPost, "/sessions/nope/stop", nil).Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodPost, "/sessions/nope/reset", nil).Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodPost, "/sessions/nope/frames", frameBody("x", synth.Standing())).Code,
					ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestCatalogRoutes(t *testing.T) {
	Convey("Given the catalog routes", t, func() {
		svc := service.New()
		mux := newMux(svc, svc)

		Convey("When listing every exercise", func() {
			w := do(mux, http.MethodGet, "/exercises", nil)
			var body struct {
				Exercises []exercise.Profile `json:"exercises"`
				Count     int                `json:"count"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)

			Convey("Then the whole catalog is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body.Count, ShouldEqual, len(exercise.Default().All()))
				So(body.Exercises, ShouldHaveLength, body.Count)
			})
		})

		Convey("When filtering by type", func() {
			w := do(mux, http.MethodGet, "/exercises?type=time", nil)

			Convey("Then only timed exercises are listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"id":"plank"`)
				So(w.Body.String(), ShouldNotContainSubstring, `"id":"squats"`)
			})
		})

		Convey("When fetching one exercise", func() {
			So(do(mux, http.MethodGet, "/exercises/squats", nil).Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/exercises/unknown", nil).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When listing categories", func() {
			w := do(mux, http.MethodGet, "/exercises/categories", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "categories")
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the operational routes", t, func() {
		svc := service.New()
		mux := newMux(svc, svc)

		Convey("Then /stats returns json", func() {
			w := do(mux, http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":false`)
		})

		Convey("Then /healthz exposes prometheus metrics", func() {
			_ = do(mux, http.MethodGet, "/stats", nil)
			w := do(mux, http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "formcoach_coach_http_requests_total")
		})

		Convey("Then wrong methods are refused", func() {
			So(do(mux, http.MethodDelete, "/sessions", nil).Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes are both matched", func() {
			err := api.WrapKind("api.op", api.ErrNotFound, cause)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: not found: boom")
		})

		Convey("Then Wrap keeps nil as nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
			So(api.NewKind("api.op", api.ErrBackpressure).Error(), ShouldEqual, "api.op: backpressure")
		})
	})
}
