package session_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculateStats(t *testing.T) {
	Convey("Stats for a short set", t, func() {
		s := session.CalculateStats([]float64{80, 90, 70})
		So(s.AverageScore, ShouldEqual, 80.0)
		So(s.BestRepScore, ShouldEqual, 90.0)
		So(s.Consistency, ShouldAlmostEqual, 0.8, 1e-9)
		So(s.OverallScore, ShouldEqual, 82)
	})

	Convey("No scores yields zeros with full consistency", t, func() {
		So(session.CalculateStats(nil), ShouldResemble, session.Stats{Consistency: 1})
		So(session.CalculateStats([]float64{math.NaN(), -5, math.Inf(1)}), ShouldResemble, session.Stats{Consistency: 1})
	})

	Convey("Invalid scores are ignored", t, func() {
		s := session.CalculateStats([]float64{100, math.NaN(), -1, 100})
		So(s, ShouldResemble, session.Stats{AverageScore: 100, BestRepScore: 100, Consistency: 1, OverallScore: 100})
	})

	Convey("Overall score is clamped", t, func() {
		w := session.Weights{Average: 1, Best: 1, Consistency: 10}
		So(w.Calculate([]float64{100}).OverallScore, ShouldEqual, 100)
		w = session.Weights{Average: 0, Best: 0, Consistency: -100}
		So(w.Calculate([]float64{0, 50}).OverallScore, ShouldEqual, 0)
	})
}

func TestFeedback(t *testing.T) {
	reg := exercise.Default()
	squats, _ := reg.Get(exercise.Squats)
	lunges, _ := reg.Get(exercise.Lunges)

	Convey("Feedback names the exercise, the band and the tip", t, func() {
		msg := session.Feedback(squats, session.Stats{OverallScore: 82})
		So(msg, ShouldStartWith, "Great work on your Squats session! Good performance")
		So(msg, ShouldEndWith, squats.Tip)
	})

	Convey("Bands come from the exercise", t, func() {
		So(session.Feedback(squats, session.Stats{OverallScore: 86}), ShouldContainSubstring, "Good performance")
		So(session.Feedback(lunges, session.Stats{OverallScore: 86}), ShouldContainSubstring, "Excellent form")
		So(session.Feedback(squats, session.Stats{OverallScore: 10}), ShouldContainSubstring, "Keep practicing!")
	})

	Convey("An exercise without a tip has no trailing space", t, func() {
		msg := session.Feedback(exercise.Profile{Name: "Burpees"}, session.Stats{OverallScore: 65})
		So(strings.HasSuffix(msg, " "), ShouldBeFalse)
		So(msg, ShouldContainSubstring, "making progress")
	})
}

func TestAggregator(t *testing.T) {
	reg := exercise.Default()
	squats, _ := reg.Get(exercise.Squats)
	plank, _ := reg.Get(exercise.Plank)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	Convey("Given an aggregator", t, func() {
		a := session.NewAggregator(session.DefaultWeights())
		for _, s := range []float64{80, math.NaN(), 90, -3, 70} {
			a.Add(s)
		}

		Convey("Only valid scores are kept", func() {
			So(a.Count(), ShouldEqual, 3)
			if diff := cmp.Diff([]float64{80, 90, 70}, a.Scores()); diff != "" {
				t.Errorf("scores mismatch (-want +got):\n%s", diff)
			}
		})

		Convey("A rep report carries the stats and the rep count", func() {
			r := a.Report(session.Summary{SessionID: "s1", Profile: squats, Count: 3, StartedAt: start, EndedAt: start.Add(45 * time.Second)})
			So(r.TotalReps, ShouldEqual, 3)
			So(r.DurationSeconds, ShouldEqual, 45)
			So(r.RepScores, ShouldResemble, []int{80, 90, 70})
			So(r.OverallScore, ShouldEqual, 82)
			So(r.ExerciseType, ShouldEqual, "reps")
			So(r.Feedback, ShouldStartWith, "Great work on your Squats session!")
		})

		Convey("A timed report carries the hold as its duration", func() {
			r := a.Report(session.Summary{Profile: plank, Count: 42, StartedAt: start, EndedAt: start.Add(time.Minute)})
			So(r.TotalReps, ShouldEqual, 0)
			So(r.DurationSeconds, ShouldEqual, 42)
		})

		Convey("Reporting is pure and reset empties the list", func() {
			s := session.Summary{Profile: squats, StartedAt: start, EndedAt: start}
			So(a.Report(s), ShouldResemble, a.Report(s))
			a.Reset()
			So(a.Count(), ShouldEqual, 0)
			So(a.Stats(), ShouldResemble, session.Stats{Consistency: 1})
		})
	})
}
