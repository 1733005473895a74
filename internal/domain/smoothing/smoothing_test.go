package smoothing_test

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/smoothing"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

func TestMovingAverage(t *testing.T) {
	Convey("Given a moving average of window 3", t, func() {
		m := smoothing.NewMovingAverage(3)

		Convey("It is invalid until a sample arrives", func() {
			So(m.Average().Valid(), ShouldBeFalse)
			So(m.Add(model.NoAngle).Valid(), ShouldBeFalse)
		})

		Convey("It averages and rounds the last window samples", func() {
			So(m.Add(model.Degrees(100)), ShouldResemble, model.Degrees(100))
			So(m.Add(model.Degrees(101)), ShouldResemble, model.Degrees(101)) // 100.5 rounds up
			So(m.Add(model.Degrees(110)), ShouldResemble, model.Degrees(104))
			So(m.Add(model.Degrees(120)), ShouldResemble, model.Degrees(110))
		})

		Convey("Invalid samples return the current average unchanged", func() {
			m.Add(model.Degrees(90))
			m.Add(model.Degrees(100))
			So(m.Add(model.NoAngle), ShouldResemble, model.Degrees(95))
			So(m.Add(model.Degrees(110)), ShouldResemble, model.Degrees(100))
		})

		Convey("Reset forgets history", func() {
			m.Add(model.Degrees(90))
			m.Reset()
			So(m.Average().Valid(), ShouldBeFalse)
			So(m.Window(), ShouldEqual, 3)
		})
	})
}

func TestAngleSmoother(t *testing.T) {
	Convey("Given an angle smoother", t, func() {
		s := smoothing.NewAngleSmoother()
		So(s.Window(), ShouldEqual, smoothing.DefaultWindow)

		Convey("Its output varies less than a noisy input once the window is full", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			var in, out []float64
			for i := range 200 {
				v := 120 + rng.IntN(31) - 15
				res := s.Smooth(model.JointAngles{LeftKnee: model.Degrees(v)})
				if i >= smoothing.DefaultWindow {
					in = append(in, float64(v))
					out = append(out, float64(res.LeftKnee.Deg()))
				}
			}
			So(stat.Variance(out, nil), ShouldBeLessThan, stat.Variance(in, nil))
		})

		Convey("Joints are filtered independently", func() {
			s.Smooth(model.JointAngles{LeftKnee: model.Degrees(100), RightElbow: model.Degrees(50)})
			res := s.Smooth(model.JointAngles{LeftKnee: model.Degrees(110)})
			So(res.LeftKnee, ShouldResemble, model.Degrees(105))
			So(res.RightElbow, ShouldResemble, model.Degrees(50))
			So(res.LeftHip.Valid(), ShouldBeFalse)
		})

		Convey("Reset clears every joint", func() {
			s.Smooth(model.JointAngles{LeftKnee: model.Degrees(100)})
			s.Reset()
			res := s.Smooth(model.JointAngles{LeftKnee: model.Degrees(60)})
			So(res.LeftKnee, ShouldResemble, model.Degrees(60))
		})

		Convey("The window is configurable", func() {
			s := smoothing.NewAngleSmoother(smoothing.WithWindowSize(2))
			s.Smooth(model.JointAngles{LeftHip: model.Degrees(10)})
			s.Smooth(model.JointAngles{LeftHip: model.Degrees(20)})
			res := s.Smooth(model.JointAngles{LeftHip: model.Degrees(30)})
			So(res.LeftHip, ShouldResemble, model.Degrees(25))
		})
	})
}
