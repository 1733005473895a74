package geometry_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAngle(t *testing.T) {
	Convey("Given three points", t, func() {
		Convey("A right angle is 90 degrees", func() {
			d, ok := geometry.Angle(r3.Vec{X: 1}, r3.Vec{}, r3.Vec{Y: 1})
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, 90)
		})

		Convey("Collinear points give 180 and coincident arms give 0", func() {
			d, _ := geometry.Angle(r3.Vec{X: -1}, r3.Vec{}, r3.Vec{X: 1})
			So(d, ShouldEqual, 180)
			d, _ = geometry.Angle(r3.Vec{X: 1}, r3.Vec{}, r3.Vec{X: 2})
			So(d, ShouldEqual, 0)
		})

		Convey("A zero-length arm is invalid", func() {
			_, ok := geometry.Angle(r3.Vec{}, r3.Vec{}, r3.Vec{X: 1})
			So(ok, ShouldBeFalse)
		})

		Convey("The result is symmetric and within [0,180]", func() {
			rng := rand.New(rand.NewPCG(1, 2))
			for range 500 {
				a := r3.Vec{X: rng.Float64(), Y: rng.Float64()}
				b := r3.Vec{X: rng.Float64(), Y: rng.Float64()}
				c := r3.Vec{X: rng.Float64(), Y: rng.Float64()}
				abc, ok1 := geometry.Angle(a, b, c)
				cba, ok2 := geometry.Angle(c, b, a)
				So(ok1, ShouldEqual, ok2)
				So(abc, ShouldEqual, cba)
				So(abc, ShouldBeBetweenOrEqual, 0, 180)
			}
		})
	})
}

func TestExtractor(t *testing.T) {
	Convey("Given an extractor", t, func() {
		ex := geometry.NewExtractor()

		Convey("A synthetic squat yields the drawn knee and hip angles", func() {
			angles, ok := ex.Extract(synth.Squat(90))
			So(ok, ShouldBeTrue)
			So(angles.LeftKnee, ShouldResemble, model.Degrees(90))
			So(angles.RightKnee, ShouldResemble, model.Degrees(90))
			So(angles.LeftHip, ShouldResemble, model.Degrees(90))
			So(angles.Valid(), ShouldBeTrue)
		})

		Convey("A synthetic curl yields the drawn elbow angle", func() {
			angles, ok := ex.Extract(synth.Curl(60))
			So(ok, ShouldBeTrue)
			So(angles.LeftElbow, ShouldResemble, model.Degrees(60))
			So(angles.RightElbow, ShouldResemble, model.Degrees(60))
		})

		Convey("A missing landmark invalidates only its joints", func() {
			angles, ok := ex.Extract(synth.Without(synth.Standing(), model.LeftKnee))
			So(ok, ShouldBeTrue)
			So(angles.LeftKnee.Valid(), ShouldBeFalse)
			So(angles.LeftHip.Valid(), ShouldBeFalse)
			So(angles.RightKnee.Valid(), ShouldBeTrue)
			So(angles.LeftElbow.Valid(), ShouldBeTrue)
			So(angles.Valid(), ShouldBeTrue)
		})

		Convey("Each single missing landmark is handled without panicking", func() {
			for id := range model.FrameSize {
				f := synth.Without(synth.Standing(), model.Landmark(id))
				So(func() { ex.Extract(f) }, ShouldNotPanic)
			}
		})

		Convey("A short frame is rejected", func() {
			_, ok := ex.Extract(synth.Standing()[:20])
			So(ok, ShouldBeFalse)
		})

		Convey("Depth is ignored unless enabled", func() {
			f := synth.Squat(120)
			f[model.LeftAnkle].Z = 0.3
			planar, _ := ex.Extract(f)
			deep, _ := geometry.NewExtractor(geometry.WithDepth(true)).Extract(f)
			So(planar.LeftKnee, ShouldResemble, model.Degrees(120))
			So(deep.LeftKnee, ShouldResemble, model.Degrees(106))
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("Given spatial helpers", t, func() {
		a := model.Keypoint{X: 0, Y: 0}
		b := model.Keypoint{X: 0.3, Y: 0.4}

		So(geometry.Distance(a, b), ShouldAlmostEqual, 0.5, 1e-9)
		So(geometry.Midpoint(a, b).X, ShouldAlmostEqual, 0.15, 1e-9)

		Convey("Centroid fails on a missing landmark", func() {
			f := synth.Standing()
			_, ok := geometry.Centroid(synth.Without(f, model.LeftHip), model.LeftHip, model.RightHip)
			So(ok, ShouldBeFalse)
			c, ok := geometry.Centroid(synth.Standing(), model.LeftHip, model.RightHip)
			So(ok, ShouldBeTrue)
			So(c.X, ShouldAlmostEqual, 0.5-math.Sin(175*math.Pi/180)*0.2, 1e-9)
		})

		Convey("Lean from vertical", func() {
			lean, ok := geometry.LeanFromVertical(model.Keypoint{X: 0.5, Y: 0.2}, model.Keypoint{X: 0.5, Y: 0.5})
			So(ok, ShouldBeTrue)
			So(lean, ShouldAlmostEqual, 0, 1e-9)
			lean, _ = geometry.LeanFromVertical(model.Keypoint{X: 0.8, Y: 0.5}, model.Keypoint{X: 0.5, Y: 0.5})
			So(lean, ShouldAlmostEqual, 90, 1e-9)
		})

		Convey("Movement stability compares joint by joint", func() {
			prev := model.JointAngles{LeftKnee: model.Degrees(100), RightKnee: model.Degrees(100)}
			cur := model.JointAngles{LeftKnee: model.Degrees(104), RightKnee: model.Degrees(120)}
			So(geometry.IsMovementStable(prev, cur, 5), ShouldBeFalse)
			cur.RightKnee = model.NoAngle
			So(geometry.IsMovementStable(prev, cur, 5), ShouldBeTrue)
		})
	})
}
