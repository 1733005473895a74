// Package synth builds synthetic pose frames for tests and the replay tool.
//
// Frames are side views with the left and right limbs drawn on top of each
// other, shifted by a small horizontal offset so per-side checks have
// distinct points. Angles passed in are in degrees.
package synth

import (
	"math"

	"github.com/okian/formcoach/internal/domain/model"
)

// Segment lengths in normalized image units.
const (
	shin     = 0.2
	thigh    = 0.2
	torso    = 0.3
	upperArm = 0.15
	forearm  = 0.15
	neck     = 0.1
	floorY   = 0.9
	sideGap  = 0.04
)

type point struct{ x, y float64 }

func (p point) add(dx, dy float64) point { return point{p.x + dx, p.y + dy} }

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// rotate turns the unit direction d so that the angle between d and the
// result is deg; the sign convention keeps torsos upright for legs drawn
// by Legs.
func rotate(dx, dy, deg float64) (float64, float64) {
	c, s := math.Cos(rad(deg)), math.Sin(rad(deg))
	return dx*c + dy*s, -dx*s + dy*c
}

// newFrame returns a full frame with every landmark present at the centre.
func newFrame() model.Frame {
	f := make(model.Frame, model.FrameSize)
	for i := range f {
		f[i] = &model.Keypoint{X: 0.5, Y: 0.5, Visibility: 1}
	}
	return f
}

func set(f model.Frame, id model.Landmark, p point) {
	f[id] = &model.Keypoint{X: p.x, Y: p.y, Visibility: 1}
}

// Legs draws a standing-to-squatting figure. knee is the hip-knee-ankle
// angle and hip the shoulder-hip-knee angle.
func Legs(knee, hip float64) model.Frame {
	f := newFrame()
	for side, off := range []float64{-sideGap / 2, sideGap / 2} {
		ankle := point{0.5 + off, floorY}
		k := ankle.add(0, -shin)
		// direction knee -> hip
		hx, hy := -math.Sin(rad(knee)), math.Cos(rad(knee))
		h := k.add(thigh*hx, thigh*hy)
		// direction hip -> shoulder, rotated from hip -> knee
		sx, sy := rotate(-hx, -hy, hip)
		s := h.add(torso*sx, torso*sy)
		elbow := s.add(0, upperArm)
		wrist := elbow.add(0, forearm)

		ids := legIDs[side]
		set(f, ids[0], s)
		set(f, ids[1], elbow)
		set(f, ids[2], wrist)
		set(f, ids[3], h)
		set(f, ids[4], k)
		set(f, ids[5], ankle)
		if side == 0 {
			set(f, model.Nose, s.add(sideGap/2+sx*neck, sy*neck))
		}
	}
	return f
}

// legIDs lists shoulder, elbow, wrist, hip, knee, ankle for left and right.
var legIDs = [2][6]model.Landmark{
	{model.LeftShoulder, model.LeftElbow, model.LeftWrist, model.LeftHip, model.LeftKnee, model.LeftAnkle},
	{model.RightShoulder, model.RightElbow, model.RightWrist, model.RightHip, model.RightKnee, model.RightAnkle},
}

// Standing is an upright figure with slightly soft joints.
func Standing() model.Frame { return Legs(175, 175) }

// Squat draws a squat with an upright torso at the given knee angle.
func Squat(knee float64) model.Frame { return Legs(knee, knee) }

// Hinge draws a hip hinge with nearly straight legs, as in a deadlift.
func Hinge(hip float64) model.Frame { return Legs(165, hip) }

// Pushup draws a horizontal body supported on the hands with the given
// elbow angle. Hands stay under the shoulders.
func Pushup(elbow float64) model.Frame {
	f := newFrame()
	// shoulder-to-wrist distance by the law of cosines, equal arm segments
	d := math.Sqrt(upperArm*upperArm + forearm*forearm - 2*upperArm*forearm*math.Cos(rad(elbow)))
	sy := floorY - d
	h := math.Sqrt(math.Max(0, upperArm*upperArm-d*d/4))
	for side, off := range []float64{-0.005, 0.005} {
		s := point{0.3 + off, sy}
		w := point{0.3 + off, floorY}
		e := point{0.3 + off + h, sy + d/2}
		ids := legIDs[side]
		set(f, ids[0], s)
		set(f, ids[1], e)
		set(f, ids[2], w)
		set(f, ids[3], point{0.55 + off, sy})
		set(f, ids[4], point{0.68 + off, sy})
		set(f, ids[5], point{0.8 + off, sy})
	}
	set(f, model.Nose, point{0.2, sy})
	return f
}

// Plank draws a straight-arm plank.
func Plank() model.Frame { return Pushup(180) }

// SaggingPlank drops the hips by dy below the shoulder line.
func SaggingPlank(dy float64) model.Frame {
	f := Plank()
	for _, id := range []model.Landmark{model.LeftHip, model.RightHip} {
		f[id].Y += dy
	}
	return f
}

// Curl draws a standing figure with the upper arm vertical and the elbow
// bent to the given angle.
func Curl(elbow float64) model.Frame {
	f := Standing()
	for side := range 2 {
		ids := legIDs[side]
		s := f[ids[0]]
		e := point{s.X, s.Y + upperArm}
		w := e.add(forearm*math.Sin(rad(elbow)), -forearm*math.Cos(rad(elbow)))
		set(f, ids[1], e)
		set(f, ids[2], w)
	}
	return f
}

// Press draws a standing figure raising the arms; shoulder is the
// hip-shoulder-elbow angle. Forearms point straight up.
func Press(shoulder float64) model.Frame {
	f := Standing()
	for side := range 2 {
		ids := legIDs[side]
		s := point{f[ids[0]].X, f[ids[0]].Y}
		e := s.add(upperArm*math.Sin(rad(shoulder)), upperArm*math.Cos(rad(shoulder)))
		set(f, ids[1], e)
		set(f, ids[2], e.add(0, -forearm))
	}
	return f
}

// Situp draws a figure lying on its back with bent knees; torso is the
// shoulder-hip-knee angle, roughly 135 lying flat and under 60 sitting up.
func Situp(torsoAngle float64) model.Frame {
	f := newFrame()
	for side, off := range []float64{-0.005, 0.005} {
		h := point{0.5 + off, 0.8}
		k := point{0.65 + off, 0.65}
		a := point{0.8 + off, 0.8}
		dx, dy := (k.x-h.x)/math.Hypot(k.x-h.x, k.y-h.y), (k.y-h.y)/math.Hypot(k.x-h.x, k.y-h.y)
		tx, ty := rotate(dx, dy, torsoAngle)
		s := h.add(torso*tx, torso*ty)
		ids := legIDs[side]
		set(f, ids[0], s)
		set(f, ids[1], s.add(0.05, 0.05))
		set(f, ids[2], s.add(0.1, 0.05))
		set(f, ids[3], h)
		set(f, ids[4], k)
		set(f, ids[5], a)
		if side == 0 {
			set(f, model.Nose, s.add(neck*tx, neck*ty))
		}
	}
	return f
}

// Lunge draws a split stance; depth runs from 0 (standing tall) to 1
// (back knee near the floor).
func Lunge(depth float64) model.Frame {
	f := newFrame()
	hipY := 0.5 + 0.2*depth
	hips := [2]point{{0.49, hipY}, {0.51, hipY}}
	// left leg in front
	set(f, model.LeftHip, hips[0])
	set(f, model.LeftKnee, point{0.35, 0.7})
	set(f, model.LeftAnkle, point{0.35, floorY})
	set(f, model.RightHip, hips[1])
	set(f, model.RightKnee, point{0.62 - 0.09*depth, 0.7 + 0.18*depth})
	set(f, model.RightAnkle, point{0.75 - 0.02*depth, floorY - 0.04*depth})
	for side, hp := range hips {
		ids := legIDs[side]
		s := hp.add(0, -torso)
		set(f, ids[0], s)
		set(f, ids[1], s.add(0, upperArm))
		set(f, ids[2], s.add(0, upperArm+forearm))
	}
	set(f, model.Nose, point{0.5, hipY - torso - neck})
	return f
}

// Shift moves every point horizontally by dx and returns the frame.
func Shift(f model.Frame, dx float64) model.Frame {
	for _, p := range f {
		if p != nil {
			p.X += dx
		}
	}
	return f
}

// Without removes the listed landmarks.
func Without(f model.Frame, ids ...model.Landmark) model.Frame {
	for _, id := range ids {
		f[id] = nil
	}
	return f
}
