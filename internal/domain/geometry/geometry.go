// Package geometry turns pose keypoints into joint angles and simple
// spatial measures.
package geometry

import (
	"math"

	"github.com/okian/formcoach/internal/domain/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec converts a keypoint to a vector. Depth is dropped unless requested.
func Vec(k model.Keypoint, depth bool) r3.Vec {
	v := r3.Vec{X: k.X, Y: k.Y}
	if depth {
		v.Z = k.Z
	}
	return v
}

// Angle returns the angle ABC at vertex b in whole degrees. It is invalid
// when either arm has zero length.
func Angle(a, b, c r3.Vec) (int, bool) {
	ba := r3.Sub(a, b)
	bc := r3.Sub(c, b)
	na, nc := r3.Norm(ba), r3.Norm(bc)
	if na == 0 || nc == 0 {
		return 0, false
	}
	cos := r3.Dot(ba, bc) / (na * nc)
	cos = math.Max(-1, math.Min(1, cos))
	return int(math.Round(math.Acos(cos) * 180 / math.Pi)), true
}

// Distance is the planar distance between two keypoints.
func Distance(a, b model.Keypoint) float64 {
	return r3.Norm(r3.Sub(Vec(a, false), Vec(b, false)))
}

// Midpoint averages two keypoints.
func Midpoint(a, b model.Keypoint) model.Keypoint {
	return model.Keypoint{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

// Centroid averages the listed landmarks; ok is false if any is missing.
func Centroid(f model.Frame, ids ...model.Landmark) (model.Keypoint, bool) {
	pts, ok := f.Points(ids...)
	if !ok || len(pts) == 0 {
		return model.Keypoint{}, false
	}
	var sum r3.Vec
	for _, p := range pts {
		sum = r3.Add(sum, Vec(p, true))
	}
	c := r3.Scale(1/float64(len(pts)), sum)
	return model.Keypoint{X: c.X, Y: c.Y, Z: c.Z}, true
}

// LeanFromVertical is the angle in degrees between the segment bottom→top
// and straight up in image space.
func LeanFromVertical(top, bottom model.Keypoint) (float64, bool) {
	dx, dy := top.X-bottom.X, bottom.Y-top.Y
	if dx == 0 && dy == 0 {
		return 0, false
	}
	return math.Abs(math.Atan2(dx, dy)) * 180 / math.Pi, true
}

// IsMovementStable reports whether no joint moved more than threshold
// degrees between two consecutive angle sets. Joints missing in either
// set are ignored.
func IsMovementStable(prev, cur model.JointAngles, threshold float64) bool {
	pairs := [][2]model.Angle{
		{prev.LeftKnee, cur.LeftKnee},
		{prev.RightKnee, cur.RightKnee},
		{prev.LeftElbow, cur.LeftElbow},
		{prev.RightElbow, cur.RightElbow},
		{prev.LeftHip, cur.LeftHip},
		{prev.RightHip, cur.RightHip},
	}
	for _, p := range pairs {
		if d, ok := model.Diff(p[0], p[1]); ok && d > threshold {
			return false
		}
	}
	return true
}

// Mid averages a left/right landmark pair, using one side alone when the
// other is missing.
func Mid(f model.Frame, left, right model.Landmark) (model.Keypoint, bool) {
	l, lok := f.Point(left)
	r, rok := f.Point(right)
	switch {
	case lok && rok:
		return Midpoint(l, r), true
	case lok:
		return l, true
	case rok:
		return r, true
	}
	return model.Keypoint{}, false
}
