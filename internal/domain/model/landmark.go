// Package model contains domain models passed between layers.
package model

import "math"

// Landmark is an index into a pose frame.
type Landmark int

// Body landmarks used by the analyzers. Indices follow the 33-point
// BlazePose topology emitted by the upstream pose model.
const (
	Nose          Landmark = 0
	LeftEar       Landmark = 7
	RightEar      Landmark = 8
	LeftShoulder  Landmark = 11
	RightShoulder Landmark = 12
	LeftElbow     Landmark = 13
	RightElbow    Landmark = 14
	LeftWrist     Landmark = 15
	RightWrist    Landmark = 16
	LeftHip       Landmark = 23
	RightHip      Landmark = 24
	LeftKnee      Landmark = 25
	RightKnee     Landmark = 26
	LeftAnkle     Landmark = 27
	RightAnkle    Landmark = 28
)

// FrameSize is the minimum number of points a frame must carry.
const FrameSize = 33

// Keypoint is a normalized body point. X and Y are in [0,1] image space
// with Y growing downwards; Z is relative depth and may be zero.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility,omitempty"`
}

func (k Keypoint) finite() bool {
	return !math.IsNaN(k.X) && !math.IsNaN(k.Y) && !math.IsInf(k.X, 0) && !math.IsInf(k.Y, 0)
}

// Frame is one pose sample indexed by Landmark. A nil entry is a missing point.
type Frame []*Keypoint

// Complete reports whether the frame carries the full landmark set.
func (f Frame) Complete() bool { return len(f) >= FrameSize }

// Point returns the keypoint for id and whether it is present.
func (f Frame) Point(id Landmark) (Keypoint, bool) {
	i := int(id)
	if i < 0 || i >= len(f) || f[i] == nil || !f[i].finite() {
		return Keypoint{}, false
	}
	return *f[i], true
}

// Points resolves several landmarks at once; ok is false if any is missing.
func (f Frame) Points(ids ...Landmark) ([]Keypoint, bool) {
	out := make([]Keypoint, len(ids))
	for i, id := range ids {
		p, ok := f.Point(id)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

// Masked returns a copy of the frame with points below minVisibility
// removed. A non-positive threshold returns the frame unchanged.
func (f Frame) Masked(minVisibility float64) Frame {
	if minVisibility <= 0 {
		return f
	}
	out := make(Frame, len(f))
	for i, p := range f {
		if p != nil && p.Visibility >= minVisibility {
			out[i] = p
		}
	}
	return out
}
