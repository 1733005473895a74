package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Angle is an optional whole-degree joint angle. The zero value is invalid.
type Angle struct {
	deg   int
	valid bool
}

// Degrees builds a valid angle.
func Degrees(d int) Angle { return Angle{deg: d, valid: true} }

// NoAngle is the invalid angle.
var NoAngle = Angle{}

// Valid reports whether the angle was resolved.
func (a Angle) Valid() bool { return a.valid }

// Value returns the degrees and validity.
func (a Angle) Value() (int, bool) { return a.deg, a.valid }

// Deg returns the degrees; callers must check Valid first.
func (a Angle) Deg() int { return a.deg }

func (a Angle) String() string {
	if !a.valid {
		return "null"
	}
	return strconv.Itoa(a.deg)
}

// MarshalJSON encodes invalid angles as null.
func (a Angle) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(a.deg)), nil
}

// UnmarshalJSON accepts a number or null.
func (a *Angle) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*a = NoAngle
		return nil
	}
	var d int
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*a = Degrees(d)
	return nil
}

// JointAngles holds the six joint angles derived from one frame.
type JointAngles struct {
	LeftKnee   Angle `json:"left_knee"`
	RightKnee  Angle `json:"right_knee"`
	LeftElbow  Angle `json:"left_elbow"`
	RightElbow Angle `json:"right_elbow"`
	LeftHip    Angle `json:"left_hip"`
	RightHip   Angle `json:"right_hip"`
}

// Valid reports whether at least one side has both knee and hip angles.
func (j JointAngles) Valid() bool {
	return (j.LeftKnee.valid && j.LeftHip.valid) || (j.RightKnee.valid && j.RightHip.valid)
}

// HasArms reports whether at least one elbow angle resolved.
func (j JointAngles) HasArms() bool { return j.LeftElbow.valid || j.RightElbow.valid }

// Pair averages two angles. When only one side resolved it is used alone.
func Pair(l, r Angle) (float64, bool) {
	switch {
	case l.valid && r.valid:
		return float64(l.deg+r.deg) / 2, true
	case l.valid:
		return float64(l.deg), true
	case r.valid:
		return float64(r.deg), true
	}
	return 0, false
}

// Diff is the absolute left/right difference; both sides must be present.
func Diff(l, r Angle) (float64, bool) {
	if !l.valid || !r.valid {
		return 0, false
	}
	d := l.deg - r.deg
	if d < 0 {
		d = -d
	}
	return float64(d), true
}

// Knee returns the averaged knee angle.
func (j JointAngles) Knee() (float64, bool) { return Pair(j.LeftKnee, j.RightKnee) }

// Elbow returns the averaged elbow angle.
func (j JointAngles) Elbow() (float64, bool) { return Pair(j.LeftElbow, j.RightElbow) }

// Hip returns the averaged hip angle.
func (j JointAngles) Hip() (float64, bool) { return Pair(j.LeftHip, j.RightHip) }
