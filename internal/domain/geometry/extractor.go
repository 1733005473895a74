package geometry

import "github.com/okian/formcoach/internal/domain/model"

// Option configures an Extractor.
type Option func(*Extractor)

// WithDepth includes the z coordinate in angle computation.
func WithDepth(enabled bool) Option {
	return func(e *Extractor) { e.depth = enabled }
}

// Extractor derives JointAngles from a frame.
type Extractor struct {
	depth bool
}

// NewExtractor returns a planar extractor unless configured otherwise.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// joint names the three landmarks of an angle; the middle one is the vertex.
type joint [3]model.Landmark

var (
	leftKnee   = joint{model.LeftHip, model.LeftKnee, model.LeftAnkle}
	rightKnee  = joint{model.RightHip, model.RightKnee, model.RightAnkle}
	leftElbow  = joint{model.LeftShoulder, model.LeftElbow, model.LeftWrist}
	rightElbow = joint{model.RightShoulder, model.RightElbow, model.RightWrist}
	leftHip    = joint{model.LeftShoulder, model.LeftHip, model.LeftKnee}
	rightHip   = joint{model.RightShoulder, model.RightHip, model.RightKnee}
)

// At computes the angle at b for landmarks a-b-c.
func (e *Extractor) At(f model.Frame, a, b, c model.Landmark) model.Angle {
	pts, ok := f.Points(a, b, c)
	if !ok {
		return model.NoAngle
	}
	deg, ok := Angle(Vec(pts[0], e.depth), Vec(pts[1], e.depth), Vec(pts[2], e.depth))
	if !ok {
		return model.NoAngle
	}
	return model.Degrees(deg)
}

func (e *Extractor) joint(f model.Frame, j joint) model.Angle {
	return e.At(f, j[0], j[1], j[2])
}

// Extract returns the six joint angles. ok is false when the frame is
// shorter than the full landmark set; individual joints are invalid when
// any of their landmarks is missing.
func (e *Extractor) Extract(f model.Frame) (model.JointAngles, bool) {
	if !f.Complete() {
		return model.JointAngles{}, false
	}
	return model.JointAngles{
		LeftKnee:   e.joint(f, leftKnee),
		RightKnee:  e.joint(f, rightKnee),
		LeftElbow:  e.joint(f, leftElbow),
		RightElbow: e.joint(f, rightElbow),
		LeftHip:    e.joint(f, leftHip),
		RightHip:   e.joint(f, rightHip),
	}, true
}
