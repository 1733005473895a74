// Package smoothing filters per-frame joint angles with moving averages.
package smoothing

import (
	"math"

	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the number of samples averaged per angle.
const DefaultWindow = 5

// MovingAverage averages the last window valid samples of one angle.
type MovingAverage struct {
	samples *ringbuf.Ring[float64]
}

// NewMovingAverage returns a filter over window samples.
func NewMovingAverage(window int) *MovingAverage {
	if window < 1 {
		window = DefaultWindow
	}
	return &MovingAverage{samples: ringbuf.New[float64](window)}
}

// Add feeds one sample and returns the rounded average. Invalid samples are
// not recorded and yield the current average, which is itself invalid
// until the first valid sample arrives.
func (m *MovingAverage) Add(a model.Angle) model.Angle {
	if d, ok := a.Value(); ok {
		m.samples.Push(float64(d))
	}
	return m.Average()
}

// Average returns the current rounded mean.
func (m *MovingAverage) Average() model.Angle {
	if m.samples.Len() == 0 {
		return model.NoAngle
	}
	return model.Degrees(int(math.Round(stat.Mean(m.samples.Values(), nil))))
}

// Window returns the filter length.
func (m *MovingAverage) Window() int { return m.samples.Cap() }

// Reset drops all samples.
func (m *MovingAverage) Reset() { m.samples.Reset() }

// Option configures an AngleSmoother.
type Option func(*AngleSmoother)

// WithWindowSize sets the averaging window for every joint.
func WithWindowSize(n int) Option {
	return func(s *AngleSmoother) {
		if n > 0 {
			s.window = n
		}
	}
}

// AngleSmoother keeps one moving average per joint.
type AngleSmoother struct {
	window                                                        int
	leftKnee, rightKnee, leftElbow, rightElbow, leftHip, rightHip *MovingAverage
}

// NewAngleSmoother builds a smoother with DefaultWindow unless configured.
func NewAngleSmoother(opts ...Option) *AngleSmoother {
	s := &AngleSmoother{window: DefaultWindow}
	for _, opt := range opts {
		opt(s)
	}
	s.leftKnee = NewMovingAverage(s.window)
	s.rightKnee = NewMovingAverage(s.window)
	s.leftElbow = NewMovingAverage(s.window)
	s.rightElbow = NewMovingAverage(s.window)
	s.leftHip = NewMovingAverage(s.window)
	s.rightHip = NewMovingAverage(s.window)
	return s
}

// Smooth feeds one angle set and returns the filtered set.
func (s *AngleSmoother) Smooth(j model.JointAngles) model.JointAngles {
	return model.JointAngles{
		LeftKnee:   s.leftKnee.Add(j.LeftKnee),
		RightKnee:  s.rightKnee.Add(j.RightKnee),
		LeftElbow:  s.leftElbow.Add(j.LeftElbow),
		RightElbow: s.rightElbow.Add(j.RightElbow),
		LeftHip:    s.leftHip.Add(j.LeftHip),
		RightHip:   s.rightHip.Add(j.RightHip),
	}
}

// Window returns the configured window.
func (s *AngleSmoother) Window() int { return s.window }

// Reset clears every filter.
func (s *AngleSmoother) Reset() {
	for _, m := range []*MovingAverage{s.leftKnee, s.rightKnee, s.leftElbow, s.rightElbow, s.leftHip, s.rightHip} {
		m.Reset()
	}
}
