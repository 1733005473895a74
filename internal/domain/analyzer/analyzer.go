// Package analyzer holds the per-exercise form analyzers. Each analyzer
// turns one frame into a phase signal, a 0-100 score, named sub-metrics and
// coaching messages. Analyzers keep rolling history and are not safe for
// concurrent use.
package analyzer

import (
	"math"
	"slices"
	"time"

	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
	"github.com/okian/formcoach/internal/domain/scoring"
	"gonum.org/v1/gonum/stat"
)

// MsgNoPose is reported when the landmarks an analyzer needs are missing.
const MsgNoPose = scoring.MsgNoPose

// Input is everything an analyzer sees for one frame.
type Input struct {
	Frame  model.Frame       // raw keypoints, low-visibility points removed
	Raw    model.JointAngles // unsmoothed joint angles
	Angles model.JointAngles // smoothed joint angles
	At     time.Time
}

// Signal is the scalar the rep detector tracks. Channels carry extra
// series for detectors that watch several joints at once; NaN marks a
// missing channel.
type Signal struct {
	Value    float64
	Channels []float64
	Valid    bool
}

// Assessment is an analyzer's verdict on one frame.
type Assessment struct {
	Signal   Signal
	Score    int
	Metrics  map[string]float64
	Feedback []string
	// Timed exercises only.
	Holding  bool
	HoldTime time.Duration
}

// Analyzer is implemented by every exercise.
type Analyzer interface {
	Analyze(in Input) Assessment
	Reset()
}

func invalid() Assessment {
	return Assessment{Feedback: []string{MsgNoPose}}
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func meanScore(vs ...float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return stat.Mean(vs, nil)
}

// blend mixes the rule-based score with the mean of the sub-metric scores.
func blend(rule int, weight float64, subs ...float64) int {
	if len(subs) == 0 {
		return clampScore(float64(rule))
	}
	return clampScore(weight*float64(rule) + (1-weight)*meanScore(subs...))
}

// merge concatenates message lists, dropping repeats and keeping order.
func merge(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		for _, m := range l {
			if m != "" && !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func orDefault(msgs []string, def string) []string {
	if len(msgs) == 0 {
		return []string{def}
	}
	return msgs
}

// motion scores how controlled a joint moves: 100 minus a penalty for the
// mean absolute change between consecutive samples.
type motion struct {
	samples *ringbuf.Ring[float64]
	scale   float64
}

func newMotion(n int, scale float64) motion {
	return motion{samples: ringbuf.New[float64](n), scale: scale}
}

func (m motion) add(v float64) { m.samples.Push(v) }

func (m motion) score() float64 {
	n := m.samples.Len()
	if n < 2 {
		return 100
	}
	var sum float64
	for i := 1; i < n; i++ {
		sum += math.Abs(m.samples.At(i) - m.samples.At(i-1))
	}
	return math.Max(0, 100-m.scale*sum/float64(n-1))
}

func (m motion) reset() { m.samples.Reset() }

// timed is a value observed at a point in time.
type timed struct {
	at time.Time
	v  float64
}

// window keeps samples younger than span.
type window struct {
	samples *ringbuf.Ring[timed]
	span    time.Duration
}

func newWindow(capacity int, span time.Duration) window {
	return window{samples: ringbuf.New[timed](capacity), span: span}
}

func (w window) add(at time.Time, v float64) {
	w.samples.Push(timed{at: at, v: v})
	cutoff := at.Add(-w.span)
	w.samples.DropWhile(func(s timed) bool { return s.at.Before(cutoff) })
}

// rate is the absolute change per second between the oldest and newest
// samples. ok is false with fewer than minSamples or a zero time span.
func (w window) rate(minSamples int) (float64, bool) {
	if w.samples.Len() < minSamples {
		return 0, false
	}
	first, _ := w.samples.First()
	last, _ := w.samples.Last()
	secs := last.at.Sub(first.at).Seconds()
	if secs <= 0 {
		return 0, false
	}
	return math.Abs(last.v-first.v) / secs, true
}

func (w window) reset() { w.samples.Reset() }

// boundedVariance is 100 minus the sample variance of the ring, floored at
// 0; with fewer than three samples it is 100.
func boundedVariance(r *ringbuf.Ring[float64]) float64 {
	if r.Len() < 3 {
		return 100
	}
	return math.Max(0, 100-stat.Variance(r.Values(), nil))
}

func nan() float64 { return math.NaN() }

func valueOr(v float64, ok bool) float64 {
	if !ok {
		return nan()
	}
	return v
}
