package session

import (
	"strings"

	"github.com/okian/formcoach/internal/domain/exercise"
)

const (
	bandExcellent = "Excellent form and consistency! You're maintaining great technique throughout your workout. "
	bandGood      = "Good performance with room for improvement. Focus on maintaining consistent form. "
	bandFair      = "You're making progress! Work on your form and try to maintain consistency across all reps. "
	bandPractice  = "Keep practicing! Focus on proper form over speed. Quality reps are better than rushed ones. "
)

// Feedback is the closing summary: a greeting, a line for the score band
// the session landed in and the exercise tip.
func Feedback(p exercise.Profile, s Stats) string {
	b := p.Bands
	if b.Excellent == 0 && b.Good == 0 && b.Fair == 0 {
		b = exercise.Bands{Excellent: 90, Good: 75, Fair: 60}
	}
	score := s.OverallScore
	msg := "Great work on your " + p.Name + " session! "
	switch {
	case score >= b.Excellent:
		msg += bandExcellent
	case score >= b.Good:
		msg += bandGood
	case score >= b.Fair:
		msg += bandFair
	default:
		msg += bandPractice
	}
	return strings.TrimSpace(msg + p.Tip)
}
