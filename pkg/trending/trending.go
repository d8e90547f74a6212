package trending

import (
	"math"
	"time"
)

// Gravity is the exponent applied to age in hours.
const Gravity = 1.5

// Counters are the engagement figures a score is computed from.
type Counters struct {
	Likes    int64
	Comments int64
	Remixes  int64
	Shares   int64
	Views    int64
}

// Engagement weights remixes and comments above likes; views count least.
func Engagement(c Counters) float64 {
	return float64(c.Likes) +
		2*float64(c.Comments) +
		3*float64(c.Remixes) +
		float64(c.Shares) +
		0.1*float64(c.Views)
}

// Score is engagement / age_hours^1.5, with age clamped to at least one
// hour so fresh posts do not divide by zero.
func Score(engagement float64, age time.Duration) float64 {
	hours := age.Hours()
	if hours < 1 {
		hours = 1
	}
	return engagement / math.Pow(hours, Gravity)
}

// ScoreAt scores counters for a post created at createdAt as seen at now.
func ScoreAt(c Counters, createdAt, now time.Time) float64 {
	return Score(Engagement(c), now.Sub(createdAt))
}
