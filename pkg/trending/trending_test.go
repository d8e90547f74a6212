package trending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagement(t *testing.T) {
	c := Counters{Likes: 10, Comments: 2, Remixes: 1, Shares: 3, Views: 50}
	assert.InDelta(t, 10+4+3+3+5.0, Engagement(c), 1e-9)
}

func TestScoreClampsYoungPosts(t *testing.T) {
	assert.InDelta(t, 8.0, Score(8, 0), 1e-9)
	assert.InDelta(t, 8.0, Score(8, 10*time.Minute), 1e-9)
}

func TestScoreDecays(t *testing.T) {
	assert.InDelta(t, 1.0, Score(8, 4*time.Hour), 1e-9)
	assert.Greater(t, Score(100, 2*time.Hour), Score(100, 3*time.Hour))
}

func TestScoreAt(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	created := now.Add(-9 * time.Hour)
	assert.InDelta(t, 27.0/27.0, ScoreAt(Counters{Likes: 27}, created, now), 1e-9)
}
