package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// results builds a most-recent-first score list with normal flags.
func results(rs ...Result) []Score {
	scores := make([]Score, len(rs))
	for i, r := range rs {
		scores[i] = Score{Result: r, Flag: FlagNormal}
	}
	return scores
}

func TestSheet_Total(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Sheet{}.Total())

	s := Sheet{Scores: []Score{
		{ResultWin, FlagDouble, BerserkValid},     // 5
		{ResultWin, FlagStreakStarter, BerserkNo}, // 2
		{ResultDraw, FlagNull, BerserkNo},         // 0
		{ResultLoss, FlagNormal, BerserkNo},       // 0
	}}
	assert.Equal(t, 7, s.Total())
}

func TestSheet_OnFire(t *testing.T) {
	t.Parallel()

	assert.True(t, Sheet{Scores: results(ResultWin, ResultWin)}.OnFire())
	assert.True(t, Sheet{Scores: results(ResultWin, ResultWin, ResultLoss)}.OnFire())
	assert.False(t, Sheet{Scores: results(ResultWin, ResultLoss)}.OnFire())
	assert.False(t, Sheet{Scores: results(ResultLoss, ResultWin)}.OnFire())
	assert.False(t, Sheet{Scores: results(ResultWin)}.OnFire())
	assert.False(t, Sheet{}.OnFire())
}

func TestIsDrawStreak(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		scores []Score
		want   bool
	}{
		{"empty", nil, false},
		{"single draw", results(ResultDraw), true},
		{"single DQ", results(ResultDQ), true},
		{"single win", results(ResultWin), false},
		{"single loss", results(ResultLoss), false},
		{"loss then draw", results(ResultLoss, ResultDraw), true},
		{"loss then win", results(ResultLoss, ResultWin), false},
		{"losses then draw", results(ResultLoss, ResultLoss, ResultDraw), true},
		{"losses only", results(ResultLoss, ResultLoss, ResultLoss), false},
		{"win shadows older draw", results(ResultWin, ResultDraw), false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, isDrawStreak(tc.scores))
		})
	}
}
