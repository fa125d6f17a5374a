package models

import (
	"testing"

	"arena-score-system/scoring"

	"github.com/stretchr/testify/assert"
)

func TestArenaPairing_ToScoring(t *testing.T) {
	t.Parallel()

	row := ArenaPairing{
		Player1ID:      "alice",
		Player2ID:      "bob",
		WinnerID:       "alice",
		Player1Berserk: true,
		Plies:          42,
	}

	p := row.ToScoring()
	assert.Equal(t, "alice", p.WinnerID)
	assert.True(t, p.WonBy("alice"))
	assert.False(t, p.WonBy("bob"))
	assert.True(t, p.BerserkOf("alice"))
	assert.False(t, p.BerserkOf("bob"))
	assert.False(t, p.QuickFinish)
	assert.True(t, p.LongGame)
	assert.False(t, p.QuickDraw)
}

func TestArenaPairing_PlyThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		plies       int
		quickFinish bool
		longGame    bool
	}{
		{"very short", 0, true, false},
		{"just below berserk bonus", 17, true, false},
		{"berserk bonus boundary", 18, false, false},
		{"mid game", 29, false, false},
		{"long game boundary", 30, false, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := ArenaPairing{Plies: tc.plies}.ToScoring()
			assert.Equal(t, tc.quickFinish, p.QuickFinish)
			assert.Equal(t, tc.longGame, p.LongGame)
		})
	}
}

func TestArenaPairing_HasPlayer(t *testing.T) {
	t.Parallel()

	row := ArenaPairing{Player1ID: "alice", Player2ID: "bob"}
	assert.True(t, row.HasPlayer("alice"))
	assert.True(t, row.HasPlayer("bob"))
	assert.False(t, row.HasPlayer("carol"))
}

func TestArenaPairing_QuickDrawKeepsBerserkDerivation(t *testing.T) {
	t.Parallel()

	row := ArenaPairing{
		Player1ID:      "alice",
		Player2ID:      "bob",
		QuickDraw:      true,
		Plies:          9,
		Player2Berserk: true,
	}
	p := row.ToScoring()
	assert.True(t, p.NoWinner())
	assert.True(t, p.QuickDraw)
	assert.True(t, p.QuickFinish)

	// The core scores this as a DQ worth nothing regardless of berserk.
	sheet := scoring.Sheet{}.Append("bob", p, true)
	assert.Equal(t, scoring.ResultDQ, sheet.Scores[0].Result)
	assert.Equal(t, 0, sheet.Total())
}
