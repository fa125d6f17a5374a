package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() ResultReport {
	return ResultReport{
		GameID:     "game-1",
		Player1ID:  "alice",
		Player2ID:  "bob",
		WinnerID:   "alice",
		Plies:      40,
		FinishedAt: time.Now().UTC(),
	}
}

func TestResultReport_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validReport().validate())

	cases := []struct {
		name   string
		mutate func(*ResultReport)
	}{
		{"missing game id", func(r *ResultReport) { r.GameID = "" }},
		{"missing player", func(r *ResultReport) { r.Player2ID = "" }},
		{"same player twice", func(r *ResultReport) { r.Player2ID = r.Player1ID }},
		{"winner not playing", func(r *ResultReport) { r.WinnerID = "carol" }},
		{"quick draw with winner", func(r *ResultReport) { r.QuickDraw = true }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			report := validReport()
			tc.mutate(&report)
			err := report.validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidReport)
		})
	}

	drawn := validReport()
	drawn.WinnerID = ""
	assert.NoError(t, drawn.validate())
}

func TestSheetService_PlayerLock(t *testing.T) {
	t.Parallel()

	s := NewSheetService(nil)

	a := s.playerLock("t1", "alice")
	assert.Same(t, a, s.playerLock("t1", "alice"))
	assert.NotSame(t, a, s.playerLock("t1", "bob"))
	assert.NotSame(t, a, s.playerLock("t2", "alice"))
}
