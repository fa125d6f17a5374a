package models

import (
	"testing"

	"arena-score-system/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaPlayer_SheetRoundTrip(t *testing.T) {
	t.Parallel()

	sheet := scoring.Sheet{Scores: []scoring.Score{
		{Result: scoring.ResultWin, Flag: scoring.FlagDouble, Berserk: scoring.BerserkValid},
		{Result: scoring.ResultWin, Flag: scoring.FlagStreakStarter},
		{Result: scoring.ResultDraw, Flag: scoring.FlagNull},
		{Result: scoring.ResultLoss, Flag: scoring.FlagNormal},
	}}

	var player ArenaPlayer
	require.NoError(t, player.SetSheet(sheet))

	assert.Equal(t, int64(sheet.Total()), player.Total)
	assert.Equal(t, sheet.OnFire(), player.Fire)
	assert.Equal(t, 4, player.GamesPlayed)

	decoded, err := player.Sheet()
	require.NoError(t, err)
	assert.Equal(t, sheet, decoded)
}

func TestArenaPlayer_EmptySheet(t *testing.T) {
	t.Parallel()

	player := ArenaPlayer{ScoresJSON: "[]"}
	sheet, err := player.Sheet()
	require.NoError(t, err)
	assert.Empty(t, sheet.Scores)
	assert.Equal(t, 0, sheet.Total())

	// A brand-new row with no stored value decodes the same way.
	sheet, err = ArenaPlayer{}.Sheet()
	require.NoError(t, err)
	assert.Empty(t, sheet.Scores)
}

func TestArenaPlayer_CorruptSheet(t *testing.T) {
	t.Parallel()

	player := ArenaPlayer{ScoresJSON: "{not json"}
	_, err := player.Sheet()
	assert.Error(t, err)
}
