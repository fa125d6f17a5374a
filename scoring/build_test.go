package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	me  = "alice"
	opp = "bob"
)

func win() Pairing  { return Pairing{Player1ID: me, Player2ID: opp, WinnerID: me} }
func loss() Pairing { return Pairing{Player1ID: me, Player2ID: opp, WinnerID: opp} }
func draw() Pairing { return Pairing{Player1ID: me, Player2ID: opp} }
func drawLong() Pairing {
	p := draw()
	p.LongGame = true
	return p
}
func quickDraw() Pairing {
	p := draw()
	p.QuickDraw = true
	return p
}
func berserkWin() Pairing {
	p := win()
	p.Player1Berserk = true
	return p
}

func flags(s Sheet) []Flag {
	out := make([]Flag, len(s.Scores))
	for i, sc := range s.Scores {
		out[i] = sc.Flag
	}
	return out
}

func TestRebuild_Empty(t *testing.T) {
	t.Parallel()

	s := Rebuild(me, nil, V2, true)
	assert.Empty(t, s.Scores)
	assert.Equal(t, 0, s.Total())
	assert.False(t, s.OnFire())
}

func TestRebuild_WinLookahead(t *testing.T) {
	t.Parallel()

	// A lone win is an unconfirmed streak start.
	s := Rebuild(me, []Pairing{win()}, V2, true)
	assert.Equal(t, []Flag{FlagStreakStarter}, flags(s))

	// Lookahead sees the loss coming, so the win is just a normal win.
	s = Rebuild(me, []Pairing{win(), loss()}, V2, true)
	assert.Equal(t, []Flag{FlagNormal, FlagNormal}, flags(s))
	assert.Equal(t, 2, s.Total())

	// Two wins confirm the streak, the third doubles.
	s = Rebuild(me, []Pairing{win(), win(), win()}, V2, true)
	assert.Equal(t, []Flag{FlagDouble, FlagStreakStarter, FlagStreakStarter}, flags(s))
	assert.Equal(t, 8, s.Total())
	assert.True(t, s.OnFire())
}

func TestRebuild_NotStreakable(t *testing.T) {
	t.Parallel()

	s := Rebuild(me, []Pairing{win(), win(), win()}, V2, false)
	assert.Equal(t, []Flag{FlagNormal, FlagNormal, FlagNormal}, flags(s))
	assert.Equal(t, 6, s.Total())
}

func TestRebuild_DrawSuppression(t *testing.T) {
	t.Parallel()

	// Draw, loss, draw: the second draw follows a draw streak and earns
	// nothing under V2.
	history := []Pairing{draw(), loss(), draw()}

	s := Rebuild(me, history, V2, true)
	require.Len(t, s.Scores, 3)
	assert.Equal(t, FlagNull, s.Scores[0].Flag)
	assert.Equal(t, 1, s.Total())

	// V1 never suppressed repeated draws.
	s = Rebuild(me, history, V1, true)
	assert.Equal(t, FlagNormal, s.Scores[0].Flag)
	assert.Equal(t, 2, s.Total())

	// A long game is exempt even under V2.
	s = Rebuild(me, []Pairing{draw(), loss(), drawLong()}, V2, true)
	assert.Equal(t, FlagNormal, s.Scores[0].Flag)
	assert.Equal(t, 2, s.Total())
}

func TestRebuild_DrawWhileOnFire(t *testing.T) {
	t.Parallel()

	s := Rebuild(me, []Pairing{win(), win(), draw()}, V2, true)
	assert.Equal(t, FlagDouble, s.Scores[0].Flag)
	assert.Equal(t, 2, s.Scores[0].Value())
}

func TestRebuild_QuickDraw(t *testing.T) {
	t.Parallel()

	s := Rebuild(me, []Pairing{draw(), quickDraw()}, V2, true)
	require.Len(t, s.Scores, 2)
	assert.Equal(t, ResultDQ, s.Scores[0].Result)
	assert.Equal(t, FlagNormal, s.Scores[0].Flag)
	assert.Equal(t, 0, s.Scores[0].Value())
}

func TestRebuild_Berserk(t *testing.T) {
	t.Parallel()

	s := Rebuild(me, []Pairing{berserkWin()}, V2, true)
	assert.Equal(t, BerserkValid, s.Scores[0].Berserk)
	assert.Equal(t, 3, s.Scores[0].Value())

	// Too short a game: bonus denied, win still counts.
	p := berserkWin()
	p.QuickFinish = true
	s = Rebuild(me, []Pairing{p}, V2, true)
	assert.Equal(t, BerserkInvalid, s.Scores[0].Berserk)
	assert.Equal(t, 2, s.Scores[0].Value())

	// The opponent's berserk is not ours.
	p = win()
	p.Player2Berserk = true
	s = Rebuild(me, []Pairing{p}, V2, true)
	assert.Equal(t, BerserkNo, s.Scores[0].Berserk)

	// A berserk loss earns nothing beyond the lost time.
	p = loss()
	p.Player1Berserk = true
	s = Rebuild(me, []Pairing{p}, V2, true)
	assert.Equal(t, BerserkValid, s.Scores[0].Berserk)
	assert.Equal(t, 0, s.Scores[0].Value())
}

func TestAppend_StreakStarterCorrection(t *testing.T) {
	t.Parallel()

	var s Sheet
	s = s.Append(me, win(), true)
	require.Equal(t, []Flag{FlagStreakStarter}, flags(s))

	afterWin := s
	s = s.Append(me, loss(), true)
	require.Len(t, s.Scores, 2)
	assert.Equal(t, ResultLoss, s.Scores[0].Result)
	assert.Equal(t, 0, s.Scores[0].Value())
	// The speculative streak start failed and is demoted in place.
	assert.Equal(t, FlagNormal, s.Scores[1].Flag)

	// The previously returned sheet is untouched.
	assert.Equal(t, []Flag{FlagStreakStarter}, flags(afterWin))
}

func TestAppend_DrawAlsoBreaksStreakStart(t *testing.T) {
	t.Parallel()

	var s Sheet
	s = s.Append(me, win(), true)
	s = s.Append(me, drawLong(), true)
	assert.Equal(t, FlagNormal, s.Scores[1].Flag)
}

func TestAppend_DoubleOnFire(t *testing.T) {
	t.Parallel()

	var s Sheet
	s = s.Append(me, win(), true)
	s = s.Append(me, win(), true)
	require.True(t, s.OnFire())

	s = s.Append(me, win(), true)
	assert.Equal(t, FlagDouble, s.Scores[0].Flag)
	assert.Equal(t, 4, s.Scores[0].Value())

	s = s.Append(me, berserkWin(), true)
	assert.Equal(t, FlagDouble, s.Scores[0].Flag)
	assert.Equal(t, 5, s.Scores[0].Value())
}

func TestAppend_NotStreakable(t *testing.T) {
	t.Parallel()

	var s Sheet
	for i := 0; i < 3; i++ {
		s = s.Append(me, win(), false)
	}
	assert.Equal(t, []Flag{FlagNormal, FlagNormal, FlagNormal}, flags(s))
	assert.Equal(t, 6, s.Total())
}

// Rebuilding a history must land on the same scores as appending its games
// one at a time, for histories scored under V2 rules. Flags may differ in
// exactly one way: the second win of a streak cut short keeps its
// mid-formation StreakStarter marker under rebuild but is demoted to
// Normal by the incremental correction. Both flags are worth the same, so
// every value and total still matches; see the dedicated divergence tests.
func TestRebuildAppendEquivalence(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	kinds := []func() Pairing{win, loss, draw, drawLong, quickDraw, berserkWin}

	for _, streakable := range []bool{true, false} {
		for trial := 0; trial < 300; trial++ {
			n := rng.Intn(13)
			history := make([]Pairing, n)
			for i := range history {
				history[i] = kinds[rng.Intn(len(kinds))]()
			}

			rebuilt := Rebuild(me, history, V2, streakable)

			var appended Sheet
			for _, p := range history {
				appended = appended.Append(me, p, streakable)
			}

			require.Len(t, appended.Scores, len(rebuilt.Scores))
			for i := range rebuilt.Scores {
				r, a := rebuilt.Scores[i], appended.Scores[i]
				require.Equal(t, r.Result, a.Result, "history=%+v i=%d", history, i)
				require.Equal(t, r.Berserk, a.Berserk, "history=%+v i=%d", history, i)
				require.Equal(t, r.Value(), a.Value(), "history=%+v i=%d", history, i)
				if r.Flag != a.Flag {
					require.Equal(t, FlagStreakStarter, r.Flag, "history=%+v i=%d", history, i)
					require.Equal(t, FlagNormal, a.Flag, "history=%+v i=%d", history, i)
				}
			}
			require.Equal(t, rebuilt.Total(), appended.Total(),
				"streakable=%v history=%+v", streakable, history)
			require.Equal(t, rebuilt.OnFire(), appended.OnFire())
		}
	}
}

// The one flag-level divergence between the two modes: when exactly two
// wins are followed by a non-win, rebuild keeps the second win's carried
// StreakStarter marker while append demotes it. Same value either way.
func TestRebuildAppendDivergence_CutStreakFlag(t *testing.T) {
	t.Parallel()

	history := []Pairing{win(), win(), loss()}

	rebuilt := Rebuild(me, history, V2, true)
	assert.Equal(t, []Flag{FlagNormal, FlagStreakStarter, FlagStreakStarter}, flags(rebuilt))

	var appended Sheet
	for _, p := range history {
		appended = appended.Append(me, p, true)
	}
	assert.Equal(t, []Flag{FlagNormal, FlagNormal, FlagStreakStarter}, flags(appended))

	assert.Equal(t, rebuilt.Total(), appended.Total())
}

// Known divergence: Append never consults the version, so a V1 history
// containing a repeated draw scores lower through the incremental path.
// Kept as observed pending a ruling from the rules owners.
func TestRebuildAppendDivergence_V1Draws(t *testing.T) {
	t.Parallel()

	history := []Pairing{draw(), draw()}

	rebuilt := Rebuild(me, history, V1, true)
	assert.Equal(t, 2, rebuilt.Total())

	var appended Sheet
	for _, p := range history {
		appended = appended.Append(me, p, true)
	}
	assert.Equal(t, 1, appended.Total())
	assert.Equal(t, FlagNull, appended.Scores[0].Flag)
}
