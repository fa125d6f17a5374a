// Package scoring implements the arena sheet: per-player running scores where the
// value of each game depends on recent history (win streaks, draw-streak
// suppression, berserk bonuses).
package scoring

// Result classifies the outcome of one arena game for one player.
type Result int

const (
	ResultWin Result = iota
	ResultDraw
	ResultLoss
	ResultDQ // drawn by an early claim, scored as a disqualification
)

// Flag modifies the point value of a win or draw. Never applied to a loss
// or a DQ.
type Flag int

const (
	FlagNull          Flag = iota // this draw earns nothing (anti-farming)
	FlagNormal                    // baseline
	FlagStreakStarter             // speculative first win of a 2-win streak
	FlagDouble                    // streak continuation, doubled value
)

// Berserk records whether the player took the berserk option and whether
// the game lasted long enough for the bonus to count.
type Berserk int

const (
	BerserkNo      Berserk = iota
	BerserkValid           // berserked, bonus earned on a win
	BerserkInvalid         // berserked but the game ended too fast, bonus denied
)

// Score is the immutable record of one game on a player's sheet.
type Score struct {
	Result  Result  `json:"result"`
	Flag    Flag    `json:"flag"`
	Berserk Berserk `json:"berserk"`
}

// Value returns the points the game is worth.
func (s Score) Value() int {
	switch s.Result {
	case ResultWin:
		v := 2
		if s.Flag == FlagDouble {
			v = 4
		}
		if s.Berserk == BerserkValid {
			v++
		}
		return v
	case ResultDraw:
		switch s.Flag {
		case FlagDouble:
			return 2
		case FlagNull:
			return 0
		default:
			return 1
		}
	default:
		return 0
	}
}

// IsWin reports the definite outcome of the game. known is false for draws
// and disqualifications, where neither side won outright.
func (s Score) IsWin() (win, known bool) {
	switch s.Result {
	case ResultWin:
		return true, true
	case ResultLoss:
		return false, true
	default:
		return false, false
	}
}

func (s Score) IsDraw() bool { return s.Result == ResultDraw }

// Encoded packs the score into the integer form used by stored sheets.
// The layout is a storage contract and must not change: bits 0-1 flag,
// bits 2-3 berserk, bits 4-5 result.
func (s Score) Encoded() int {
	return int(s.Flag) | int(s.Berserk)<<2 | int(s.Result)<<4
}

// DecodeScore is the inverse of Encoded.
func DecodeScore(code int) Score {
	return Score{
		Flag:    Flag(code & 0x3),
		Berserk: Berserk(code >> 2 & 0x3),
		Result:  Result(code >> 4 & 0x3),
	}
}
