package scoring

// Pairing is the view of one finished game the scoring core consumes. The
// service layer fills it from a stored game row; the core never sees raw
// game data such as move counts.
type Pairing struct {
	Player1ID string
	Player2ID string
	WinnerID  string // empty when no side won (draw or early claim)

	Player1Berserk bool
	Player2Berserk bool

	QuickFinish bool // ended implausibly fast, berserk bonus denied
	QuickDraw   bool // drawn by an early claim, scored as a DQ
	LongGame    bool // ran long enough to be exempt from draw suppression
}

// WonBy reports whether the given player won the game.
func (p Pairing) WonBy(userID string) bool {
	return p.WinnerID != "" && p.WinnerID == userID
}

// NoWinner reports whether the game ended without a winner.
func (p Pairing) NoWinner() bool { return p.WinnerID == "" }

// BerserkOf reports whether the given player took the berserk option.
func (p Pairing) BerserkOf(userID string) bool {
	switch userID {
	case p.Player1ID:
		return p.Player1Berserk
	case p.Player2ID:
		return p.Player2Berserk
	}
	return false
}

func (p Pairing) berserkStatus(userID string) Berserk {
	if !p.BerserkOf(userID) {
		return BerserkNo
	}
	if p.QuickFinish {
		return BerserkInvalid
	}
	return BerserkValid
}

// Rebuild computes a player's sheet from scratch given the player's full
// pairing history in chronological order, oldest game first. The win flag
// uses one game of lookahead: a win is marked as a streak starter only
// when the next game is also a win (or there is no next game yet).
func Rebuild(userID string, history []Pairing, version Version, streakable bool) Sheet {
	scores := make([]Score, len(history))
	for i, p := range history {
		// The sheet is most recent first, so game i lands at the slot
		// mirroring its position and everything after it is the sheet
		// so far.
		at := len(scores) - 1 - i
		prior := scores[at+1:]

		var next *Pairing
		if i+1 < len(history) {
			next = &history[i+1]
		}

		sc := Score{Berserk: p.berserkStatus(userID)}
		switch {
		case p.NoWinner() && p.QuickDraw:
			sc.Result, sc.Flag = ResultDQ, FlagNormal
		case p.NoWinner():
			sc.Result = ResultDraw
			switch {
			case streakable && isOnFire(prior):
				sc.Flag = FlagDouble
			case version != V1 && !p.LongGame && isDrawStreak(prior):
				sc.Flag = FlagNull
			default:
				sc.Flag = FlagNormal
			}
		case p.WonBy(userID):
			sc.Result = ResultWin
			switch {
			case !streakable:
				sc.Flag = FlagNormal
			case isOnFire(prior):
				sc.Flag = FlagDouble
			case len(prior) > 0 && prior[0].Flag == FlagStreakStarter:
				// A streak is mid-formation, carry the marker forward.
				sc.Flag = FlagStreakStarter
			case next == nil || next.WonBy(userID):
				sc.Flag = FlagStreakStarter
			default:
				sc.Flag = FlagNormal
			}
		default:
			sc.Result, sc.Flag = ResultLoss, FlagNormal
		}
		scores[at] = sc
	}
	return Sheet{Scores: scores}
}

// Append scores one newly finished game against the sheet and returns the
// updated sheet. Having no lookahead, it optimistically marks any
// non-doubled win as a streak starter and relies on the next Append to
// demote the marker if the bet fails.
//
// Pairings must be applied in chronological order, one at a time, each
// call observing the sheet the previous call returned. Callers serialize
// updates per player.
func (s Sheet) Append(userID string, p Pairing, streakable bool) Sheet {
	sc := Score{Berserk: p.berserkStatus(userID)}
	switch {
	case p.NoWinner() && p.QuickDraw:
		sc.Result, sc.Flag = ResultDQ, FlagNormal
	case p.NoWinner():
		sc.Result = ResultDraw
		switch {
		case streakable && isOnFire(s.Scores):
			sc.Flag = FlagDouble
		case !p.LongGame && isDrawStreak(s.Scores):
			// Unlike Rebuild, no version gate here: the incremental path
			// has only ever run under V2 rules.
			sc.Flag = FlagNull
		default:
			sc.Flag = FlagNormal
		}
	case p.WonBy(userID):
		sc.Result = ResultWin
		switch {
		case !streakable:
			sc.Flag = FlagNormal
		case isOnFire(s.Scores):
			sc.Flag = FlagDouble
		default:
			sc.Flag = FlagStreakStarter
		}
	default:
		sc.Result, sc.Flag = ResultLoss, FlagNormal
	}

	scores := make([]Score, len(s.Scores)+1)
	copy(scores[1:], s.Scores)
	// The previous game's streak-starter bet fails unless this game
	// confirmed it with another win.
	if len(s.Scores) > 0 && scores[1].Flag == FlagStreakStarter && !p.WonBy(userID) {
		scores[1].Flag = FlagNormal
	}
	scores[0] = sc
	return Sheet{Scores: scores}
}
