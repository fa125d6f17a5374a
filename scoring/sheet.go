package scoring

// Sheet is one player's scoring record for a tournament, most recent game
// first. Rebuild and Append return fresh Sheets; a Sheet already handed
// out is never mutated.
type Sheet struct {
	Scores []Score `json:"scores"`
}

// Total is the sum of all score values on the sheet. Never negative.
func (s Sheet) Total() int {
	total := 0
	for _, sc := range s.Scores {
		total += sc.Value()
	}
	return total
}

// OnFire reports whether the player's two most recent games were both wins.
func (s Sheet) OnFire() bool { return isOnFire(s.Scores) }

func isOnFire(scores []Score) bool {
	return len(scores) >= 2 &&
		scores[0].Result == ResultWin &&
		scores[1].Result == ResultWin
}

// isDrawStreak reports whether the run of games since the player's last
// win consists entirely of losses followed by at least one draw or DQ.
// Scans from the most recent game backward: an undetermined outcome
// (draw/DQ) confirms the streak, a win breaks it, a loss keeps scanning.
func isDrawStreak(scores []Score) bool {
	for _, sc := range scores {
		win, known := sc.IsWin()
		if !known {
			return true
		}
		if win {
			return false
		}
	}
	return false
}
