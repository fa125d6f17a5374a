package models

import (
	"time"

	"arena-score-system/scoring"
)

// Ply thresholds used to derive the scoring flags from raw game facts.
// The scoring core only ever sees the derived booleans.
const (
	// Below this many plies a berserk win earns no bonus.
	BerserkBonusPlies = 18
	// Draws at or past this many plies are exempt from draw suppression.
	LongGamePlies = 30
)

// ArenaPairing is one finished game between two tournament players, as
// reported by the game engine.
type ArenaPairing struct {
	ID           string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	GameID       string `json:"game_id" gorm:"uniqueIndex;not null"` // engine's game id, dedupes reports
	TournamentID string `json:"tournament_id" gorm:"index;not null"`

	Player1ID string `json:"player1_id" gorm:"not null"`
	Player2ID string `json:"player2_id" gorm:"not null"`
	WinnerID  string `json:"winner_id,omitempty"` // empty = no winner

	Player1Berserk bool `json:"player1_berserk" gorm:"default:false"`
	Player2Berserk bool `json:"player2_berserk" gorm:"default:false"`

	// QuickDraw marks a draw reached through an early claim.
	QuickDraw bool `json:"quick_draw" gorm:"default:false"`
	Plies     int  `json:"plies" gorm:"default:0"`

	FinishedAt time.Time `json:"finished_at" gorm:"index;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// HasPlayer reports whether the given user played this game.
func (p ArenaPairing) HasPlayer(userID string) bool {
	return p.Player1ID == userID || p.Player2ID == userID
}

// ToScoring converts the stored row into the view the scoring core
// consumes, deriving the time-based flags from the ply count.
func (p ArenaPairing) ToScoring() scoring.Pairing {
	return scoring.Pairing{
		Player1ID:      p.Player1ID,
		Player2ID:      p.Player2ID,
		WinnerID:       p.WinnerID,
		Player1Berserk: p.Player1Berserk,
		Player2Berserk: p.Player2Berserk,
		QuickFinish:    p.Plies < BerserkBonusPlies,
		QuickDraw:      p.QuickDraw,
		LongGame:       p.Plies >= LongGamePlies,
	}
}
