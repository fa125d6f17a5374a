package models

import (
	"encoding/json"
	"time"

	"arena-score-system/scoring"
)

// ArenaPlayer is one user's participation in a tournament, carrying the
// stored form of the player's sheet. ScoresJSON is a JSON array of packed
// score integers, most recent game first; the packed layout is the storage
// contract and must survive schema changes. Total and Fire are
// denormalized from the sheet so standings queries never decode it.
type ArenaPlayer struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TournamentID   string `json:"tournament_id" gorm:"index:idx_arena_player,unique;not null"`
	ExternalUserID string `json:"external_user_id" gorm:"index:idx_arena_player,unique;not null"`
	UserName       string `json:"user_name"`

	ScoresJSON  string `json:"-" gorm:"type:text;default:'[]'"`
	Total       int64  `json:"total" gorm:"default:0;index"`
	Fire        bool   `json:"fire" gorm:"default:false"`
	GamesPlayed int    `json:"games_played" gorm:"default:0"`

	Kicked bool `json:"kicked" gorm:"default:false"`

	JoinedAt  time.Time `json:"joined_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Sheet decodes the stored sheet.
func (p ArenaPlayer) Sheet() (scoring.Sheet, error) {
	var codes []int
	if p.ScoresJSON != "" {
		if err := json.Unmarshal([]byte(p.ScoresJSON), &codes); err != nil {
			return scoring.Sheet{}, err
		}
	}
	scores := make([]scoring.Score, len(codes))
	for i, code := range codes {
		scores[i] = scoring.DecodeScore(code)
	}
	return scoring.Sheet{Scores: scores}, nil
}

// SetSheet stores the sheet back onto the row, refreshing the
// denormalized columns.
func (p *ArenaPlayer) SetSheet(sheet scoring.Sheet) error {
	codes := make([]int, len(sheet.Scores))
	for i, sc := range sheet.Scores {
		codes[i] = sc.Encoded()
	}
	data, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	p.ScoresJSON = string(data)
	p.Total = int64(sheet.Total())
	p.Fire = sheet.OnFire()
	p.GamesPlayed = len(sheet.Scores)
	return nil
}
