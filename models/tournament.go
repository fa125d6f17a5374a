package models

import (
	"time"

	"arena-score-system/scoring"
)

const (
	TournamentDraft     = "draft"
	TournamentPublished = "published"
	TournamentRunning   = "running"
	TournamentFinished  = "finished"
)

// Tournament represents one arena tournament. Players join, get paired
// continuously by the game engine, and accumulate points on their sheet.
type Tournament struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	Status      string `json:"status" gorm:"type:varchar(16);default:'draft'"` // draft → published → running → finished

	// Streakable enables win-streak doubling for this tournament.
	Streakable bool `json:"streakable" gorm:"default:true"`
	// SheetVersion is the scoring rule generation, pinned from StartTime
	// when the tournament is created.
	SheetVersion int `json:"sheet_version" gorm:"default:2"`

	StartTime time.Time `json:"start_time" gorm:"not null;index"`
	EndTime   time.Time `json:"end_time" gorm:"not null;index"`

	// ArchiveURL points at the exported final sheets once finished.
	ArchiveURL string `json:"archive_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Players []ArenaPlayer `json:"players,omitempty" gorm:"foreignKey:TournamentID"`
}

// Version returns the pinned rule generation used for sheet rebuilds.
func (t Tournament) Version() scoring.Version {
	if t.SheetVersion == 1 {
		return scoring.V1
	}
	return scoring.V2
}
