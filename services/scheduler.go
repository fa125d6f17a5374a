package services

import (
	"encoding/json"
	"log"
	"time"

	"arena-score-system/models"
	"arena-score-system/utils"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartArenaScheduler runs the tournament lifecycle jobs: starting and
// finishing tournaments on the clock, and periodically verifying stored
// sheets against a full rebuild.
func StartArenaScheduler(db *gorm.DB, sheets *SheetService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: advance the tournament lifecycle.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now().UTC()

			var toStart []models.Tournament
			if err := db.Where("status = ? AND start_time <= ?", models.TournamentPublished, now).
				Find(&toStart).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, t := range toStart {
				if err := db.Model(&t).Update("status", models.TournamentRunning).Error; err != nil {
					log.Printf("[Scheduler] Failed to start tournament %s: %v", t.Slug, err)
				} else {
					log.Printf("✅ Tournament started: %s", t.Name)
				}
			}

			var toFinish []models.Tournament
			if err := db.Where("status = ? AND end_time <= ?", models.TournamentRunning, now).
				Find(&toFinish).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, t := range toFinish {
				if err := db.Model(&t).Update("status", models.TournamentFinished).Error; err != nil {
					log.Printf("[Scheduler] Failed to finish tournament %s: %v", t.Slug, err)
					continue
				}
				log.Printf("✅ Tournament finished: %s", t.Name)

				url, err := exportArchive(db, t)
				if err != nil {
					log.Printf("[Scheduler] Archive export failed for %s: %v", t.Slug, err)
					continue
				}
				if err := db.Model(&t).Update("archive_url", url).Error; err != nil {
					log.Printf("[Scheduler] Failed to save archive URL for %s: %v", t.Slug, err)
				} else {
					log.Printf("✅ Archived final sheets for %s → %s", t.Slug, url)
				}
			}
		}),
	)

	// Every 10 minutes: rebuild-and-compare sweep over running
	// tournaments, repairing any sheet that drifted from its pairing
	// history.
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			var running []models.Tournament
			if err := db.Where("status = ?", models.TournamentRunning).
				Find(&running).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, t := range running {
				repaired, err := sheets.VerifySheets(t)
				if err != nil {
					log.Printf("[Scheduler] Sheet sweep failed for %s: %v", t.Slug, err)
					continue
				}
				if repaired > 0 {
					log.Printf("⚠️ [Scheduler] Sheet sweep repaired %d sheets in %s", repaired, t.Slug)
				}
			}
		}),
	)
}

// archivedSheet is one player's final record in the exported archive.
type archivedSheet struct {
	ExternalUserID string `json:"external_user_id"`
	UserName       string `json:"user_name"`
	Rank           int    `json:"rank"`
	Total          int64  `json:"total"`
	GamesPlayed    int    `json:"games_played"`
	Scores         []int  `json:"scores"` // packed, most recent first
	Kicked         bool   `json:"kicked,omitempty"`
}

func exportArchive(db *gorm.DB, t models.Tournament) (string, error) {
	var players []models.ArenaPlayer
	if err := db.Where("tournament_id = ?", t.ID).
		Order("kicked ASC, total DESC, games_played DESC, joined_at ASC").
		Find(&players).Error; err != nil {
		return "", err
	}

	archived := make([]archivedSheet, len(players))
	for i, p := range players {
		sheet, err := p.Sheet()
		if err != nil {
			return "", err
		}
		codes := make([]int, len(sheet.Scores))
		for j, sc := range sheet.Scores {
			codes[j] = sc.Encoded()
		}
		archived[i] = archivedSheet{
			ExternalUserID: p.ExternalUserID,
			UserName:       p.UserName,
			Rank:           i + 1,
			Total:          p.Total,
			GamesPlayed:    p.GamesPlayed,
			Scores:         codes,
			Kicked:         p.Kicked,
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"tournament_id": t.ID,
		"slug":          t.Slug,
		"name":          t.Name,
		"streakable":    t.Streakable,
		"sheet_version": t.SheetVersion,
		"start_time":    t.StartTime,
		"end_time":      t.EndTime,
		"players":       archived,
	})
	if err != nil {
		return "", err
	}

	return utils.UploadSheetArchive("archives/"+t.Slug+".json", payload)
}
