package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"arena-score-system/models"
	"arena-score-system/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidReport        = errors.New("invalid result report")
	ErrTournamentNotRunning = errors.New("tournament is not running")
	ErrDuplicateGame        = errors.New("game already reported")
	ErrUnknownPlayer        = errors.New("player not joined to tournament")
)

// SheetService maintains player sheets: incremental appends as the game
// engine reports finished games, full rebuilds for repair, and the
// standings read model consumed by the platform's ranking service.
type SheetService struct {
	DB *gorm.DB

	// Appends must hit a sheet strictly in game order, one at a time,
	// so every sheet update runs under its player's lock.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSheetService(db *gorm.DB) *SheetService {
	return &SheetService{DB: db, locks: make(map[string]*sync.Mutex)}
}

func (s *SheetService) playerLock(tournamentID, userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tournamentID + "/" + userID
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// ResultReport is a finished game as reported by the game engine, either
// through the HTTP intake or the catch-up worker.
type ResultReport struct {
	GameID         string    `json:"game_id"`
	Player1ID      string    `json:"player1_id"`
	Player2ID      string    `json:"player2_id"`
	WinnerID       string    `json:"winner_id"`
	Player1Berserk bool      `json:"player1_berserk"`
	Player2Berserk bool      `json:"player2_berserk"`
	QuickDraw      bool      `json:"quick_draw"`
	Plies          int       `json:"plies"`
	FinishedAt     time.Time `json:"finished_at"`
}

func (r ResultReport) validate() error {
	switch {
	case r.GameID == "":
		return fmt.Errorf("%w: game_id is required", ErrInvalidReport)
	case r.Player1ID == "" || r.Player2ID == "" || r.Player1ID == r.Player2ID:
		return fmt.Errorf("%w: two distinct player ids are required", ErrInvalidReport)
	case r.WinnerID != "" && r.WinnerID != r.Player1ID && r.WinnerID != r.Player2ID:
		return fmt.Errorf("%w: winner_id must be one of the players", ErrInvalidReport)
	case r.QuickDraw && r.WinnerID != "":
		return fmt.Errorf("%w: a quick draw cannot have a winner", ErrInvalidReport)
	}
	return nil
}

// AppliedResult reports the sheet state of both players after a game was
// scored.
type AppliedResult struct {
	PairingID string         `json:"pairing_id"`
	Players   []PlayerTotals `json:"players"`
}

type PlayerTotals struct {
	ExternalUserID string `json:"external_user_id"`
	Total          int64  `json:"total"`
	Fire           bool   `json:"fire"`
	GamesPlayed    int    `json:"games_played"`
}

// ApplyResult records the pairing and appends it to both players' sheets.
// Reports for a player must arrive in chronological game order; the
// per-player locks serialize concurrent reports, they do not reorder them.
func (s *SheetService) ApplyResult(tournamentID string, report ResultReport) (*AppliedResult, error) {
	if err := report.validate(); err != nil {
		return nil, err
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentRunning {
		return nil, ErrTournamentNotRunning
	}

	// Lock both players in a fixed order so two games sharing a player
	// cannot deadlock.
	first, second := report.Player1ID, report.Player2ID
	if second < first {
		first, second = second, first
	}
	firstLock := s.playerLock(tournamentID, first)
	secondLock := s.playerLock(tournamentID, second)
	firstLock.Lock()
	defer firstLock.Unlock()
	secondLock.Lock()
	defer secondLock.Unlock()

	pairing := models.ArenaPairing{
		ID:             uuid.NewString(),
		GameID:         report.GameID,
		TournamentID:   tournamentID,
		Player1ID:      report.Player1ID,
		Player2ID:      report.Player2ID,
		WinnerID:       report.WinnerID,
		Player1Berserk: report.Player1Berserk,
		Player2Berserk: report.Player2Berserk,
		QuickDraw:      report.QuickDraw,
		Plies:          report.Plies,
		FinishedAt:     report.FinishedAt,
	}

	applied := &AppliedResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ArenaPairing{}).
			Where("game_id = ?", report.GameID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateGame
		}
		if err := tx.Create(&pairing).Error; err != nil {
			return err
		}

		for _, userID := range []string{report.Player1ID, report.Player2ID} {
			totals, err := s.appendToSheet(tx, tournament, userID, pairing)
			if err != nil {
				return err
			}
			applied.Players = append(applied.Players, *totals)
		}
		applied.PairingID = pairing.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (s *SheetService) appendToSheet(tx *gorm.DB, tournament models.Tournament, userID string, pairing models.ArenaPairing) (*PlayerTotals, error) {
	var player models.ArenaPlayer
	err := tx.First(&player,
		"tournament_id = ? AND external_user_id = ?", tournament.ID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, userID)
	}
	if err != nil {
		return nil, err
	}

	sheet, err := player.Sheet()
	if err != nil {
		return nil, fmt.Errorf("corrupt sheet for %s: %w", userID, err)
	}

	sheet = sheet.Append(userID, pairing.ToScoring(), tournament.Streakable)
	if err := player.SetSheet(sheet); err != nil {
		return nil, err
	}
	if err := tx.Save(&player).Error; err != nil {
		return nil, err
	}

	return &PlayerTotals{
		ExternalUserID: userID,
		Total:          player.Total,
		Fire:           player.Fire,
		GamesPlayed:    player.GamesPlayed,
	}, nil
}

// RebuildPlayer recomputes a player's sheet from the stored pairing
// history and overwrites the stored copy. Used by the admin recompute
// endpoint and the consistency sweep.
func (s *SheetService) RebuildPlayer(tournament models.Tournament, userID string) (*models.ArenaPlayer, error) {
	lock := s.playerLock(tournament.ID, userID)
	lock.Lock()
	defer lock.Unlock()

	var player models.ArenaPlayer
	err := s.DB.First(&player,
		"tournament_id = ? AND external_user_id = ?", tournament.ID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, userID)
	}
	if err != nil {
		return nil, err
	}

	var rows []models.ArenaPairing
	if err := s.DB.
		Where("tournament_id = ? AND (player1_id = ? OR player2_id = ?)",
			tournament.ID, userID, userID).
		Order("finished_at ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	history := make([]scoring.Pairing, len(rows))
	for i, row := range rows {
		history[i] = row.ToScoring()
	}

	sheet := scoring.Rebuild(userID, history, tournament.Version(), tournament.Streakable)
	if err := player.SetSheet(sheet); err != nil {
		return nil, err
	}
	if err := s.DB.Save(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// VerifySheets rebuilds every sheet of the given tournament from pairing
// history and repairs stored sheets that diverged. Returns the number of
// repaired sheets.
func (s *SheetService) VerifySheets(tournament models.Tournament) (int, error) {
	var players []models.ArenaPlayer
	if err := s.DB.Where("tournament_id = ?", tournament.ID).Find(&players).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for _, player := range players {
		stored := player.Total
		fixed, err := s.RebuildPlayer(tournament, player.ExternalUserID)
		if err != nil {
			return repaired, err
		}
		if fixed.Total != stored {
			log.Printf("⚠️ [SHEETS] Repaired sheet for %s in %s: total %d → %d",
				player.ExternalUserID, tournament.Slug, stored, fixed.Total)
			repaired++
		}
	}
	return repaired, nil
}

// ReportResult handles POST /s/tournaments/:id/results from the game
// engine.
func (s *SheetService) ReportResult(c *fiber.Ctx) error {
	var report ResultReport
	if err := c.BodyParser(&report); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if report.FinishedAt.IsZero() {
		report.FinishedAt = time.Now().UTC()
	}

	applied, err := s.ApplyResult(c.Params("id"), report)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	case errors.Is(err, ErrTournamentNotRunning):
		return c.Status(409).JSON(fiber.Map{"error": "tournament is not running"})
	case errors.Is(err, ErrDuplicateGame):
		return c.Status(409).JSON(fiber.Map{"error": "game already reported"})
	case errors.Is(err, ErrUnknownPlayer):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidReport):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ [SHEETS] Failed to apply result %s: %v", report.GameID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to apply result"})
	}

	return c.Status(200).JSON(applied)
}

// sheetEntry is one decoded game in a sheet response, most recent first.
type sheetEntry struct {
	Result  scoring.Result  `json:"result"`
	Flag    scoring.Flag    `json:"flag"`
	Berserk scoring.Berserk `json:"berserk"`
	Value   int             `json:"value"`
	Encoded int             `json:"encoded"`
}

// GetPlayerSheet handles GET /s/tournaments/:id/players/:user_id/sheet.
func (s *SheetService) GetPlayerSheet(c *fiber.Ctx) error {
	var player models.ArenaPlayer
	err := s.DB.First(&player,
		"tournament_id = ? AND external_user_id = ?", c.Params("id"), c.Params("user_id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	sheet, err := player.Sheet()
	if err != nil {
		log.Printf("❌ [SHEETS] Corrupt stored sheet for %s: %v", player.ExternalUserID, err)
		return c.Status(500).JSON(fiber.Map{"error": "corrupt stored sheet"})
	}

	entries := make([]sheetEntry, len(sheet.Scores))
	for i, sc := range sheet.Scores {
		entries[i] = sheetEntry{
			Result:  sc.Result,
			Flag:    sc.Flag,
			Berserk: sc.Berserk,
			Value:   sc.Value(),
			Encoded: sc.Encoded(),
		}
	}

	return c.JSON(fiber.Map{
		"external_user_id": player.ExternalUserID,
		"tournament_id":    player.TournamentID,
		"total":            sheet.Total(),
		"fire":             sheet.OnFire(),
		"games_played":     len(sheet.Scores),
		"scores":           entries,
	})
}

// RecomputeSheet handles POST /s/admin/tournaments/:id/players/:user_id/recompute.
func (s *SheetService) RecomputeSheet(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var before int64
	if err := s.DB.Model(&models.ArenaPlayer{}).
		Where("tournament_id = ? AND external_user_id = ?", tournament.ID, c.Params("user_id")).
		Select("total").Scan(&before).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	player, err := s.RebuildPlayer(tournament, c.Params("user_id"))
	if err != nil {
		if errors.Is(err, ErrUnknownPlayer) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		log.Printf("❌ [SHEETS] Recompute failed for %s: %v", c.Params("user_id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "recompute failed"})
	}

	log.Printf("🔁 [SHEETS] Recomputed sheet for %s in %s: total %d → %d",
		player.ExternalUserID, tournament.Slug, before, player.Total)

	return c.JSON(fiber.Map{
		"external_user_id": player.ExternalUserID,
		"previous_total":   before,
		"total":            player.Total,
		"fire":             player.Fire,
		"games_played":     player.GamesPlayed,
	})
}

// GetStandings handles GET /tournaments/:id/standings — the read model
// the platform's ranking service consumes. Ties keep join order.
func (s *SheetService) GetStandings(c *fiber.Ctx) error {
	var players []models.ArenaPlayer
	if err := s.DB.
		Where("tournament_id = ? AND kicked = false", c.Params("id")).
		Order("total DESC, games_played DESC, joined_at ASC").
		Limit(500).
		Find(&players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	standings := make([]fiber.Map, len(players))
	for i, p := range players {
		standings[i] = fiber.Map{
			"rank":             i + 1,
			"external_user_id": p.ExternalUserID,
			"user_name":        p.UserName,
			"total":            p.Total,
			"fire":             p.Fire,
			"games_played":     p.GamesPlayed,
		}
	}

	return c.JSON(fiber.Map{
		"tournament_id": c.Params("id"),
		"count":         len(standings),
		"standings":     standings,
	})
}
