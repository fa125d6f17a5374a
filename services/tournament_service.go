package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"arena-score-system/models"
	"arena-score-system/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// CreateTournament handles POST /s/tournaments.
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	type createRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Streakable  *bool  `json:"streakable"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if strings.TrimSpace(req.Name) == "" || req.StartTime == "" || req.EndTime == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name, start_time, and end_time are required"})
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid end_time (use RFC3339)"})
	}
	if !endTime.After(startTime) {
		return c.Status(400).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	streakable := true
	if req.Streakable != nil {
		streakable = *req.Streakable
	}

	name := titleCaser.String(strings.TrimSpace(req.Name))
	tournament := models.Tournament{
		Slug:         slug.Make(name),
		Name:         name,
		Description:  req.Description,
		Status:       models.TournamentDraft,
		Streakable:   streakable,
		SheetVersion: int(scoring.VersionOf(startTime)),
		StartTime:    startTime.UTC(),
		EndTime:      endTime.UTC(),
	}

	if err := s.DB.Create(&tournament).Error; err != nil {
		log.Printf("❌ [TOURNAMENT] Create failed for %q: %v", name, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create tournament"})
	}

	log.Printf("✅ [TOURNAMENT] Created %s (%s), streakable=%t, version=V%d",
		tournament.Name, tournament.Slug, tournament.Streakable, tournament.SheetVersion)
	return c.Status(201).JSON(tournament)
}

// GetAllTournaments handles GET /s/tournaments.
func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	query := s.DB.Order("start_time DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tournaments []models.Tournament
	if err := query.Find(&tournaments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{"tournaments": tournaments, "count": len(tournaments)})
}

// findTournament accepts either a row id or a slug.
func (s *TournamentService) findTournament(idOrSlug string) (*models.Tournament, error) {
	var tournament models.Tournament
	err := s.DB.First(&tournament, "id = ?", idOrSlug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.First(&tournament, "slug = ?", idOrSlug).Error
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetTournamentByID handles GET /tournaments/:id (id or slug).
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	tournament, err := s.findTournament(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var playerCount int64
	s.DB.Model(&models.ArenaPlayer{}).
		Where("tournament_id = ? AND kicked = false", tournament.ID).
		Count(&playerCount)

	return c.JSON(fiber.Map{"tournament": tournament, "player_count": playerCount})
}

// allowed status transitions, forward-only lifecycle
var statusTransitions = map[string][]string{
	models.TournamentDraft:     {models.TournamentPublished},
	models.TournamentPublished: {models.TournamentRunning, models.TournamentDraft},
	models.TournamentRunning:   {models.TournamentFinished},
}

// UpdateTournamentStatus handles PATCH /s/tournaments/:id/status.
func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	type statusRequest struct {
		Status string `json:"status"`
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	tournament, err := s.findTournament(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	allowed := false
	for _, next := range statusTransitions[tournament.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid status transition",
			"from":  tournament.Status,
			"to":    req.Status,
		})
	}

	previous := tournament.Status
	if err := s.DB.Model(tournament).Update("status", req.Status).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update status"})
	}

	log.Printf("✅ [TOURNAMENT] %s status: %s → %s", tournament.Slug, previous, req.Status)
	return c.JSON(fiber.Map{"id": tournament.ID, "status": req.Status})
}

// JoinTournament handles POST /s/tournaments/:id/join. Players must join
// before the engine may report results for them.
func (s *TournamentService) JoinTournament(c *fiber.Ctx) error {
	type joinRequest struct {
		UserName string `json:"user_name"`
	}
	var req joinRequest
	_ = c.BodyParser(&req) // body is optional, user_name only

	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	tournament, err := s.findTournament(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if tournament.Status != models.TournamentPublished && tournament.Status != models.TournamentRunning {
		return c.Status(409).JSON(fiber.Map{"error": "tournament is not open for joining"})
	}

	var existing models.ArenaPlayer
	err = s.DB.First(&existing,
		"tournament_id = ? AND external_user_id = ?", tournament.ID, userID).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "already joined", "player": existing})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	player := models.ArenaPlayer{
		ID:             uuid.NewString(),
		TournamentID:   tournament.ID,
		ExternalUserID: userID,
		UserName:       req.UserName,
		ScoresJSON:     "[]",
	}
	if err := s.DB.Create(&player).Error; err != nil {
		log.Printf("❌ [TOURNAMENT] Join failed for %s in %s: %v", userID, tournament.Slug, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to join tournament"})
	}

	return c.Status(201).JSON(player)
}

// KickPlayer handles POST /s/admin/tournaments/:id/players/:user_id/kick.
// A kicked player keeps the sheet but drops out of the standings.
func (s *TournamentService) KickPlayer(c *fiber.Ctx) error {
	result := s.DB.Model(&models.ArenaPlayer{}).
		Where("tournament_id = ? AND external_user_id = ?", c.Params("id"), c.Params("user_id")).
		Update("kicked", true)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	return c.JSON(fiber.Map{"kicked": true})
}
