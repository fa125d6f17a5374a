package handlers

import (
	"arena-score-system/middleware"
	"arena-score-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Public routes
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)

	// 🔐 Authenticated routes
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/tournaments", tournamentService.CreateTournament)
	secured.Get("/tournaments", tournamentService.GetAllTournaments)
	secured.Patch("/tournaments/:id/status", tournamentService.UpdateTournamentStatus)
	secured.Post("/tournaments/:id/join", tournamentService.JoinTournament)

	// 🔒 Admin-only routes
	admin := secured.Group("/admin", middleware.RequireAdmin())
	admin.Post("/tournaments/:id/players/:user_id/kick", tournamentService.KickPlayer)
}
