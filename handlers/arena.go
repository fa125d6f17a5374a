package handlers

import (
	"arena-score-system/middleware"
	"arena-score-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupArenaRoutes(app *fiber.App, sheetService *services.SheetService) {
	// 🔓 Public: the standings read model consumed by the ranking service
	app.Get("/tournaments/:id/standings", sheetService.GetStandings)

	// 🔐 Authenticated routes
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Game engine result intake + sheet reads
	secured.Post("/tournaments/:id/results", sheetService.ReportResult)
	secured.Get("/tournaments/:id/players/:user_id/sheet", sheetService.GetPlayerSheet)

	// 🔒 Admin-only repair
	admin := secured.Group("/admin", middleware.RequireAdmin())
	admin.Post("/tournaments/:id/players/:user_id/recompute", sheetService.RecomputeSheet)
}
