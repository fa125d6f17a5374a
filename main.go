package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"arena-score-system/handlers"
	"arena-score-system/middleware"
	"arena-score-system/models"
	"arena-score-system/services"
	"arena-score-system/utils"
	"arena-score-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 5 * 1024 * 1024, // 5MB, result reports are small
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Tournament{},
		&models.ArenaPlayer{},
		&models.ArenaPairing{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	tournamentService := services.NewTournamentService(db)
	sheetService := services.NewSheetService(db)

	// --- CONFIGURE Game Service details for the result sync worker ---
	gameServiceURL := os.Getenv("GAME_SERVICE_URL")
	if gameServiceURL == "" {
		log.Fatal("GAME_SERVICE_URL environment variable not set")
	}
	arenaServiceToken := os.Getenv("ARENA_SERVICE_TOKEN")
	if arenaServiceToken == "" {
		log.Fatal("ARENA_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	resultWorker := workers.NewResultSyncWorker(db, sheetService, gameServiceURL, "/api/v1/arena/results", arenaServiceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resultWorker.Start(ctx)

	services.StartArenaScheduler(db, sheetService)

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix
	handlers.SetupTournamentRoutes(app, tournamentService)
	handlers.SetupArenaRoutes(app, sheetService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Result Sync Worker running")
	log.Println("✅ Arena scheduler running (lifecycle every 1m, sheet sweep every 10m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
