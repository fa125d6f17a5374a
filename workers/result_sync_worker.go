// workers/result_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"

	"arena-score-system/services"

	"gorm.io/gorm"
)

// ReportedGame matches one finished game in the game service's response.
type ReportedGame struct {
	TournamentID string `json:"tournament_id"`
	services.ResultReport
}

// GetFinishedGamesResponse is the top-level structure of the game service
// response.
type GetFinishedGamesResponse struct {
	Games []ReportedGame `json:"games"`
}

// ResultSyncWorker replays games the service missed while down: it polls
// the game service for games finished after the newest stored pairing and
// pushes them through the same apply path as the HTTP intake. Games are
// applied in finished-at order, which the incremental sheet update
// requires.
type ResultSyncWorker struct {
	db           *gorm.DB
	sheets       *services.SheetService
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8600"
	endpointPath string // e.g., "/api/v1/arena/results"
	serviceToken string
	httpClient   *http.Client
}

func NewResultSyncWorker(db *gorm.DB, sheets *services.SheetService, gameServiceBaseURL, endpointPath, serviceToken string) *ResultSyncWorker {
	return &ResultSyncWorker{
		db:           db,
		sheets:       sheets,
		interval:     1 * time.Minute,
		baseURL:      gameServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ResultSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Result Sync Worker (game-service → arena_pairings)…")
	go w.run(ctx)
}

func (w *ResultSyncWorker) run(ctx context.Context) {
	if err := w.syncBatch(ctx, w.lastFinishedAt()); err != nil {
		log.Printf("⚠️ Initial result sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastFinishedAt()); err != nil {
				log.Printf("❌ Result sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Result Sync Worker stopped")
			return
		}
	}
}

// lastFinishedAt finds the newest FinishedAt among stored pairings; the
// watermark for incremental polls.
func (w *ResultSyncWorker) lastFinishedAt() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(finished_at) FROM arena_pairings").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches finished games from the game service and applies any
// not yet stored.
func (w *ResultSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid game service URL '%s': %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", sinceStr)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.serviceToken)
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("game service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("game service returned %d: %s", resp.StatusCode, string(body))
	}

	var payload GetFinishedGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode game service response: %w", err)
	}
	if len(payload.Games) == 0 {
		return nil
	}

	// Sheets only accept appends in game order.
	sort.Slice(payload.Games, func(i, j int) bool {
		return payload.Games[i].FinishedAt.Before(payload.Games[j].FinishedAt)
	})

	applied, skipped := 0, 0
	for _, game := range payload.Games {
		_, err := w.sheets.ApplyResult(game.TournamentID, game.ResultReport)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, services.ErrDuplicateGame):
			skipped++
		case errors.Is(err, gorm.ErrRecordNotFound),
			errors.Is(err, services.ErrTournamentNotRunning),
			errors.Is(err, services.ErrUnknownPlayer):
			log.Printf("⚠️ [SYNC] Skipping game %s: %v", game.GameID, err)
			skipped++
		default:
			return fmt.Errorf("failed to apply game %s: %w", game.GameID, err)
		}
	}

	log.Printf("[SYNC] ✅ Applied %d missed games, skipped %d (since=%s)", applied, skipped, sinceStr)
	return nil
}
