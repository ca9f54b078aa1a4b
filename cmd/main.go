package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"raspadita/internal/config"
	"raspadita/internal/handlers"
	"raspadita/internal/services"
	"raspadita/internal/storage"
	"raspadita/internal/storage/memory"
	"raspadita/internal/storage/sqlite"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/joho/godotenv"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:assets
var assetsFS embed.FS

// stdRNG delegates to math/rand (auto-seeded since Go 1.20).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.Intn(n) }

func main() {
	// 1. Load an optional .env file, then the configuration.
	envPath := os.Getenv("RASPADITA_DOTENV")
	if envPath == "" {
		envPath = ".env"
	}
	dotenvErr := godotenv.Load(envPath)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging to stdout/stderr only.
	defer logger.Init("raspadita", true, false, io.Discard).Close()
	if dotenvErr != nil {
		logger.Infof("No .env loaded from %s: %v", envPath, dotenvErr)
	}

	// 3. Open the profile store.
	store := openStore(cfg.DBPath)
	defer store.Close()

	// 4. Initialize the Game Service
	gameService := services.NewGameService(store, services.GameConfig{
		CardCount:       cfg.CardCount,
		PrizePool:       cfg.PrizePool,
		Surface:         cfg.Surface(),
		ScratchRadius:   cfg.ScratchRadius,
		PromotionEndsAt: cfg.PromotionEndsAt,
		ShareBaseURL:    cfg.ShareBaseURL,
	}, stdRNG{}, services.LogSink{Verbose: cfg.Verbose})

	// 5. Load HTML templates from the embedded filesystem.
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 6. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(gameService, templates)

	// 7. Set up the Gin router
	r := gin.Default()

	assetsSubFS, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		logger.Fatalf("Failed to create assets sub-filesystem: %v", err)
	}
	r.StaticFS("/assets", http.FS(assetsSubFS))

	// 8. Register public routes (before middleware)
	httpHandler.RegisterPublicRoutes(r)

	// 9. Group routes that require a browser profile and apply middleware
	profileRoutes := r.Group("/")
	profileRoutes.Use(httpHandler.ProfileMiddleware())
	httpHandler.RegisterProfileRoutes(profileRoutes)

	// 10. Start the background janitor to drop idle in-memory games
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		ticker := time.NewTicker(cfg.JanitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := gameService.CleanUpInactiveSessions(cfg.SessionTTL)
				logger.Infof("Performed cleanup of inactive sessions, removed %d.", removed)
			}
		}
	}()

	// 11. Run the server until interrupted
	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
}

// openStore opens the SQLite store at path. An empty path or a file that
// cannot be opened leaves profiles in memory for the life of the process.
func openStore(path string) storage.Store {
	if path == "" {
		logger.Warning("RASPADITA_DB_PATH is empty; profiles are kept in memory only")
		return memory.NewStore()
	}
	store, err := sqlite.Open(path)
	if err != nil {
		logger.Warningf("Failed to open store %s, profiles are kept in memory only: %v", path, err)
		return memory.NewStore()
	}
	return store
}
