/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the canteen billing server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Configure zerolog
  3. Initialize SQLite store and seed defaults
  4. Create API handler and router
  5. Start the weekly digest scheduler
  6. Start server with graceful shutdown

CONFIGURATION:
  Flags take their defaults from the environment, so either works:
    -port / PORT                HTTP server port (default: 8080)
    -db / DATABASE_PATH         SQLite path (default: canteen.db,
                                ":memory:" for in-memory)
    -digest-cron / DIGEST_CRON  Weekly digest schedule
                                (default: Friday 20:00)
    LOG_LEVEL                   zerolog level (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the digest scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/canteen.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/warp/canteen-engine/api"
	"github.com/warp/canteen-engine/store/sqlite"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	port := flag.String("port", envOr("PORT", "8080"), "HTTP server port")
	dbPath := flag.String("db", envOr("DATABASE_PATH", "canteen.db"), "SQLite database path")
	digestCron := flag.String("digest-cron", envOr("DIGEST_CRON", api.DefaultDigestSchedule), "weekly digest cron schedule")
	flag.Parse()

	// Logging
	level, err := zerolog.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("failed to initialize database")
	}
	defer store.Close()

	if err := api.Seed(context.Background(), store, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed defaults")
	}

	// Handler, router, scheduler
	handler := api.NewHandler(store, store, log)
	router := api.NewRouter(handler)

	scheduler := api.NewDigestScheduler(handler, *digestCron)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", *digestCron).Msg("failed to start digest scheduler")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
