/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env / PAYROLL_* environment, then parse command-line flags
  2. Build the logger
  3. Open the store (in-memory or SQLite)
  4. Create the payroll service and seed the default roster
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -port    HTTP server port (default: 8080, PAYROLL_PORT)
  -db      SQLite database path (default: "", PAYROLL_DB)
           Empty keeps everything in memory for the life of the process
  -seed    Seed three sample workers into an empty roster (PAYROLL_SEED)
  -hash-password
           Print the bcrypt hash of the given password for
           PAYROLL_ADMIN_PASSWORD_HASH and exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # In-memory session (data is lost on exit)
  ./server

  # Persist to a file
  ./server -db="./data/payroll.db"

  # JSON logs on a different port
  PAYROLL_LOG_FORMAT=json ./server -port=3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/shift-payroll/api"
	"github.com/warp/shift-payroll/config"
	"github.com/warp/shift-payroll/payroll"
	memstore "github.com/warp/shift-payroll/payroll/store"
	"github.com/warp/shift-payroll/store/sqlite"
)

// sessionStore is what main needs from either backend.
type sessionStore interface {
	payroll.Store
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (empty = in-memory)")
	seed := flag.Bool("seed", cfg.Seed, "Seed sample workers into an empty roster")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of a password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := payroll.HashPassword(*hashPassword)
		if err != nil {
			logrus.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	// Initialize store
	store, err := openStore(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize store")
	}
	defer store.Close()

	svc := payroll.NewService(store, cfg.PayRules(), logger)
	if *seed {
		n, err := svc.SeedRoster(context.Background(), payroll.DefaultRoster())
		if err != nil {
			logger.WithError(err).Warn("Failed to seed roster")
		} else if n > 0 {
			logger.WithField("workers", n).Info("Seeded default roster")
		}
	}

	gate, err := cfg.AccessGate()
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure edit mode")
	}

	// Initialize handler
	handler := api.NewHandler(svc, gate, logger)

	// Create router
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"port":       *port,
			"db":         *dbPath,
			"daily_rate": cfg.DailyRate.String(),
			"streak":     cfg.StreakLength,
		}).Infof("Server starting on http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func openStore(dbPath string) (sessionStore, error) {
	if dbPath == "" {
		return memstore.NewMemory(), nil
	}
	return sqlite.New(dbPath)
}
