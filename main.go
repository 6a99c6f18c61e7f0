package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/sankalp/cliparse"
	"github.com/danielhkuo/sankalp/db"
	"github.com/danielhkuo/sankalp/middleware"
	"github.com/danielhkuo/sankalp/ranking"
	"github.com/danielhkuo/sankalp/router"
)

func main() {
	var err error

	// Load .env if present (dev convenience, env wins in production)
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the database (sqlite locally, postgres in production)
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// SQLite serializes writers; a single connection avoids lock errors
	if driver == "sqlite" {
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Scoring policy: compiled-in defaults unless a YAML file is given
	policy := ranking.DefaultPolicy()
	if cfg.ScoringPath != "" {
		policy, err = ranking.LoadPolicy(cfg.ScoringPath)
		if err != nil {
			slog.Error("scoring policy load failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Scoring policy loaded", "path", cfg.ScoringPath)
	}

	// Ranking engine consumes activity events asynchronously
	engine := ranking.NewEngine(dbConn, policy, 4)

	// Create router with per-IP rate limiting
	mux := router.NewRouter(dbConn, cfg, engine)
	limiter := middleware.NewIPRateLimiter(cfg.RatePerMin)

	// Create server
	server := http.Server{
		Handler: middleware.RateLimit(limiter, middleware.CORS(mux)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Drain queued activity events before exit
	engine.Close()
}
