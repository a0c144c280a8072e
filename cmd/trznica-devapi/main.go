package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/trznica/internal/api"
	"github.com/erazemk/trznica/internal/config"
	"github.com/erazemk/trznica/internal/db"
	"github.com/erazemk/trznica/internal/logging"
	"github.com/erazemk/trznica/internal/store"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg := config.LoadDevAPI()

	fs := flag.NewFlagSet("trznica-devapi", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: trznica-devapi [flags]

Development marketplace backend. The database is created and seeded on
first run.

Flags:
  -d, -db <path>          SQLite database path (default: trznica.sqlite3)
  -a, -addr <host:port>   listen address (default: :8000)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment (also read from .env):
  TRZNICA_DEVAPI_DB, TRZNICA_DEVAPI_ADDR, TRZNICA_DEVAPI_LOG,
  TRZNICA_DEVAPI_SECRET (JWT secret; stored in the database when unset),
  TRZNICA_LOG_LEVEL
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	_, statErr := os.Stat(cfg.DBPath)
	fresh := os.IsNotExist(statErr)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	if fresh {
		password, seed, err := seedDatabase(database)
		if err != nil {
			database.Close()
			os.Remove(cfg.DBPath)
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
		printSeedResult(cfg.DBPath, seed, password)
		fmt.Println()
	}

	slog.Info("database ready", "path", cfg.DBPath)

	jwtSecret := cfg.Secret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(context.Background(), database)
		if err != nil {
			slog.Error("failed to get JWT secret", "error", err)
			os.Exit(1)
		}
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(database, jwtSecret),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// seedDatabase fills a new database with demo data. Both seeded accounts
// share one generated password.
func seedDatabase(database *sql.DB) (string, store.SeedResult, error) {
	password, err := generatePassword(16)
	if err != nil {
		return "", store.SeedResult{}, fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", store.SeedResult{}, fmt.Errorf("hashing password: %w", err)
	}

	seed, err := store.Seed(context.Background(), database, string(hash))
	if err != nil {
		return "", store.SeedResult{}, err
	}
	return password, seed, nil
}

// printSeedResult prints the seeded accounts to stdout.
func printSeedResult(dbPath string, seed store.SeedResult, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized and demo items listed.")
	fmt.Println()
	fmt.Println("Accounts created:")
	fmt.Printf("  Seller user ID: %d\n", seed.SellerID)
	fmt.Printf("  Buyer user ID:  %d\n", seed.BuyerID)
	fmt.Printf("  Password:       %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
