package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/config"
	"github.com/erazemk/trznica/internal/imageloader"
	"github.com/erazemk/trznica/internal/logging"
	"github.com/erazemk/trznica/internal/market"
	"github.com/erazemk/trznica/internal/metrics"
	"github.com/erazemk/trznica/internal/session"
	"github.com/erazemk/trznica/internal/web"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFrontend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("trznica", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "")
	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: trznica [flags]

Flags:
  -a, -addr <host:port>   listen address (default: :8080)
  -b, -backend <url>      marketplace backend base URL (default: http://localhost:8000)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment (also read from .env):
  TRZNICA_ADDR, TRZNICA_BACKEND_URL, TRZNICA_LOG, TRZNICA_LOG_LEVEL,
  TRZNICA_IMAGE_CONCURRENCY, TRZNICA_SESSION_LIMIT, TRZNICA_THUMBNAIL,
  TRZNICA_RENDER_TIMEOUT
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

	// INFO/WARN go to stdout, ERROR to stderr, optionally also to a file.
	closeLog, err := logging.Setup(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	registry := imageloader.NewRegistry()
	m := metrics.New(registry.Live)

	api := market.New(client.New(cfg.BackendURL, client.WithObserver(m.ObserveFetch)))

	sessions, err := session.NewStore(cfg.SessionLimit)
	if err != nil {
		slog.Error("failed to create session store", "error", err)
		os.Exit(1)
	}

	handler, err := web.NewRouter(web.Options{
		API:      api,
		Registry: registry,
		CatalogImages: imageloader.New(api, registry,
			imageloader.WithConcurrency(cfg.ImageConcurrency),
			imageloader.WithThumbnail(cfg.Thumbnail)),
		DetailImages:  imageloader.New(api, registry, imageloader.WithConcurrency(cfg.ImageConcurrency)),
		Sessions:      sessions,
		Metrics:       m,
		RenderTimeout: cfg.RenderTimeout,
	})
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
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

	slog.Info("server started", "addr", cfg.Addr, "backend", cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing sessions", "sessions", sessions.Len())
	sessions.Close()
}
