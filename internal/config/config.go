// Package config reads process settings from the environment, optionally
// seeded from a .env file. Command-line flags override these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Frontend holds the settings of the web frontend.
type Frontend struct {
	Addr             string
	BackendURL       string
	LogPath          string
	LogLevel         string
	ImageConcurrency int
	SessionLimit     int
	Thumbnail        int
	RenderTimeout    time.Duration
}

// DevAPI holds the settings of the development backend.
type DevAPI struct {
	Addr     string
	DBPath   string
	Secret   string
	LogPath  string
	LogLevel string
}

// LoadEnv loads the given .env files (".env" when none are given) into the
// process environment. Variables already set are kept. Missing files are
// not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// LoadFrontend reads the frontend settings.
func LoadFrontend() (Frontend, error) {
	cfg := Frontend{
		Addr:       getenv("TRZNICA_ADDR", ":8080"),
		BackendURL: getenv("TRZNICA_BACKEND_URL", "http://localhost:8000"),
		LogPath:    os.Getenv("TRZNICA_LOG"),
		LogLevel:   getenv("TRZNICA_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.ImageConcurrency, err = getenvInt("TRZNICA_IMAGE_CONCURRENCY", 8); err != nil {
		return Frontend{}, err
	}
	if cfg.SessionLimit, err = getenvInt("TRZNICA_SESSION_LIMIT", 1024); err != nil {
		return Frontend{}, err
	}
	if cfg.Thumbnail, err = getenvInt("TRZNICA_THUMBNAIL", 280); err != nil {
		return Frontend{}, err
	}
	if cfg.RenderTimeout, err = getenvDuration("TRZNICA_RENDER_TIMEOUT", 3*time.Second); err != nil {
		return Frontend{}, err
	}
	return cfg, nil
}

// LoadDevAPI reads the development backend settings.
func LoadDevAPI() DevAPI {
	return DevAPI{
		Addr:     getenv("TRZNICA_DEVAPI_ADDR", ":8000"),
		DBPath:   getenv("TRZNICA_DEVAPI_DB", "trznica.sqlite3"),
		Secret:   os.Getenv("TRZNICA_DEVAPI_SECRET"),
		LogPath:  os.Getenv("TRZNICA_DEVAPI_LOG"),
		LogLevel: getenv("TRZNICA_LOG_LEVEL", "info"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getenvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
