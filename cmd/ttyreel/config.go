package main

import (
	"os"

	"github.com/joho/godotenv"
)

// config holds every environment-driven setting, resolved once at startup.
// Command-line flags override these per invocation.
type config struct {
	WindowID  string // X11 window to capture, from $WINDOWID
	OutputDir string // where frames and the finished animation land
	Capture   string // default capture backend: "x11" or "vt"
	Viewer    string // viewer launched on the finished animation
	Addr      string // preview server listen address
}

// loadConfig reads .env from the working directory if one exists, then
// resolves settings from the environment with defaults.
func loadConfig() config {
	_ = godotenv.Load()

	return config{
		WindowID:  getEnv("WINDOWID", ""),
		OutputDir: getEnv("TTYREEL_OUTPUT_DIR", "output"),
		Capture:   getEnv("TTYREEL_CAPTURE", "x11"),
		Viewer:    getEnv("TTYREEL_VIEWER", "xdg-open"),
		Addr:      getEnv("TTYREEL_ADDR", ":7463"),
	}
}

// getEnv returns the value of the environment variable named by key, or
// fallback if the variable is unset or empty.
func getEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}
