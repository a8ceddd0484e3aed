package main

import "testing"

// TestGetEnv verifies set, unset, and empty env behavior
func TestGetEnv(t *testing.T) {
	t.Setenv("TTYREEL_TEST_KEY", "value")
	if got := getEnv("TTYREEL_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("getEnv = %q, want %q", got, "value")
	}

	t.Setenv("TTYREEL_TEST_KEY", "")
	if got := getEnv("TTYREEL_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("getEnv on empty = %q, want %q", got, "fallback")
	}

	if got := getEnv("TTYREEL_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv on unset = %q, want %q", got, "fallback")
	}
}

// TestLoadConfigDefaults verifies the defaults used when nothing is set
func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"WINDOWID", "TTYREEL_OUTPUT_DIR", "TTYREEL_CAPTURE", "TTYREEL_VIEWER", "TTYREEL_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	if cfg.WindowID != "" {
		t.Errorf("WindowID = %q, want empty", cfg.WindowID)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "output")
	}
	if cfg.Capture != "x11" {
		t.Errorf("Capture = %q, want %q", cfg.Capture, "x11")
	}
	if cfg.Viewer != "xdg-open" {
		t.Errorf("Viewer = %q, want %q", cfg.Viewer, "xdg-open")
	}
	if cfg.Addr != ":7463" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":7463")
	}
}

// TestLoadConfigFromEnv verifies environment overrides win over defaults
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("WINDOWID", "98765")
	t.Setenv("TTYREEL_OUTPUT_DIR", "frames")
	t.Setenv("TTYREEL_CAPTURE", "vt")

	cfg := loadConfig()
	if cfg.WindowID != "98765" {
		t.Errorf("WindowID = %q, want %q", cfg.WindowID, "98765")
	}
	if cfg.OutputDir != "frames" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "frames")
	}
	if cfg.Capture != "vt" {
		t.Errorf("Capture = %q, want %q", cfg.Capture, "vt")
	}
}
