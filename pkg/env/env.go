package env

import (
	"os"
	"path/filepath"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// ExpandHome resolves a leading "~" against the current user's home directory.
func ExpandHome(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return trimmed
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return trimmed
	}
	if trimmed == "~" {
		return home
	}
	return filepath.Join(home, trimmed[2:])
}
