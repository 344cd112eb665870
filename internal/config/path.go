package config

import (
	"os"
	"path/filepath"
)

// DefaultSiteDir returns the default per-site append directory based on
// the host OS. It prefers standard locations when available and falls
// back to a dotdir in the user's home directory. Pond itself never
// creates this directory unless per-site append is enabled.
func DefaultSiteDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./sites"
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pond", "sites")
	}

	if isDir("/var/lib") {
		return "/var/lib/pond/sites"
	}

	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "Pond", "sites")
	}

	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "Pond", "sites")
	}

	return filepath.Join(homeDir, ".pond", "sites")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
