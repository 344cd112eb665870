package config

import (
	"os"
	"strconv"
)

// FromEnv overlays POND_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("POND_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("POND_ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}
	if v := os.Getenv("POND_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capacity = n
		}
	}
	if v := os.Getenv("POND_SITE_DIR"); v != "" {
		cfg.SiteDir = v
	}
	if v := os.Getenv("POND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("POND_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
